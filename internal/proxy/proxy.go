// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package proxy implements the two proxies from SPEC_FULL §4.5: a
// long-lived, steerable forwarder sitting between a frontend and a
// backend socket. Grounded on cc-backend/internal/memorystore's
// background-goroutine-with-context-cancellation pattern, adapted to the
// PAUSE/RESUME/TERMINATE control-channel shape the rest of this module's
// poll loops use instead of a bare context.Context.
package proxy

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/internal/sockets"
	"github.com/uofuseismo/umps/pkg/log"
)

type controlCommand int

const (
	cmdPause controlCommand = iota
	cmdResume
	cmdTerminate
)

// BroadcastProxy implements the XPub/XSub proxy (SPEC_FULL §4.5): a
// frontend facing publishers (role XSub) and a backend facing
// subscribers (role XPub). Every frame received on the frontend is
// copied verbatim to the backend; umps has no reverse subscription-frame
// traffic to relay since NATS subjects need no explicit subscribe
// announcement the way a real XSUB socket would send upstream.
type BroadcastProxy struct {
	ctx         *ioctx.Context
	frontend    *sockets.XSubscriber
	backend     *sockets.XPublisher
	backendAddr string

	control chan controlCommand
	done    chan struct{}
	running atomic.Bool
	mu      sync.Mutex
}

// NewBroadcastProxy returns an unstarted proxy. frontendAddr is not
// stored; the addresses passed to Start are the ones the proxy relays
// between.
func NewBroadcastProxy(ioc *ioctx.Context, frontendAddr, backendAddr string) *BroadcastProxy {
	return &BroadcastProxy{
		ctx:         ioc,
		frontend:    sockets.NewXSubscriber(ioc),
		backend:     sockets.NewXPublisher(ioc),
		backendAddr: backendAddr,
	}
}

// Start binds both sides and launches the forwarding loop. Idempotent.
func (p *BroadcastProxy) Start(frontendAddr, backendAddr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return nil
	}
	p.backendAddr = backendAddr

	if err := p.frontend.Initialize(sockets.Options{Address: frontendAddr}); err != nil {
		return err
	}
	if err := p.backend.Initialize(sockets.Options{Address: backendAddr}); err != nil {
		p.frontend.Disconnect()
		return err
	}

	p.control = make(chan controlCommand, 1)
	p.done = make(chan struct{})
	p.running.Store(true)
	go p.loop()
	return nil
}

func (p *BroadcastProxy) loop() {
	defer close(p.done)
	paused := false
	for {
		select {
		case cmd := <-p.control:
			switch cmd {
			case cmdPause:
				paused = true
			case cmdResume:
				paused = false
			case cmdTerminate:
				return
			}
		default:
		}

		raw, ok := p.frontend.ReceiveRaw(100 * time.Millisecond)
		if !ok || paused {
			continue
		}
		if err := p.ctx.Client().Publish(p.backendAddr, raw); err != nil {
			log.Warnf("proxy: broadcast relay failed: %v", err)
		}
	}
}

// Pause suspends forwarding without tearing either side down.
func (p *BroadcastProxy) Pause() { p.control <- cmdPause }

// Resume reverses Pause.
func (p *BroadcastProxy) Resume() { p.control <- cmdResume }

// Stop terminates the loop and releases both sockets. Idempotent.
func (p *BroadcastProxy) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.control <- cmdTerminate
	<-p.done
	p.frontend.Disconnect()
	p.backend.Disconnect()
}

// RequestProxy implements the Router/Dealer proxy (SPEC_FULL §4.5): a
// Router frontend facing clients and a Dealer backend fanning requests
// out, fair-queued, to Reply workers. Request-identity is preserved by
// the messaging library: every inbound request's private NATS reply
// inbox is remembered for the duration of the relayed backend request
// and answered directly, without the proxy itself tracking identity
// frames.
type RequestProxy struct {
	ctx     *ioctx.Context
	backend string
	timeout time.Duration

	sub     *nats.Subscription
	control chan controlCommand
	done    chan struct{}
	running atomic.Bool
	mu      sync.Mutex
}

// NewRequestProxy returns an unstarted proxy relaying requests received
// on frontendAddr to the queue-grouped backendAddr, waiting up to timeout
// for each backend reply.
func NewRequestProxy(ioc *ioctx.Context, backendAddr string, timeout time.Duration) *RequestProxy {
	return &RequestProxy{ctx: ioc, backend: backendAddr, timeout: timeout}
}

// Start subscribes to frontendAddr and begins relaying.
func (p *RequestProxy) Start(frontendAddr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running.Load() {
		return nil
	}

	conn := p.ctx.Client().Connection()
	sub, err := conn.Subscribe(frontendAddr, p.relay)
	if err != nil {
		return err
	}
	p.sub = sub
	p.control = make(chan controlCommand, 1)
	p.done = make(chan struct{})
	p.running.Store(true)
	go p.controlLoop()
	return nil
}

// relay forwards one frontend request to the backend and answers the
// original requester with whatever the backend returns. It runs on the
// NATS client's own dispatch goroutine. RequestProxy has no Pause or
// Resume: relaying continues until Stop unsubscribes the frontend.
func (p *RequestProxy) relay(msg *nats.Msg) {
	if msg.Reply == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	reply, err := p.ctx.Client().Request(ctx, p.backend, msg.Data)
	if err != nil {
		log.Warnf("proxy: request relay to %s failed: %v", p.backend, err)
		return
	}
	if err := msg.Respond(reply); err != nil {
		log.Warnf("proxy: request relay reply failed: %v", err)
	}
}

func (p *RequestProxy) controlLoop() {
	defer close(p.done)
	for cmd := range p.control {
		if cmd == cmdTerminate {
			return
		}
	}
}

// Stop unsubscribes the frontend and stops the proxy. Idempotent.
func (p *RequestProxy) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.mu.Lock()
	if p.sub != nil {
		_ = p.sub.Unsubscribe()
		p.sub = nil
	}
	p.mu.Unlock()
	p.control <- cmdTerminate
	<-p.done
}
