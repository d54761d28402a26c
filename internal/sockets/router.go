// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sockets

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

// RouterCallback answers one inbound request. Per SPEC_FULL §4.4 it must
// be total and non-throwing: Router recovers a panicking callback itself
// and turns it into a Failure reply, but a callback that can return an
// explicit Failure for expected error conditions need not rely on that
// safety net.
type RouterCallback func(typeTag string, payload []byte) schema.Message

// Router runs a service loop: receive a request, invoke callback, send a
// reply back to that same requester. NATS's request/reply addresses the
// requester with a private per-request inbox subject (nats.Msg.Reply),
// which plays the role a ROUTER socket's identity frame would play in
// the original transport, so Router needs no identity bookkeeping of its
// own.
type Router struct {
	ctx   *ioctx.Context
	opts  Options
	queue string // non-empty makes this the fair-queued backend a Reply uses

	mu      sync.Mutex
	started bool
	sub     *nats.Subscription
	msgs    chan *nats.Msg
	control chan controlCommand
	done    chan struct{}
	running atomic.Bool
}

// NewRouter returns an uninitialized Router.
func NewRouter(ctx *ioctx.Context) *Router {
	return &Router{ctx: ctx}
}

// Initialize subscribes to opts.Address and starts the service loop,
// dispatching every inbound request to callback.
func (r *Router) Initialize(opts Options, callback RouterCallback) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if callback == nil {
		return fmt.Errorf("%w: callback is required", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("%w: already initialized", ErrInvalidArgument)
	}
	r.opts = opts.Clone()

	ch := make(chan *nats.Msg, 256)
	conn := r.ctx.Client().Connection()
	var sub *nats.Subscription
	var err error
	if r.queue != "" {
		sub, err = conn.QueueSubscribe(r.opts.Address, r.queue, func(msg *nats.Msg) { ch <- msg })
	} else {
		sub, err = conn.Subscribe(r.opts.Address, func(msg *nats.Msg) { ch <- msg })
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}

	r.sub = sub
	r.msgs = ch
	r.control = make(chan controlCommand, 1)
	r.done = make(chan struct{})
	r.started = true
	r.running.Store(true)
	go r.loop(callback)
	return nil
}

func (r *Router) loop(callback RouterCallback) {
	defer close(r.done)
	paused := false
	for {
		select {
		case cmd := <-r.control:
			switch cmd {
			case cmdPause:
				paused = true
			case cmdResume:
				paused = false
			case cmdTerminate:
				return
			}
		case msg, ok := <-r.msgs:
			if !ok {
				return
			}
			if paused || msg.Reply == "" {
				continue
			}
			r.respond(msg, callback)
		}
	}
}

func (r *Router) respond(msg *nats.Msg, callback RouterCallback) {
	reply := r.invoke(msg, callback)
	if err := msg.Respond(EncodeFrame(reply)); err != nil {
		log.Warnf("sockets: router reply to %s failed: %v", msg.Subject, err)
	}
}

// invoke decodes the request and calls callback, recovering a panic into
// a Failure message so the service loop itself never dies.
func (r *Router) invoke(msg *nats.Msg, callback RouterCallback) (result schema.Message) {
	frame, err := DecodeFrame(msg.Data)
	if err != nil {
		return failureMessage(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("sockets: router callback panicked on %s: %v", frame.TypeTag, rec)
			result = failureMessage(fmt.Errorf("callback panic: %v", rec))
		}
	}()
	return callback(frame.TypeTag, frame.Payload)
}

func failureMessage(err error) schema.Message {
	msg, encErr := schema.EncodeMessage(&schema.Failure{Detail: err.Error()}, "1.0")
	if encErr != nil {
		return schema.Message{TypeTag: (&schema.Failure{}).TypeTag()}
	}
	return msg
}

// Pause suspends dispatch without tearing the subscription down.
func (r *Router) Pause() { r.control <- cmdPause }

// Resume reverses Pause.
func (r *Router) Resume() { r.control <- cmdResume }

// Disconnect unsubscribes and stops the service loop. Idempotent.
func (r *Router) Disconnect() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.control <- cmdTerminate
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
		r.sub = nil
	}
	r.started = false
}

// Reply is a Router that joins a named queue group, the fair-queued
// backend role a Router/Dealer proxy's frontend fans requests out to
// (SPEC_FULL §4.4): several Reply instances subscribing with the same
// queue name each receive a disjoint share of the subject's requests
// instead of every instance receiving every request.
type Reply struct {
	Router
}

// NewReply returns an uninitialized Reply that will join queue when
// Initialize is called.
func NewReply(ctx *ioctx.Context, queue string) *Reply {
	return &Reply{Router: Router{ctx: ctx, queue: queue}}
}

// Dealer relays between a Router frontend and a Reply backend with fair
// queueing (SPEC_FULL §4.4). Because every Reply in this module's
// backend is already a NATS queue-group subscriber on the same backend
// subject, the fair-queueing itself is handled by the NATS server; Dealer
// exists as the named role internal/proxy's Router/Dealer proxy wires up
// rather than as a component with logic of its own to run.
type Dealer struct {
	ctx         *ioctx.Context
	frontend    string
	backend     string
	backendOpts Options
}

// NewDealer returns a Dealer relaying requests received on frontend to
// the queue-grouped backend subject.
func NewDealer(ctx *ioctx.Context, frontend, backend string, backendOpts Options) *Dealer {
	return &Dealer{ctx: ctx, frontend: frontend, backend: backend, backendOpts: backendOpts.Clone()}
}

// Frontend returns the subject external Request sockets address.
func (d *Dealer) Frontend() string { return d.frontend }

// Backend returns the queue-grouped subject Reply workers subscribe to.
func (d *Dealer) Backend() string { return d.backend }
