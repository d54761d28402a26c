// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sockets

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Subscriber receives messages of the type_tags listed in its
// MessageRegistry. Receive blocks up to Timeout for one message, per
// SPEC_FULL §4.4.
type Subscriber struct {
	ctx  *ioctx.Context
	opts Options

	mu          sync.Mutex
	initialized bool
	sub         *nats.Subscription
	msgs        chan *nats.Msg
}

// NewSubscriber returns an uninitialized Subscriber.
func NewSubscriber(ctx *ioctx.Context) *Subscriber {
	return &Subscriber{ctx: ctx}
}

// Initialize subscribes to opts.Address. Subscription is to the whole
// subject rather than per-type_tag, since NATS subjects are the unit of
// subscription in this module's transport binding; filtering by
// registered type_tag happens in Receive.
func (s *Subscriber) Initialize(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts.Clone()

	ch := make(chan *nats.Msg, 256)
	sub, err := s.ctx.Client().Connection().ChanSubscribe(s.opts.Address, ch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	s.sub = sub
	s.msgs = ch
	s.initialized = true
	return nil
}

// Receive blocks up to Timeout (see sockets.Options.Timeout semantics)
// for a message. Returns (nil, nil) on timeout — a timeout is never an
// error per SPEC_FULL §7. An unknown type_tag returns ErrUnknownType
// without consuming any further messages beyond the current one.
func (s *Subscriber) Receive() (schema.Marshaler, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}
	ch := s.msgs
	registry := s.opts.MessageRegistry
	timeout := s.opts.Timeout
	s.mu.Unlock()

	var raw *nats.Msg
	switch {
	case timeout < 0:
		raw = <-ch
	case timeout == 0:
		select {
		case raw = <-ch:
		default:
			return nil, nil
		}
	default:
		select {
		case raw = <-ch:
		case <-time.After(timeout):
			return nil, nil
		}
	}
	if raw == nil {
		return nil, nil
	}

	frame, err := DecodeFrame(raw.Data)
	if err != nil {
		return nil, err
	}
	if registry == nil || !registry.Contains(frame.TypeTag) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, frame.TypeTag)
	}
	instance, err := registry.Decode(frame)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// Disconnect unsubscribes and releases resources.
func (s *Subscriber) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
		s.sub = nil
	}
	s.initialized = false
}

// XSubscriber faces a proxy frontend. It has no user-level subscribe-by-
// type_tag API: the downstream subscriber's interest is forwarded
// through the proxy, so XSubscriber exposes only the raw frame.
type XSubscriber struct {
	ctx  *ioctx.Context
	opts Options

	mu          sync.Mutex
	initialized bool
	sub         *nats.Subscription
	frames      chan *nats.Msg
}

// NewXSubscriber returns an uninitialized XSubscriber.
func NewXSubscriber(ctx *ioctx.Context) *XSubscriber {
	return &XSubscriber{ctx: ctx}
}

func (x *XSubscriber) Initialize(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.opts = opts.Clone()

	ch := make(chan *nats.Msg, 256)
	sub, err := x.ctx.Client().Connection().ChanSubscribe(x.opts.Address, ch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	x.sub = sub
	x.frames = ch
	x.initialized = true
	return nil
}

// ReceiveRaw returns the next raw frame without decoding it, for the
// XPub/XSub proxy to forward verbatim.
func (x *XSubscriber) ReceiveRaw(timeout time.Duration) ([]byte, bool) {
	x.mu.Lock()
	ch := x.frames
	x.mu.Unlock()
	if ch == nil {
		return nil, false
	}
	switch {
	case timeout < 0:
		msg := <-ch
		return msg.Data, true
	case timeout == 0:
		select {
		case msg := <-ch:
			return msg.Data, true
		default:
			return nil, false
		}
	default:
		select {
		case msg := <-ch:
			return msg.Data, true
		case <-time.After(timeout):
			return nil, false
		}
	}
}

func (x *XSubscriber) Disconnect() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.sub != nil {
		_ = x.sub.Unsubscribe()
		x.sub = nil
	}
	x.initialized = false
}
