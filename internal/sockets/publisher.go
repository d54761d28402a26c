// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sockets

import (
	"fmt"
	"sync"
	"time"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Publisher sends messages to every current subscriber of its address.
// Initialize performs the equivalent of "connect"; it never binds, since
// NATS has no listen/connect distinction for a pub/sub subject.
type Publisher struct {
	ctx         *ioctx.Context
	opts        Options
	mu          sync.Mutex
	initialized bool
}

// NewPublisher returns an uninitialized Publisher.
func NewPublisher(ctx *ioctx.Context) *Publisher {
	return &Publisher{ctx: ctx}
}

// Initialize validates and stores a copy of opts.
func (p *Publisher) Initialize(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = opts.Clone()
	p.initialized = true
	return nil
}

// Send encodes and enqueues message for publication. Per SPEC_FULL §4.4,
// Backpressure only applies to a bounded send buffer; NATS's client-side
// buffer is effectively unbounded for our purposes, so Send only reports
// NotInitialized and transport failures.
func (p *Publisher) Send(msg schema.Message) error {
	p.mu.Lock()
	initialized := p.initialized
	addr := p.opts.Address
	p.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}
	if err := p.ctx.Client().Publish(addr, EncodeFrame(msg)); err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	return nil
}

// Disconnect releases the publisher's association with its address.
func (p *Publisher) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = false
	p.opts = Options{}
}

// XPublisher faces a proxy backend and masks the ZMQ slow-joiner problem
// with a short sleep after initialization, per SPEC_FULL §4.4.
type XPublisher struct {
	Publisher
}

// NewXPublisher returns an uninitialized XPublisher.
func NewXPublisher(ctx *ioctx.Context) *XPublisher {
	return &XPublisher{Publisher: Publisher{ctx: ctx}}
}

// Initialize binds (conceptually) and then sleeps 100ms to mask the
// slow-joiner problem before returning, per SPEC_FULL §4.4.
func (x *XPublisher) Initialize(opts Options) error {
	if err := x.Publisher.Initialize(opts); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}
