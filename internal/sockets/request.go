// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sockets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Request implements the direct request/reply role (SPEC_FULL §4.4):
// Request.request sends two frames, blocks up to Timeout, and expects a
// two-frame reply.
type Request struct {
	ctx  *ioctx.Context
	opts Options

	mu          sync.Mutex
	initialized bool
}

// NewRequest returns an uninitialized Request socket.
func NewRequest(ctx *ioctx.Context) *Request {
	return &Request{ctx: ctx}
}

func (r *Request) Initialize(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts.Clone()
	r.initialized = true
	return nil
}

// Send issues a request built from message and returns the decoded
// reply, or (nil, nil) on timeout — per SPEC_FULL §4.4 a timeout is not
// an error and leaves the socket usable for the next call, since NATS
// requests are stateless round trips rather than a single persistent
// connection that the underlying library might need recreated.
func (r *Request) Send(message schema.Message) (schema.Marshaler, error) {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return nil, ErrNotInitialized
	}
	addr := r.opts.Address
	timeout := r.opts.Timeout
	registry := r.opts.MessageRegistry
	r.mu.Unlock()

	ctx, cancel := requestContext(timeout)
	defer cancel()

	replyFrame, err := r.ctx.Client().Request(ctx, addr, EncodeFrame(message))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrFatal, err)
	}

	decoded, err := DecodeFrame(replyFrame)
	if err != nil {
		return nil, err
	}
	if registry == nil || !registry.Contains(decoded.TypeTag) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, decoded.TypeTag)
	}
	return registry.Decode(decoded)
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	switch {
	case timeout < 0:
		return context.Background(), func() {}
	case timeout == 0:
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		return ctx, cancel
	default:
		return context.WithTimeout(context.Background(), timeout)
	}
}

func (r *Request) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
}
