// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ioctx implements the process-wide I/O runtime handle (SPEC_FULL
// §4.2): a shared-ownership wrapper around the underlying messaging
// client, sized to roughly one worker per ~1 Gbps of aggregate
// throughput. Grounded on cc-backend/pkg/nats.Client's singleton +
// sync.Once pattern for the shared-ownership half, and on
// cc-backend/internal/memorystore's goroutine fan-out for the worker
// pool half.
package ioctx

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/uofuseismo/umps/pkg/log"
	natsclient "github.com/uofuseismo/umps/pkg/nats"
)

// Context is the capability set SPEC_FULL §4.2 requires: create_socket
// is represented by the Client() accessor every internal/sockets
// constructor takes, and shutdown is Close. Any number of sockets may
// hold a reference; refcounting via Acquire/Close means the underlying
// client is torn down only when the last owner releases it.
type Context struct {
	client    *natsclient.Client
	workers   int
	refs      atomic.Int64
	closeOnce sync.Once
}

// New wraps an already-connected client. workers records the configured
// worker-thread count for observability; the nats.go client manages its
// own I/O goroutines internally, so this is metadata rather than a pool
// umps itself schedules onto.
func New(client *natsclient.Client, workers int) *Context {
	if workers <= 0 {
		workers = 1
	}
	c := &Context{client: client, workers: workers}
	c.refs.Store(1)
	return c
}

// Acquire increments the reference count and returns ctx, mirroring a
// shared_ptr copy. Every Acquire must be matched by a Close.
func (c *Context) Acquire() *Context {
	c.refs.Add(1)
	return c
}

// Client returns the underlying NATS client new sockets bind to.
func (c *Context) Client() *natsclient.Client {
	return c.client
}

// Workers reports the configured I/O worker-thread count.
func (c *Context) Workers() int { return c.workers }

// Close releases one reference. When the last reference is released the
// underlying client connection is closed.
func (c *Context) Close() {
	if c.refs.Add(-1) > 0 {
		return
	}
	c.closeOnce.Do(func() {
		log.Debug("ioctx: last owner released, closing client")
		c.client.Close()
	})
}

// Background returns a context.Context bound to nothing in particular;
// it exists so call sites that need a ctx for a blocking operation but
// have no caller-supplied one have a single obvious source, matching the
// way cc-backend's background goroutines derive their own ctx when none
// is threaded through.
func Background() context.Context { return context.Background() }

// ErrNotConnected is returned by operations attempted before the
// underlying client has an active connection.
var ErrNotConnected = fmt.Errorf("ioctx: not connected")
