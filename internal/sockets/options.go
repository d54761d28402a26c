// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sockets implements the six pattern-socket roles from SPEC_FULL
// §4.4 (Publisher, Subscriber, XPublisher, XSubscriber, Request, Router,
// Reply, Dealer) on top of internal/ioctx.Context, grounded on
// cc-backend/pkg/nats.Client's Subscribe/Publish/Request wrapping and
// mutex-guarded subscription bookkeeping.
//
// Because no ZeroMQ binding is available in this dependency set, NATS
// subjects stand in for ZeroMQ endpoints (SPEC_FULL §1): Options.Address
// is a NATS subject such as "umps.broadcast.heartbeat" rather than a
// tcp://host:port URI, and "bind" vs. "connect" collapses to whichever
// side subscribes first since NATS has no listen/connect distinction.
package sockets

import (
	"errors"
	"time"

	"github.com/uofuseismo/umps/internal/auth"
	"github.com/uofuseismo/umps/pkg/envelope"
)

// Sentinel Timeout values per SPEC_FULL §4.4: negative blocks forever,
// zero is non-blocking, positive is the time.Duration to wait.
const (
	TimeoutBlockForever time.Duration = -1
	TimeoutNonBlocking  time.Duration = 0
)

// Options configures any pattern socket. It is a value type: Initialize
// copies it, so mutating the original afterward has no effect (SPEC_FULL
// §3).
type Options struct {
	Address         string
	HighWaterMark   int // 0 = unbounded
	Timeout         time.Duration
	ZapOptions      auth.ZapOptions
	MessageRegistry *envelope.Registry
}

// Clone returns a deep-enough copy of o: the embedded Registry is cloned
// too, so Options satisfies the "consumed by initialize, which copies
// it" rule even for its one reference-typed field.
func (o Options) Clone() Options {
	clone := o
	if o.MessageRegistry != nil {
		clone.MessageRegistry = o.MessageRegistry.Clone()
	}
	return clone
}

// Validate checks the invariants every socket's Initialize enforces
// before performing any I/O.
func (o Options) Validate() error {
	if o.Address == "" {
		return errInvalidOption("address is required")
	}
	if o.HighWaterMark < 0 {
		return errInvalidOption("high_water_mark must be >= 0")
	}
	return nil
}

func errInvalidOption(msg string) error {
	return errors.Join(ErrInvalidArgument, errors.New(msg))
}

// Error kinds from SPEC_FULL §7, shared across every socket role.
var (
	ErrNotInitialized = errors.New("sockets: not initialized")
	ErrInvalidArgument = errors.New("sockets: invalid argument")
	ErrDecodeError     = errors.New("sockets: decode error")
	ErrUnknownType     = errors.New("sockets: unknown type")
	ErrAuthDenied      = errors.New("sockets: auth denied")
	ErrBackpressure    = errors.New("sockets: backpressure")
	ErrFatal           = errors.New("sockets: fatal")
)
