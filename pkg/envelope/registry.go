// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package envelope implements the message factory registry (SPEC_FULL
// §4.1): a mapping from a type_tag to a factory producing a fresh,
// decodable message instance. It is the Go stand-in for the source's
// virtual-inheritance "message" base class plus clone()/createInstance():
// a tagged-variant message type (schema.Marshaler) plus this registry,
// the translation SPEC_FULL §9 calls for.
package envelope

import (
	"errors"
	"fmt"
	"sync"

	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

// ErrUnknownType is returned by Make when no factory is registered for a
// type_tag, and by Registry.Decode for the same reason.
var ErrUnknownType = errors.New("envelope: unknown type_tag")

// ErrDecode wraps a payload that failed to deserialize. Per SPEC_FULL
// §4.1, deserialize must not partial-construct: Decode always returns either
// a fully-populated message or a non-nil error, never both.
var ErrDecode = errors.New("envelope: decode failed")

// Factory produces a fresh, zero-valued message instance of one schema.
// Calling it repeatedly must be safe for concurrent use.
type Factory func() schema.Marshaler

// Registry maps a type_tag to a Factory. It is cheaply cloneable (Clone
// copies the underlying map) so it can be passed by value into socket
// Options the way SPEC_FULL §3 requires.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Add inserts factory indexed by the type_tag of the instance it
// produces. An existing entry for that tag is replaced and a warning is
// logged, per SPEC_FULL §4.1.
func (r *Registry) Add(factory Factory) {
	if factory == nil {
		return
	}
	tag := factory().TypeTag()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[tag]; exists {
		log.Warnf("envelope: replacing existing factory for type_tag %q", tag)
	}
	r.factories[tag] = factory
}

// Contains reports whether a factory is registered for typeTag.
func (r *Registry) Contains(typeTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeTag]
	return ok
}

// Make returns a fresh instance for typeTag, or ErrUnknownType.
func (r *Registry) Make(typeTag string) (schema.Marshaler, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeTag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeTag)
	}
	return factory(), nil
}

// Decode builds a fresh instance for msg.TypeTag and populates it from
// msg.Payload. It never returns a partially-constructed value: on error
// the returned Marshaler is nil.
func (r *Registry) Decode(msg schema.Message) (schema.Marshaler, error) {
	instance, err := r.Make(msg.TypeTag)
	if err != nil {
		return nil, err
	}
	if err := instance.FromCBOR(msg.Payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, msg.TypeTag, err)
	}
	return instance, nil
}

// Clone returns a Registry holding a shallow copy of r's factories, so
// mutating the clone (or the original) after the copy never affects the
// other, matching the "Options records are value types" rule in
// SPEC_FULL §3.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for tag, f := range r.factories {
		clone.factories[tag] = f
	}
	return clone
}
