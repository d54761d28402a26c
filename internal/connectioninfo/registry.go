// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package connectioninfo implements the connection information service
// (spec.md §2 item 6): a request/reply registry modules use to advertise
// the broadcasts and services they expose, and clients query to learn a
// module's frontend/backend addresses and ZAP options. Grounded on
// cc-backend/internal/repository's CRUD-over-a-mutex-guarded-map style,
// adapted from its sqlx-backed persistence to an in-memory map since this
// registry only needs to outlive one running deployment, not a restart.
package connectioninfo

import (
	"sync"

	"github.com/uofuseismo/umps/pkg/schema"
)

// Registry is a thread-safe map from connection name to its
// ConnectionDetails.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]schema.ConnectionDetails
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]schema.ConnectionDetails)}
}

// Register inserts or replaces the entry named details.Name.
func (r *Registry) Register(details schema.ConnectionDetails) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[details.Name] = details
}

// Deregister removes the named entry. Removing an absent name is a no-op.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Query returns the named entry and whether it was found.
func (r *Registry) Query(name string) (schema.ConnectionDetails, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	details, ok := r.entries[name]
	return details, ok
}

// List returns every registered entry.
func (r *Registry) List() []schema.ConnectionDetails {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schema.ConnectionDetails, 0, len(r.entries))
	for _, d := range r.entries {
		out = append(out, d)
	}
	return out
}
