// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package packetcache implements the bounded in-memory packet cache
// (SPEC_FULL §4.7-4.9): a capped, per-channel collection of DataPackets
// ordered by start time, a Wiggins interpolator over that collection, and
// the service wiring both to a Subscriber and a Router. Grounded on
// cc-backend/pkg/lrucache's mutex-guarded eviction discipline and
// cc-backend/internal/memorystore/buffer.go's per-key bucketing, adapted
// from an LRU-by-access-recency policy to an oldest-by-start-time policy
// since CappedCollection evicts the earliest sample once a channel's
// bucket is full, never the least-recently-queried one.
package packetcache

import (
	"sort"
	"sync"

	"github.com/uofuseismo/umps/pkg/schema"
)

// CappedCollection holds, for every SNCL, an ordered circular buffer of
// at most maxPackets DataPackets. A single RWMutex guards all structural
// changes; queries take the read lock, so any number of readers can run
// concurrently against the one broadcast-pump writer (SPEC_FULL §4.7).
type CappedCollection[T schema.Sample] struct {
	mu         sync.RWMutex
	maxPackets int
	buckets    map[schema.SNCL][]schema.DataPacket[T]
	total      int
}

// NewCappedCollection returns an initialized collection capping every
// SNCL's bucket at maxPackets.
func NewCappedCollection[T schema.Sample](maxPackets int) *CappedCollection[T] {
	if maxPackets <= 0 {
		maxPackets = 1
	}
	return &CappedCollection[T]{
		maxPackets: maxPackets,
		buckets:    make(map[schema.SNCL][]schema.DataPacket[T]),
	}
}

// Add inserts packet into its SNCL's bucket, ordered by start_time_us. A
// packet whose start_time_us matches an existing entry replaces it
// (last-writer-wins, since broadcasts may retransmit). When the bucket is
// already at capacity and packet's start time is new, the oldest entry is
// evicted first.
func (c *CappedCollection[T]) Add(packet schema.DataPacket[T]) {
	key := packet.SNCL()

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.buckets[key]
	pos := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].StartTimeMicro >= packet.StartTimeMicro
	})

	if pos < len(bucket) && bucket[pos].StartTimeMicro == packet.StartTimeMicro {
		bucket[pos] = packet
		c.buckets[key] = bucket
		return
	}

	if len(bucket) >= c.maxPackets {
		bucket = bucket[1:]
		pos--
		if pos < 0 {
			pos = 0
		}
		c.total--
	}

	bucket = append(bucket, schema.DataPacket[T]{})
	copy(bucket[pos+1:], bucket[pos:])
	bucket[pos] = packet
	c.buckets[key] = bucket
	c.total++
}

// Query returns the ordered subsequence of sncl's bucket whose time span
// intersects [t0, t1] inclusive. An unknown SNCL returns an empty slice.
// The cache never fabricates samples: a gap in coverage is simply absent
// from the result.
func (c *CappedCollection[T]) Query(sncl schema.SNCL, t0, t1 int64) []schema.DataPacket[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket := c.buckets[sncl]
	out := make([]schema.DataPacket[T], 0, len(bucket))
	for _, p := range bucket {
		end, err := p.EndTime()
		if err != nil {
			end = p.StartTimeMicro
		}
		if end >= t0 && p.StartTimeMicro <= t1 {
			out = append(out, p)
		}
	}
	return out
}

// TotalPackets returns the number of packets held across every SNCL.
func (c *CappedCollection[T]) TotalPackets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// Size returns the number of packets held for sncl.
func (c *CappedCollection[T]) Size(sncl schema.SNCL) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets[sncl])
}

// SNCLs returns every channel with at least one packet.
func (c *CappedCollection[T]) SNCLs() []schema.SNCL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]schema.SNCL, 0, len(c.buckets))
	for k := range c.buckets {
		out = append(out, k)
	}
	return out
}
