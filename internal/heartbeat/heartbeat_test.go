// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package heartbeat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uofuseismo/umps/pkg/schema"
)

func TestNewStartsAtUnknownStatus(t *testing.T) {
	p := New(nil, "umps-test", "host1", 0)
	assert.Equal(t, schema.ModuleStatusUnknown, p.status.ModuleStatus)
	assert.Equal(t, "umps-test", p.status.Module)
	assert.Equal(t, "host1", p.status.Host)
	assert.NotEmpty(t, p.status.Timestamp)
}

func TestNewDefaultsIntervalWhenNonPositive(t *testing.T) {
	p := New(nil, "umps-test", "host1", 0)
	assert.Equal(t, defaultInterval, p.interval)
}

func TestSetStatusUpdatesModuleStatusAndTimestamp(t *testing.T) {
	p := New(nil, "umps-test", "host1", 0)
	before := p.status.Timestamp

	got := p.SetStatus(schema.ModuleStatusAlive)
	assert.Equal(t, schema.ModuleStatusAlive, got.ModuleStatus)
	assert.Equal(t, schema.ModuleStatusAlive, p.status.ModuleStatus)
	assert.NotEmpty(t, p.status.Timestamp)
	_ = before
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	p := New(nil, "umps-test", "host1", 0)
	for i := 0; i < queueCapacity; i++ {
		p.enqueue(schema.Status{Module: "umps-test", ModuleStatus: schema.ModuleStatusAlive})
	}
	assert.Equal(t, queueCapacity, len(p.queue))

	// One more enqueue past capacity must not block or panic; it is
	// silently dropped per SPEC_FULL §9's bounded-MPSC semantics.
	p.enqueue(schema.Status{Module: "umps-test", ModuleStatus: schema.ModuleStatusDied})
	assert.Equal(t, queueCapacity, len(p.queue))
}

func TestSendStatusEnqueues(t *testing.T) {
	p := New(nil, "umps-test", "host1", 0)
	assert.Equal(t, 0, len(p.queue))
	p.SendStatus(schema.Status{Module: "umps-test", ModuleStatus: schema.ModuleStatusAlive})
	assert.Equal(t, 1, len(p.queue))
}
