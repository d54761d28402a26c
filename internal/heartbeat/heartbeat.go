// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package heartbeat implements the heartbeat publisher process (SPEC_FULL
// §4.6): a ticker that periodically pushes the module's current Status
// onto a bounded queue, and a sender that drains the queue onto a
// broadcast publisher. Grounded on cc-backend/internal/memorystore's
// Retention ticker + cancellable goroutine, and cc-backend/cmd/cc-backend's
// main.go WaitGroup-joined goroutine shutdown.
package heartbeat

import (
	"sync"
	"time"

	"github.com/uofuseismo/umps/internal/sockets"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

const (
	defaultInterval = 30 * time.Second
	queueCapacity   = 64
	popTimeout      = 50 * time.Millisecond
)

// Process ticks on interval, publishing the module's current Status to
// publisher. It owns two goroutines: a ticker that enqueues a fresh
// Status every interval, and a sender that drains the queue and calls
// publisher.Send. The queue decouples the two so a slow or blocked
// publish never stalls the ticker's cadence, matching the bounded-MPSC
// shape SPEC_FULL §9 calls for.
type Process struct {
	publisher *sockets.Publisher
	interval  time.Duration

	mu     sync.Mutex
	status schema.Status

	queue    chan schema.Status
	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// New constructs a heartbeat Process for module/host, publishing through
// publisher at interval (zero uses the 30s default per spec.md §4.6).
func New(publisher *sockets.Publisher, module, host string, interval time.Duration) *Process {
	if interval <= 0 {
		interval = defaultInterval
	}
	status := schema.Status{Module: module, Host: host, ModuleStatus: schema.ModuleStatusUnknown}
	status.SetTimestampToNow()
	return &Process{
		publisher: publisher,
		interval:  interval,
		status:    status,
		queue:     make(chan schema.Status, queueCapacity),
		stop:      make(chan struct{}),
	}
}

// Start launches the ticker and sender goroutines. The sender
// immediately pushes a synthetic Alive status before entering its drain
// loop, per SPEC_FULL §4.6.
func (p *Process) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	alive := p.SetStatus(schema.ModuleStatusAlive)
	p.enqueue(alive)

	p.wg.Add(2)
	go p.tick()
	go p.send()
}

// SetStatus atomically replaces the canonical status's module_status,
// refreshing its timestamp, and returns the updated value.
func (p *Process) SetStatus(moduleStatus schema.ModuleStatus) schema.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.ModuleStatus = moduleStatus
	p.status.SetTimestampToNow()
	return p.status
}

// SendStatus pushes s onto the queue outside the tick cadence, e.g. for
// an explicit state transition the caller wants broadcast immediately.
func (p *Process) SendStatus(s schema.Status) {
	p.enqueue(s)
}

func (p *Process) enqueue(s schema.Status) {
	select {
	case p.queue <- s:
	default:
		log.Warn("heartbeat: queue full, dropping status")
	}
}

func (p *Process) tick() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.status.SetTimestampToNow()
			current := p.status
			p.mu.Unlock()
			p.enqueue(current)
		}
	}
}

func (p *Process) send() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.publishFinal()
			return
		case s := <-p.queue:
			p.publish(s)
		case <-time.After(popTimeout):
		}
	}
}

func (p *Process) publish(s schema.Status) {
	msg, err := schema.EncodeMessage(&s, "1.0")
	if err != nil {
		log.Warnf("heartbeat: encode failed: %v", err)
		return
	}
	if err := p.publisher.Send(msg); err != nil {
		log.Warnf("heartbeat: send failed: %v", err)
	}
}

// publishFinal sends a Disconnected status so the last word is always
// heard even though the ticker may already be gone.
func (p *Process) publishFinal() {
	final := p.SetStatus(schema.ModuleStatusDisconnected)
	p.publish(final)
}

// Stop halts the ticker and sender, after the sender has published a
// final Disconnected status. Idempotent; blocks until both goroutines
// have exited.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}
