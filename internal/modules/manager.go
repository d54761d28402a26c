// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package modules implements the Module/ProcessManager lifecycle scaffold
// (spec.md §2 item 9): a set of long-running Process values started and
// stopped together, with signal handling and orderly shutdown grounded on
// cc-backend/cmd/cc-backend's main.go (sync.WaitGroup-joined goroutines,
// signal.Notify on SIGINT/SIGTERM, runtimeEnv.SystemdNotifiy around the
// run).
package modules

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/runtimeEnv"
)

// Process is anything the ProcessManager can own: a heartbeat, a packet
// cache service, a connection information service, a proxy. Start must
// return once the process is ready to serve; Stop must block until it has
// fully released its resources.
type Process interface {
	Start() error
	Stop()
}

// funcProcess adapts a pair of closures to Process, for the common case
// of a component whose Start takes configuration (a sockets.Options, an
// address) the ProcessManager itself has no opinion about.
type funcProcess struct {
	start func() error
	stop  func()
}

// Func wraps start/stop closures as a Process, so e.g.
// packetcache.Service.Start(subscriberOpts, routerOpts) can be registered
// as `modules.Func(func() error { return svc.Start(subOpts, routerOpts) }, svc.Stop)`.
func Func(start func() error, stop func()) Process {
	return funcProcess{start: start, stop: stop}
}

func (f funcProcess) Start() error { return f.start() }
func (f funcProcess) Stop()        { f.stop() }

// ProcessManager starts a set of Processes together, waits for SIGINT or
// SIGTERM, and stops them in reverse registration order so a dependent
// process never outlives what it depends on.
type ProcessManager struct {
	mu        sync.Mutex
	processes []namedProcess
	started   bool
}

type namedProcess struct {
	name    string
	process Process
}

// New returns an empty ProcessManager.
func New() *ProcessManager {
	return &ProcessManager{}
}

// Add registers process under name. Add must be called before Run.
func (m *ProcessManager) Add(name string, process Process) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processes = append(m.processes, namedProcess{name: name, process: process})
}

// Run starts every registered process in registration order, notifies
// systemd it is ready, blocks until SIGINT/SIGTERM, then stops every
// process in reverse order. Returns the first Start error, if any,
// having already stopped whatever did start.
func (m *ProcessManager) Run() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	started := make([]namedProcess, 0, len(m.processes))
	processes := append([]namedProcess(nil), m.processes...)
	m.mu.Unlock()

	for _, np := range processes {
		log.Infof("modules: starting %s", np.name)
		if err := np.process.Start(); err != nil {
			log.Errorf("modules: %s failed to start: %v", np.name, err)
			stopReverse(started)
			return err
		}
		started = append(started, np)
	}

	runtimeEnv.SystemdNotifiy(true, "running")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	runtimeEnv.SystemdNotifiy(false, "shutting down")
	stopReverse(started)
	log.Info("modules: graceful shutdown completed")
	return nil
}

func stopReverse(processes []namedProcess) {
	for i := len(processes) - 1; i >= 0; i-- {
		log.Infof("modules: stopping %s", processes[i].name)
		processes[i].process.Stop()
	}
}
