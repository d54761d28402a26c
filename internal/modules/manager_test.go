// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package modules

import (
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcess struct {
	name    string
	log     *[]string
	mu      *sync.Mutex
	failing bool
}

func (p recordingProcess) Start() error {
	p.mu.Lock()
	*p.log = append(*p.log, "start:"+p.name)
	p.mu.Unlock()
	if p.failing {
		return errors.New("boom")
	}
	return nil
}

func (p recordingProcess) Stop() {
	p.mu.Lock()
	*p.log = append(*p.log, "stop:"+p.name)
	p.mu.Unlock()
}

func TestRunStartsInOrderAndStopsInReverse(t *testing.T) {
	var log []string
	var mu sync.Mutex

	m := New()
	m.Add("a", recordingProcess{name: "a", log: &log, mu: &mu})
	m.Add("b", recordingProcess{name: "b", log: &log, mu: &mu})
	m.Add("c", recordingProcess{name: "c", log: &log, mu: &mu})

	done := make(chan error, 1)
	go func() { done <- m.Run() }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(log) == 3
	}, time.Second, time.Millisecond)
	// Give Run a moment to reach signal.Notify before we send one;
	// a signal arriving before the handler is registered would
	// terminate the test process instead of being caught.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after SIGTERM")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}, log)
}

func TestRunStopsAlreadyStartedProcessesWhenOneFailsToStart(t *testing.T) {
	var log []string
	var mu sync.Mutex

	m := New()
	m.Add("a", recordingProcess{name: "a", log: &log, mu: &mu})
	m.Add("b", recordingProcess{name: "b", log: &log, mu: &mu, failing: true})
	m.Add("c", recordingProcess{name: "c", log: &log, mu: &mu})

	err := m.Run()
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"start:a", "start:b", "stop:a"}, log)
}

func TestFuncAdaptsClosuresToProcess(t *testing.T) {
	started, stopped := false, false
	p := Func(func() error { started = true; return nil }, func() { stopped = true })
	require.NoError(t, p.Start())
	p.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
