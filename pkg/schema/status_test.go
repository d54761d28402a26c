// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGreaterComparesAcrossSecondBoundary(t *testing.T) {
	lhs := Status{Timestamp: "2024-01-01T00:00:59.999"}
	rhs := Status{Timestamp: "2024-01-01T00:01:00.000"}
	assert.False(t, Greater(lhs, rhs))
	assert.True(t, Greater(rhs, lhs))
}

func TestGreaterIsNotGreaterForEqualTimestamps(t *testing.T) {
	a := Status{Timestamp: "2024-06-15T12:30:00.500"}
	b := Status{Timestamp: "2024-06-15T12:30:00.500"}
	assert.False(t, Greater(a, b))
	assert.False(t, Greater(b, a))
}

func TestGreaterReturnsFalseOnUnparseableTimestamp(t *testing.T) {
	a := Status{Timestamp: "garbage"}
	b := Status{Timestamp: "2024-06-15T12:30:00.500"}
	assert.False(t, Greater(a, b))
	assert.False(t, Greater(b, a))
}

func TestEqualRequiresBothTimestampsParseable(t *testing.T) {
	a := Status{Timestamp: "2024-06-15T12:30:00.500"}
	b := Status{Timestamp: "2024-06-15T12:30:00.500"}
	assert.True(t, Equal(a, b))

	c := Status{Timestamp: "garbage"}
	assert.False(t, Equal(a, c))
}

func TestSetTimestampFormatsMillisecondPrecision(t *testing.T) {
	var s Status
	tm := time.Date(2024, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	s.SetTimestamp(tm)
	assert.Equal(t, "2024-03-04T05:06:07.890", s.Timestamp)
}

func TestSetTimestampClampsMillisecondRounding(t *testing.T) {
	var s Status
	tm := time.Date(2024, 3, 4, 5, 6, 7, 999_600_000, time.UTC)
	s.SetTimestamp(tm)
	assert.Equal(t, "2024-03-04T05:06:07.999", s.Timestamp)
}

func TestModuleStatusString(t *testing.T) {
	assert.Equal(t, "Alive", ModuleStatusAlive.String())
	assert.Equal(t, "Disconnected", ModuleStatusDisconnected.String())
	assert.Equal(t, "Died", ModuleStatusDied.String())
	assert.Equal(t, "Unknown", ModuleStatusUnknown.String())
}
