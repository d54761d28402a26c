// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package packetcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateOutputLengthMatchesGapIndicatorLength(t *testing.T) {
	points := []TimeValue{
		{TimeMicro: 0, Value: 0},
		{TimeMicro: 10_000, Value: 1},
		{TimeMicro: 20_000, Value: 2},
		{TimeMicro: 30_000, Value: 3},
	}
	result, err := Interpolate(points, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, len(result.Signal), len(result.GapIndicator))
	assert.NotEmpty(t, result.Signal)
}

func TestInterpolateIsExactOnLinearData(t *testing.T) {
	// y = 2t (t in seconds) sampled every 10ms; a monotone interpolator
	// should reproduce a perfectly linear signal exactly.
	points := make([]TimeValue, 0, 11)
	for i := int64(0); i <= 10; i++ {
		tMicro := i * 10_000
		points = append(points, TimeValue{TimeMicro: tMicro, Value: 2 * float64(tMicro) / 1e6})
	}

	result, err := Interpolate(points, 100, 0)
	require.NoError(t, err)

	tMicro := result.StartTimeMicro
	step := int64(10_000)
	for _, v := range result.Signal {
		expected := 2 * float64(tMicro) / 1e6
		assert.InDelta(t, expected, v, 1e-6)
		tMicro += step
	}
}

func TestInterpolateFlagsGapExceedingTolerance(t *testing.T) {
	points := []TimeValue{
		{TimeMicro: 0, Value: 0},
		{TimeMicro: 10_000, Value: 1},
		// 100ms gap, well beyond the default 30ms tolerance
		{TimeMicro: 110_000, Value: 2},
		{TimeMicro: 120_000, Value: 3},
	}
	result, err := Interpolate(points, 100, 0)
	require.NoError(t, err)

	sawGap := false
	for i, t := range result.GapIndicator {
		evalTime := result.StartTimeMicro + int64(i)*10_000
		if evalTime > 10_000 && evalTime < 110_000 {
			assert.True(t, t, "time %d should be flagged as a gap", evalTime)
			sawGap = true
		}
	}
	assert.True(t, sawGap, "expected at least one evaluation time inside the gap")
}

func TestInterpolateRejectsInsufficientData(t *testing.T) {
	_, err := Interpolate([]TimeValue{{TimeMicro: 0, Value: 1}}, 100, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestInterpolateRejectsNonPositiveRate(t *testing.T) {
	points := []TimeValue{{TimeMicro: 0, Value: 0}, {TimeMicro: 1000, Value: 1}}
	_, err := Interpolate(points, 0, 0)
	assert.Error(t, err)
}

func TestInterpolateDedupesDuplicateTimestamps(t *testing.T) {
	points := []TimeValue{
		{TimeMicro: 0, Value: 0},
		{TimeMicro: 0, Value: 99}, // duplicate abscissa, first wins
		{TimeMicro: 10_000, Value: 1},
		{TimeMicro: 20_000, Value: 2},
	}
	result, err := Interpolate(points, 100, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, result.Signal[0], 1e-9)
}
