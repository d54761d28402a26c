// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Wiggins weighted-average-slopes interpolation (SPEC_FULL §4.8), ported
// from original_source/include/private/applications/wiggins.hpp, adapted
// from the free-function form there to int64-microsecond abscissas and
// float64 ordinates, with `pkg/resampler`'s plain-slice numerical idiom
// rather than the header's raw-pointer style.
package packetcache

import (
	"errors"
	"math"
	"sort"
)

// ErrInsufficientData is returned when fewer than two unique abscissas
// are available to build a spline, per SPEC_FULL §4.8 step 2.
var ErrInsufficientData = errors.New("packetcache: at least two unique sample times are required")

func argsortInt64(v []int64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	return idx
}

func permuteInt64(x []int64, indices []int) []int64 {
	out := make([]int64, len(indices))
	for i, idx := range indices {
		out[i] = x[idx]
	}
	return out
}

func permuteFloat64(x []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = x[idx]
	}
	return out
}

// copyUnique drops entries whose abscissa equals the preceding one,
// keeping the first of any run of duplicates.
func copyUnique(x []int64, y []float64) ([]int64, []float64) {
	if len(x) == 0 {
		return nil, nil
	}
	outX := make([]int64, 0, len(x))
	outY := make([]float64, 0, len(y))
	for i := 0; i < len(x); i++ {
		if i > 0 && x[i] == x[i-1] {
			continue
		}
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}

// float64Epsilon matches std::numeric_limits<double>::epsilon().
const float64Epsilon = 2.220446049250313e-16

// computeWiWiMi returns w_i = 1/|m_i| and w_i*m_i = sign(m_i). When
// |m_i| <= float64Epsilon it returns w_i = math.MaxFloat64 and
// w_i*m_i = 0, so a flat neighbouring segment drives the averaged slope
// to 0 instead of dividing by zero.
func computeWiWiMi(mi float64) (wi, wimi float64) {
	wi = math.MaxFloat64
	wimi = 0
	ami := math.Abs(mi)
	if ami > float64Epsilon {
		wi = 1 / ami
		wimi = math.Copysign(1, mi)
	}
	return wi, wimi
}

// computeNonUniformSlopes implements Wiggins (1976)'s weighted-average
// slopes and the Fritsch-Carlson (1980, eqn. 4) piecewise-cubic
// coefficients. Returns a flat slice of length 4*(n-1): [a_i, b_i, c_i,
// d_i] per interval i, such that y(t) = a_i + b_i*d + c_i*d^2 + d_i*d^3
// with d = t - x[i].
func computeNonUniformSlopes(x []int64, y []float64) []float64 {
	n := len(x)
	slopes := make([]float64, n)
	slopes[0] = (y[1] - y[0]) / float64(x[1]-x[0])
	for i := 1; i < n-1; i++ {
		dx := float64(x[i] - x[i-1])
		dx1 := float64(x[i+1] - x[i])
		mi := (y[i] - y[i-1]) / dx
		mi1 := (y[i+1] - y[i]) / dx1
		wi, wimi := computeWiWiMi(mi)
		wi1, wi1mi1 := computeWiWiMi(mi1)
		slopes[i] = (wimi + wi1mi1) / (wi + wi1)
	}
	slopes[n-1] = (y[n-1] - y[n-2]) / float64(x[n-1]-x[n-2])

	coeffs := make([]float64, 4*(n-1))
	for i := 0; i < n-1; i++ {
		di := slopes[i]
		di1 := slopes[i+1]
		dx := float64(x[i+1] - x[i])
		dxi := 1 / dx
		dxi2 := dxi * dxi
		delta := (y[i+1] - y[i]) * dxi
		coeffs[4*i+0] = y[i]
		coeffs[4*i+1] = di
		coeffs[4*i+2] = (-2*di - di1 + 3*delta) * dxi
		coeffs[4*i+3] = (di + di1 - 2*delta) * dxi2
	}
	return coeffs
}

// locate returns the bin such that xi[bin] <= x < xi[bin+1], trying
// binHint and its neighbor first for O(1) amortized cost on a monotone
// sweep of evaluation times before falling back to binary search.
func locate(x int64, xi []int64, binHint int) int {
	n := len(xi)
	if binHint >= 0 && binHint < n-1 {
		if x >= xi[binHint] && x < xi[binHint+1] {
			return binHint
		}
		if binHint < n-2 && x >= xi[binHint+1] && x < xi[binHint+2] {
			return binHint + 1
		}
	}

	if x <= xi[0] {
		return 0
	}
	if x >= xi[n-1] {
		return n - 2
	}
	bin := sort.Search(n, func(i int) bool { return xi[i] >= x })
	if bin < 0 {
		bin = 0
	}
	if bin >= n {
		bin = n - 2
	}
	if x < xi[bin] && bin > 0 {
		bin--
	}
	if bin < n-1 && x >= xi[bin+1] {
		bin++
	}
	if bin > n-2 {
		bin = n - 2
	}
	return bin
}

// evaluateSpline evaluates the piecewise cubic at each of xs using
// Horner's method, clamping extrapolation beyond the boundary abscissas
// to the boundary spline value.
func evaluateSpline(xs []int64, xi []int64, coeffs []float64) []float64 {
	out := make([]float64, len(xs))
	hint := -1
	n := len(xi)
	for i, x := range xs {
		switch {
		case x < xi[0]:
			out[i] = coeffs[0]
			hint = 0
		case x > xi[n-1]:
			dx := float64(xi[n-1] - xi[n-2])
			idx := 4 * (n - 2)
			out[i] = coeffs[idx] + dx*(coeffs[idx+1]+dx*(coeffs[idx+2]+coeffs[idx+3]*dx))
			hint = n - 2
		default:
			bin := locate(x, xi, hint)
			hint = bin
			dx := float64(x - xi[bin])
			idx := 4 * bin
			out[i] = coeffs[idx] + dx*(coeffs[idx+1]+dx*(coeffs[idx+2]+coeffs[idx+3]*dx))
		}
	}
	return out
}

// weightedAverageSlopes interpolates values(times) at timesToEvaluate.
// When checkSorting is true, times may be unsorted and/or contain
// duplicates; they are argsorted and deduplicated (first of any
// duplicate run wins) before building the spline.
func weightedAverageSlopes(times []int64, values []float64, timesToEvaluate []int64, checkSorting bool) ([]float64, error) {
	if len(timesToEvaluate) == 0 {
		return nil, errors.New("packetcache: no points at which to evaluate")
	}
	if len(times) != len(values) {
		return nil, errors.New("packetcache: times and values must be the same length")
	}

	x, y := times, values
	if checkSorting && !sort.SliceIsSorted(times, func(a, b int) bool { return times[a] < times[b] }) {
		indices := argsortInt64(times)
		x, y = copyUnique(permuteInt64(times, indices), permuteFloat64(values, indices))
	} else if checkSorting {
		x, y = copyUnique(times, values)
	}
	if len(x) < 2 {
		return nil, ErrInsufficientData
	}

	coeffs := computeNonUniformSlopes(x, y)
	return evaluateSpline(timesToEvaluate, x, coeffs), nil
}

// TimeValue is one (timestamp, sample) pair fed into Interpolate, with
// TimeMicro the sample's absolute time since the epoch in microseconds.
type TimeValue struct {
	TimeMicro int64
	Value     float64
}

// InterpolationResult is Interpolate's output (SPEC_FULL §4.8).
type InterpolationResult struct {
	Signal       []float64
	GapIndicator []bool
	StartTimeMicro int64
	EndTimeMicro   int64
	SampleRateHz   float64
}

const defaultGapToleranceMicro int64 = 30000

// Interpolate produces a uniformly sampled signal at targetRateHz over
// [min(points.time), max(points.time)], plus a boolean gap indicator of
// the same length. gapToleranceMicro <= 0 uses the 30ms default (three
// samples at 100 Hz).
func Interpolate(points []TimeValue, targetRateHz float64, gapToleranceMicro int64) (InterpolationResult, error) {
	if targetRateHz <= 0 {
		return InterpolationResult{}, errors.New("packetcache: target sampling rate must be positive")
	}
	if gapToleranceMicro <= 0 {
		gapToleranceMicro = defaultGapToleranceMicro
	}
	if len(points) == 0 {
		return InterpolationResult{}, ErrInsufficientData
	}

	times := make([]int64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.TimeMicro
		values[i] = p.Value
	}
	indices := argsortInt64(times)
	sortedTimes := permuteInt64(times, indices)
	sortedValues := permuteFloat64(values, indices)
	uniqueTimes, uniqueValues := copyUnique(sortedTimes, sortedValues)
	if len(uniqueTimes) < 2 {
		return InterpolationResult{}, ErrInsufficientData
	}

	start := uniqueTimes[0]
	end := uniqueTimes[len(uniqueTimes)-1]
	stepMicro := int64(math.Round(1e6 / targetRateHz))
	if stepMicro <= 0 {
		stepMicro = 1
	}

	var evalTimes []int64
	for t := start; t <= end; t += stepMicro {
		evalTimes = append(evalTimes, t)
	}
	if len(evalTimes) == 0 {
		evalTimes = []int64{start}
	}

	signal, err := weightedAverageSlopes(uniqueTimes, uniqueValues, evalTimes, false)
	if err != nil {
		return InterpolationResult{}, err
	}

	gapIntervalExceeds := make([]bool, len(uniqueTimes)-1)
	for i := 0; i < len(uniqueTimes)-1; i++ {
		gapIntervalExceeds[i] = uniqueTimes[i+1]-uniqueTimes[i] > gapToleranceMicro
	}

	gaps := make([]bool, len(evalTimes))
	hint := -1
	for i, t := range evalTimes {
		if t < uniqueTimes[0] || t > uniqueTimes[len(uniqueTimes)-1] {
			gaps[i] = true
			continue
		}
		bin := locate(t, uniqueTimes, hint)
		hint = bin
		gaps[i] = gapIntervalExceeds[bin]
	}

	return InterpolationResult{
		Signal:         signal,
		GapIndicator:   gaps,
		StartTimeMicro: start,
		EndTimeMicro:   evalTimes[len(evalTimes)-1],
		SampleRateHz:   targetRateHz,
	}, nil
}
