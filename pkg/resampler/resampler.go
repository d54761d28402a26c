// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resampler downsamples an interpolated response before it goes
// out over a pattern socket; the packet cache service uses it to keep an
// InterpolatedResponse over a wide time range within its per-response
// sample limit. Bulk data responses are not resampled. SimpleResampler
// decimates by taking every step-th sample; LargestTriangleThreeBucket (LTTB) instead picks,
// per bucket, the sample that best preserves the original curve's visual
// shape, trading exactness for a much smaller payload.
package resampler

import (
	"errors"
	"fmt"
	"math"
)

// SimpleResampler decimates data from oldFrequency to newFrequency by
// keeping every step-th sample, where step = newFrequency/oldFrequency.
// newFrequency must be an integer multiple of oldFrequency, since this
// decimation only ever reduces the rate. data is returned unchanged if
// decimation would not meaningfully shrink it.
func SimpleResampler(data []float64, oldFrequency int64, newFrequency int64) ([]float64, error) {
	if oldFrequency == 0 || newFrequency == 0 {
		return nil, errors.New("either old or new frequency is set to 0")
	}
	if newFrequency%oldFrequency != 0 {
		return nil, errors.New("new sampling frequency should be a multiple of the old frequency")
	}

	step := int(newFrequency / oldFrequency)
	newLength := len(data) / step
	if newLength == 0 || len(data) < 100 || newLength >= len(data) {
		return data, nil
	}

	newData := make([]float64, newLength)
	for i := 0; i < newLength; i++ {
		newData[i] = data[i*step]
	}
	return newData, nil
}

// LargestTriangleThreeBucket downsamples data to roughly newDataLength
// points using the LTTB algorithm: https://skemman.is/bitstream/1946/15343/3/SS_MSthesis.pdf,
// adapted from https://github.com/haoel/downsampling. It picks, from each
// bucket, the point forming the largest triangle with the previously
// chosen point and the next bucket's average, which preserves visual
// peaks an evenly-spaced decimation would smooth away.
func LargestTriangleThreeBucket(data []float64, oldFrequency int, newFrequency int) ([]float64, int, error) {
	if oldFrequency == 0 || newFrequency == 0 {
		return data, oldFrequency, nil
	}
	if newFrequency%oldFrequency != 0 {
		return nil, 0, fmt.Errorf("new sampling frequency %d should be a multiple of the old frequency %d", newFrequency, oldFrequency)
	}

	step := newFrequency / oldFrequency
	newDataLength := len(data) / step
	if newDataLength == 0 || len(data) < 100 || newDataLength >= len(data) {
		return data, oldFrequency, nil
	}

	newData := make([]float64, 0, newDataLength)
	bucketSize := float64(len(data)-2) / float64(newDataLength-2)
	newData = append(newData, data[0])

	bucketLow := 1
	bucketMiddle := int(math.Floor(bucketSize)) + 1
	var prevMaxAreaPoint int

	for i := 0; i < newDataLength-2; i++ {
		bucketHigh := int(math.Floor(float64(i+2)*bucketSize)) + 1
		if bucketHigh >= len(data)-1 {
			bucketHigh = len(data) - 2
		}

		avgPointX, avgPointY := calculateAverageDataPoint(data[bucketMiddle:bucketHigh+1], int64(bucketMiddle))

		currBucketStart := bucketLow
		currBucketEnd := bucketMiddle

		pointX := prevMaxAreaPoint
		pointY := data[prevMaxAreaPoint]

		maxArea := -1.0
		var maxAreaPoint int
		for ; currBucketStart < currBucketEnd; currBucketStart++ {
			area := calculateTriangleArea(float64(pointX), pointY, avgPointX, avgPointY, float64(currBucketStart), data[currBucketStart])
			if area > maxArea {
				maxArea = area
				maxAreaPoint = currBucketStart
			}
		}

		newData = append(newData, data[maxAreaPoint])
		prevMaxAreaPoint = maxAreaPoint

		bucketLow = bucketMiddle
		bucketMiddle = bucketHigh
	}

	newData = append(newData, data[len(data)-1])
	return newData, newFrequency, nil
}
