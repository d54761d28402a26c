// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSamplingRateRejectsNonPositive(t *testing.T) {
	p := NewDataPacket[float64]()
	assert.False(t, p.HaveSamplingRate())

	err := p.SetSamplingRate(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, p.HaveSamplingRate())

	require.NoError(t, p.SetSamplingRate(100))
	assert.True(t, p.HaveSamplingRate())
	assert.Equal(t, 100.0, p.SamplingRateHz)
}

func TestEndTimeRequiresSamplingRateAndSamples(t *testing.T) {
	p := NewDataPacket[float64]()
	_, err := p.EndTime()
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, p.SetSamplingRate(100))
	_, err = p.EndTime()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestEndTimeComputesRoundedOffset(t *testing.T) {
	p := NewDataPacket[float64]()
	p.StartTimeMicro = 1_000_000
	p.Samples = make([]float64, 101)
	require.NoError(t, p.SetSamplingRate(100))

	end, err := p.EndTime()
	require.NoError(t, err)
	// (101-1) samples / 100 Hz = 1 second = 1_000_000 microseconds.
	assert.Equal(t, int64(2_000_000), end)
}

func TestEndTimeRoundsToNearestMicrosecond(t *testing.T) {
	p := NewDataPacket[float64]()
	p.StartTimeMicro = 0
	p.Samples = make([]float64, 3)
	require.NoError(t, p.SetSamplingRate(3))

	end, err := p.EndTime()
	require.NoError(t, err)
	// (3-1)/3 * 1e6 = 666666.666... -> rounds to 666667.
	assert.Equal(t, int64(666667), end)
}

func TestSNCLStringFormatsDotSeparated(t *testing.T) {
	p := NewDataPacket[int32]()
	p.Network, p.Station, p.Channel, p.LocationCode = "UU", "ABC", "HHZ", "01"
	assert.Equal(t, "UU.ABC.HHZ.01", p.SNCL().String())
}

func TestDataPacketCBORRoundTrip(t *testing.T) {
	p := NewDataPacket[int32]()
	p.Network, p.Station, p.Channel, p.LocationCode = "UU", "ABC", "HHZ", "01"
	p.StartTimeMicro = 42
	p.Samples = []int32{1, 2, 3}
	require.NoError(t, p.SetSamplingRate(50))

	data, err := p.ToCBOR()
	require.NoError(t, err)

	var decoded DataPacket[int32]
	require.NoError(t, decoded.FromCBOR(data))
	assert.Equal(t, p.Network, decoded.Network)
	assert.Equal(t, p.Samples, decoded.Samples)
	assert.True(t, decoded.HaveSamplingRate())
}

func TestDataPacketFromCBORRejectsMissingIdentity(t *testing.T) {
	p := NewDataPacket[int32]()
	p.Station = "ABC"
	p.Channel = "HHZ"
	data, err := p.ToCBOR()
	require.NoError(t, err)

	var decoded DataPacket[int32]
	err = decoded.FromCBOR(data)
	assert.Error(t, err)
}
