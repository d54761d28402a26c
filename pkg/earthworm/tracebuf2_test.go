// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package earthworm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTraceBuf() *TraceBuf2[int32] {
	return &TraceBuf2[int32]{
		PinNumber:      12,
		Station:        "ABC",
		Network:        "UU",
		Channel:        "HHZ",
		LocationCode:   "01",
		Quality:        "",
		SamplingRateHz: 100,
		StartTime:      1700000000.0,
		EndTime:        1700000001.0,
		Samples:        []int32{1, -2, 3, -4, 5},
	}
}

func TestTraceBuf2RoundTripLittleEndian(t *testing.T) {
	tb := sampleTraceBuf()
	frame, err := Encode(tb, false)
	require.NoError(t, err)

	decoded, err := Decode[int32](frame)
	require.NoError(t, err)

	assert.Equal(t, tb.PinNumber, decoded.PinNumber)
	assert.Equal(t, tb.Station, decoded.Station)
	assert.Equal(t, tb.Network, decoded.Network)
	assert.Equal(t, tb.Channel, decoded.Channel)
	assert.Equal(t, tb.LocationCode, decoded.LocationCode)
	assert.InDelta(t, tb.SamplingRateHz, decoded.SamplingRateHz, 1e-9)
	assert.InDelta(t, tb.StartTime, decoded.StartTime, 1e-9)
	assert.InDelta(t, tb.EndTime, decoded.EndTime, 1e-9)
	assert.Equal(t, tb.Samples, decoded.Samples)
}

func TestTraceBuf2RoundTripBigEndian(t *testing.T) {
	tb := sampleTraceBuf()
	frame, err := Encode(tb, true)
	require.NoError(t, err)

	decoded, err := Decode[int32](frame)
	require.NoError(t, err)
	assert.Equal(t, tb.Samples, decoded.Samples)
}

func TestTraceBuf2DatatypeTagSelectsEndianByFirstByte(t *testing.T) {
	tbLittle := sampleTraceBuf()
	little, err := Encode(tbLittle, false)
	require.NoError(t, err)
	assert.Equal(t, byte('i'), little[57])

	big, err := Encode(tbLittle, true)
	require.NoError(t, err)
	assert.Equal(t, byte('s'), big[57])
}

func TestTraceBuf2FloatSamplesRoundTrip(t *testing.T) {
	tb := &TraceBuf2[float64]{
		Station: "XYZ", Network: "UU", Channel: "BHZ", LocationCode: "00",
		SamplingRateHz: 40, StartTime: 0, EndTime: 1,
		Samples: []float64{1.5, -2.25, 3.125},
	}
	frame, err := Encode(tb, false)
	require.NoError(t, err)

	decoded, err := Decode[float64](frame)
	require.NoError(t, err)
	assert.Equal(t, tb.Samples, decoded.Samples)
}

func TestTraceBuf2RejectsOversizedPayload(t *testing.T) {
	tb := sampleTraceBuf()
	tb.Samples = make([]int32, maxPayload/4+1)
	_, err := Encode(tb, false)
	assert.Error(t, err)
}

func TestTraceBuf2DecodeRejectsShortFrame(t *testing.T) {
	_, err := Decode[int32]([]byte{1, 2, 3})
	assert.Error(t, err)
}
