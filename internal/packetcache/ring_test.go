// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package packetcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uofuseismo/umps/pkg/schema"
)

func packetAt(startMicro int64) schema.DataPacket[float64] {
	p := schema.DataPacket[float64]{
		Network: "UU", Station: "ABC", Channel: "HHZ", LocationCode: "01",
		StartTimeMicro: startMicro,
		Samples:        []float64{1, 2, 3},
	}
	_ = p.SetSamplingRate(100)
	return p
}

func TestCappedCollectionOrdersByStartTime(t *testing.T) {
	c := NewCappedCollection[float64](10)
	c.Add(packetAt(3000))
	c.Add(packetAt(1000))
	c.Add(packetAt(2000))

	sncl := schema.SNCL{Network: "UU", Station: "ABC", Channel: "HHZ", LocationCode: "01"}
	got := c.Query(sncl, 0, 1_000_000)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1000), got[0].StartTimeMicro)
	assert.Equal(t, int64(2000), got[1].StartTimeMicro)
	assert.Equal(t, int64(3000), got[2].StartTimeMicro)
}

func TestCappedCollectionEvictsOldestWhenFull(t *testing.T) {
	c := NewCappedCollection[float64](2)
	c.Add(packetAt(1000))
	c.Add(packetAt(2000))
	c.Add(packetAt(3000))

	sncl := schema.SNCL{Network: "UU", Station: "ABC", Channel: "HHZ", LocationCode: "01"}
	assert.Equal(t, 2, c.Size(sncl))
	assert.Equal(t, 2, c.TotalPackets())

	got := c.Query(sncl, 0, 1_000_000)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2000), got[0].StartTimeMicro)
	assert.Equal(t, int64(3000), got[1].StartTimeMicro)
}

func TestCappedCollectionLastWriterWinsOnEqualStartTime(t *testing.T) {
	c := NewCappedCollection[float64](10)
	first := packetAt(1000)
	second := packetAt(1000)
	second.Samples = []float64{9, 9, 9}

	c.Add(first)
	c.Add(second)

	sncl := schema.SNCL{Network: "UU", Station: "ABC", Channel: "HHZ", LocationCode: "01"}
	assert.Equal(t, 1, c.Size(sncl))
	got := c.Query(sncl, 0, 1_000_000)
	require.Len(t, got, 1)
	assert.Equal(t, second.Samples, got[0].Samples)
}

func TestCappedCollectionQueryUnknownSNCLIsEmpty(t *testing.T) {
	c := NewCappedCollection[float64](10)
	sncl := schema.SNCL{Network: "XX", Station: "YY", Channel: "ZZ", LocationCode: "00"}
	assert.Empty(t, c.Query(sncl, 0, 100))
}

func TestCappedCollectionSNCLs(t *testing.T) {
	c := NewCappedCollection[float64](10)
	c.Add(packetAt(1000))
	c.Add(packetAt(2000))

	sncls := c.SNCLs()
	require.Len(t, sncls, 1)
	assert.Equal(t, "UU", sncls[0].Network)
}
