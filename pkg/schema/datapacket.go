// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"errors"
	"fmt"
)

// Sample is the numeric constraint DataPacket is generic over, matching
// SPEC_FULL's T ∈ {i16, i32, f32, f64}.
type Sample interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// DataPacket is a packet of seismic time series data for one channel
// (SPEC_FULL §3), grounded on original_source's
// urts/messageFormats/dataPacket.hpp. Unlike the C++ class, presence is
// tracked with plain bool fields rather than a separate "have" query per
// setter; the invariants are identical.
type DataPacket[T Sample] struct {
	Network        string  `json:"network"`
	Station        string  `json:"station"`
	Channel        string  `json:"channel"`
	LocationCode   string  `json:"location_code"`
	SamplingRateHz float64 `json:"sampling_rate_hz"`
	StartTimeMicro int64   `json:"start_time_us"`
	Samples        []T     `json:"samples"`

	haveSamplingRate bool
}

// NewDataPacket returns a zero-valued DataPacket.
func NewDataPacket[T Sample]() *DataPacket[T] {
	return &DataPacket[T]{}
}

// SNCL identifies the channel this packet belongs to.
type SNCL struct {
	Network      string
	Station      string
	Channel      string
	LocationCode string
}

func (s SNCL) String() string {
	return s.Network + "." + s.Station + "." + s.Channel + "." + s.LocationCode
}

// SNCL returns the station-network-channel-location key for this packet.
func (p *DataPacket[T]) SNCL() SNCL {
	return SNCL{Network: p.Network, Station: p.Station, Channel: p.Channel, LocationCode: p.LocationCode}
}

// SetSamplingRate sets the sampling rate in Hz. Returns InvalidArgument
// if rate is not positive.
func (p *DataPacket[T]) SetSamplingRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: sampling rate must be positive", ErrInvalidArgument)
	}
	p.SamplingRateHz = rate
	p.haveSamplingRate = true
	return nil
}

// HaveSamplingRate reports whether SetSamplingRate was called.
func (p *DataPacket[T]) HaveSamplingRate() bool { return p.haveSamplingRate }

// NumberOfSamples returns len(p.Samples).
func (p *DataPacket[T]) NumberOfSamples() int { return len(p.Samples) }

// EndTime returns the UTC time in microseconds of the last sample:
// start_time + round((n-1) * 1e6 / rate). Per SPEC_FULL §3 this requires
// a positive sampling rate and at least one sample.
func (p *DataPacket[T]) EndTime() (int64, error) {
	if !p.haveSamplingRate {
		return 0, fmt.Errorf("%w: sampling rate not set", ErrNotInitialized)
	}
	n := len(p.Samples)
	if n == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrNotInitialized)
	}
	offset := roundToMicroseconds(float64(n-1) * 1e6 / p.SamplingRateHz)
	return p.StartTimeMicro + offset, nil
}

func roundToMicroseconds(v float64) int64 {
	if v < 0 {
		return int64(v - 0.5)
	}
	return int64(v + 0.5)
}

// TypeTag identifies this schema for the envelope registry.
func (p *DataPacket[T]) TypeTag() string { return "UMPS.DataPacket" }

func (p *DataPacket[T]) ToCBOR() ([]byte, error) { return marshalCBOR(p) }

func (p *DataPacket[T]) FromCBOR(data []byte) error {
	var decoded DataPacket[T]
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	if decoded.Network == "" || decoded.Station == "" || decoded.Channel == "" {
		return errors.New("schema: data packet missing network/station/channel")
	}
	decoded.haveSamplingRate = decoded.SamplingRateHz > 0
	*p = decoded
	return nil
}

var (
	ErrInvalidArgument = errors.New("schema: invalid argument")
	ErrNotInitialized  = errors.New("schema: not initialized")
)
