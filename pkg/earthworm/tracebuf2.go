// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package earthworm implements the Earthworm TraceBuf2 wire frame
// (SPEC_FULL §6.2), grounded on original_source's
// umps/messageFormats/earthworm/traceBuf2.hpp. The Earthworm shared-memory
// ring adapter itself is out of scope (spec.md §1 Non-goals); this package
// only implements the frame codec a DataPacket is constructed from.
package earthworm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/uofuseismo/umps/pkg/schema"
)

const (
	headerSize   = 64
	maxPayload   = 4096 - headerSize
	stationLen   = 7
	networkLen   = 9
	channelLen   = 4
	locationLen  = 3
	versionLen   = 2
	datatypeLen  = 3
	qualityLen   = 2
)

// TraceBuf2 is the decoded form of one Earthworm TraceBuf2 frame.
type TraceBuf2[T schema.Sample] struct {
	PinNumber      int32
	Station        string
	Network        string
	Channel        string
	LocationCode   string
	Quality        string
	SamplingRateHz float64
	StartTime      float64 // seconds since 1970-01-01
	EndTime        float64
	Samples        []T
}

// datatype returns the 2-character Earthworm datatype tag for T and
// endianness, e.g. "i4" (little-endian int32) or "s4" (big-endian int32).
func datatype[T schema.Sample](bigEndian bool) (string, int, error) {
	var zero T
	var size int
	var kind byte
	switch any(zero).(type) {
	case int16:
		size, kind = 2, 'i'
	case int32:
		size, kind = 4, 'i'
	case float32:
		size, kind = 4, 'f'
	case float64:
		size, kind = 8, 'f'
	default:
		return "", 0, fmt.Errorf("earthworm: unsupported sample type")
	}
	if bigEndian {
		if kind == 'i' {
			kind = 's'
		} else {
			kind = 't'
		}
	}
	return fmt.Sprintf("%c%d", kind, size), size, nil
}

func putFixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func getFixedString(src []byte) string {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	return string(src[:n])
}

// Encode serializes tb into a TraceBuf2 frame. bigEndian selects the
// datatype tag and sample byte order.
func Encode[T schema.Sample](tb *TraceBuf2[T], bigEndian bool) ([]byte, error) {
	dtype, sampleSize, err := datatype[T](bigEndian)
	if err != nil {
		return nil, err
	}
	payloadLen := len(tb.Samples) * sampleSize
	if payloadLen > maxPayload {
		return nil, fmt.Errorf("earthworm: payload of %d bytes exceeds max %d", payloadLen, maxPayload)
	}

	buf := make([]byte, headerSize+payloadLen)
	order := byteOrder(bigEndian)

	order.PutUint32(buf[0:4], uint32(tb.PinNumber))
	order.PutUint32(buf[4:8], uint32(len(tb.Samples)))
	order.PutUint64(buf[8:16], math.Float64bits(tb.StartTime))
	order.PutUint64(buf[16:24], math.Float64bits(tb.EndTime))
	order.PutUint64(buf[24:32], math.Float64bits(tb.SamplingRateHz))
	putFixedString(buf[32:32+stationLen], tb.Station)
	putFixedString(buf[39:39+networkLen], tb.Network)
	putFixedString(buf[48:48+channelLen], tb.Channel)
	putFixedString(buf[52:52+locationLen], tb.LocationCode)
	putFixedString(buf[55:55+versionLen], "20")
	putFixedString(buf[57:57+datatypeLen], dtype)
	putFixedString(buf[60:60+qualityLen], tb.Quality)

	for i, sample := range tb.Samples {
		offset := headerSize + i*sampleSize
		if err := putSample(order, buf[offset:offset+sampleSize], sample); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Decode parses a TraceBuf2 frame, detecting endianness from the
// datatype field's first character (i/f = little, s/t = big) per
// SPEC_FULL §6.2, and rejects a frame whose datatype[1] sample size
// differs from T's.
func Decode[T schema.Sample](frame []byte) (*TraceBuf2[T], error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("earthworm: frame of %d bytes shorter than header", len(frame))
	}
	dtype := getFixedString(frame[57 : 57+datatypeLen])
	if len(dtype) < 2 {
		return nil, fmt.Errorf("earthworm: invalid datatype field %q", dtype)
	}
	bigEndian := dtype[0] == 's' || dtype[0] == 't'
	order := byteOrder(bigEndian)

	nSamples := int(order.Uint32(frame[4:8]))
	_, sampleSize, err := datatype[T](bigEndian)
	if err != nil {
		return nil, err
	}
	if dtype[1] != byte('0'+sampleSize) {
		return nil, fmt.Errorf("earthworm: datatype %q does not hold %d-byte samples", dtype, sampleSize)
	}
	expected := headerSize + nSamples*sampleSize
	if len(frame) < expected {
		return nil, fmt.Errorf("earthworm: frame of %d bytes too short for %d declared samples", len(frame), nSamples)
	}

	tb := &TraceBuf2[T]{
		PinNumber:      int32(order.Uint32(frame[0:4])),
		StartTime:      math.Float64frombits(order.Uint64(frame[8:16])),
		EndTime:        math.Float64frombits(order.Uint64(frame[16:24])),
		SamplingRateHz: math.Float64frombits(order.Uint64(frame[24:32])),
		Station:        getFixedString(frame[32 : 32+stationLen]),
		Network:        getFixedString(frame[39 : 39+networkLen]),
		Channel:        getFixedString(frame[48 : 48+channelLen]),
		LocationCode:   getFixedString(frame[52 : 52+locationLen]),
		Quality:        getFixedString(frame[60 : 60+qualityLen]),
		Samples:        make([]T, nSamples),
	}
	for i := 0; i < nSamples; i++ {
		offset := headerSize + i*sampleSize
		sample, err := getSample[T](order, frame[offset:offset+sampleSize])
		if err != nil {
			return nil, err
		}
		tb.Samples[i] = sample
	}
	return tb, nil
}

type order interface {
	PutUint16([]byte, uint16)
	PutUint32([]byte, uint32)
	PutUint64([]byte, uint64)
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

func byteOrder(bigEndian bool) order {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func putSample[T schema.Sample](order order, dst []byte, sample T) error {
	switch v := any(sample).(type) {
	case int16:
		order.PutUint16(dst, uint16(v))
		return nil
	case int32:
		order.PutUint32(dst, uint32(v))
		return nil
	case float32:
		order.PutUint32(dst, math.Float32bits(v))
		return nil
	case float64:
		order.PutUint64(dst, math.Float64bits(v))
		return nil
	default:
		return fmt.Errorf("earthworm: unsupported sample type")
	}
}

func getSample[T schema.Sample](order order, src []byte) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int16:
		v := int16(order.Uint16(src))
		return any(v).(T), nil
	case int32:
		v := int32(order.Uint32(src))
		return any(v).(T), nil
	case float32:
		v := math.Float32frombits(order.Uint32(src))
		return any(v).(T), nil
	case float64:
		v := math.Float64frombits(order.Uint64(src))
		return any(v).(T), nil
	default:
		return zero, fmt.Errorf("earthworm: unsupported sample type")
	}
}
