// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

// BulkDataRequest asks the packet cache service for every known packet
// intersecting [T0Micro, T1Micro] on each listed channel (SPEC_FULL
// §4.9).
type BulkDataRequest struct {
	SNCLList []SNCL `json:"sncl_list"`
	T0Micro  int64  `json:"t0_us"`
	T1Micro  int64  `json:"t1_us"`
}

func (r *BulkDataRequest) TypeTag() string { return "UMPS.PacketCache.BulkDataRequest" }

func (r *BulkDataRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *BulkDataRequest) FromCBOR(data []byte) error {
	var decoded BulkDataRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// DataResponse is one channel's packets within a BulkDataResponse.
type DataResponse struct {
	SNCL    SNCL               `json:"sncl"`
	Packets []DataPacket[float64] `json:"packets"`
}

// BulkDataResponse answers a BulkDataRequest with one DataResponse per
// requested channel.
type BulkDataResponse struct {
	Responses []DataResponse `json:"responses"`
}

func (r *BulkDataResponse) TypeTag() string { return "UMPS.PacketCache.BulkDataResponse" }

func (r *BulkDataResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *BulkDataResponse) FromCBOR(data []byte) error {
	var decoded BulkDataResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// InterpolatedRequest asks for a uniformly resampled signal on one
// channel over [T0Micro, T1Micro] (SPEC_FULL §4.8-4.9). GapToleranceMicro
// <= 0 uses the interpolator's default.
type InterpolatedRequest struct {
	SNCL              SNCL    `json:"sncl"`
	T0Micro           int64   `json:"t0_us"`
	T1Micro           int64   `json:"t1_us"`
	TargetRateHz      float64 `json:"target_rate_hz"`
	GapToleranceMicro int64   `json:"gap_tolerance_us"`
}

func (r *InterpolatedRequest) TypeTag() string { return "UMPS.PacketCache.InterpolatedRequest" }

func (r *InterpolatedRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *InterpolatedRequest) FromCBOR(data []byte) error {
	var decoded InterpolatedRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// InterpolatedResponse answers an InterpolatedRequest.
type InterpolatedResponse struct {
	SNCL           SNCL      `json:"sncl"`
	Samples        []float64 `json:"samples"`
	Gaps           []bool    `json:"gaps"`
	StartTimeMicro int64     `json:"start_time_us"`
	SampleRateHz   float64   `json:"sample_rate_hz"`
}

func (r *InterpolatedResponse) TypeTag() string { return "UMPS.PacketCache.InterpolatedResponse" }

func (r *InterpolatedResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *InterpolatedResponse) FromCBOR(data []byte) error {
	var decoded InterpolatedResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// SensorRequest asks the packet cache service which channels it currently
// holds data for.
type SensorRequest struct{}

func (r *SensorRequest) TypeTag() string { return "UMPS.PacketCache.SensorRequest" }

func (r *SensorRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *SensorRequest) FromCBOR(data []byte) error {
	var decoded SensorRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// SensorResponse answers a SensorRequest.
type SensorResponse struct {
	SNCLList []SNCL `json:"sncl_list"`
}

func (r *SensorResponse) TypeTag() string { return "UMPS.PacketCache.SensorResponse" }

func (r *SensorResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *SensorResponse) FromCBOR(data []byte) error {
	var decoded SensorResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}
