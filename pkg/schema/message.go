// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package schema defines the wire-level data types exchanged over pattern
// sockets: the typed message envelope, data packets, module status, user
// records and the ZAP reply. Every type here is a plain value type encoded
// with CBOR (github.com/fxamacker/cbor/v2) as its primary wire format, with
// a JSON escape hatch for debugging, the same two-format discipline
// cc-backend's pkg/schema applies to its job/metric types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Message is the envelope every pattern socket exchanges: a type tag
// identifying the schema of payload, a schema version, and the opaque
// payload bytes themselves. Frame 1 on the wire is TypeTag, frame 2 is
// Payload (see SPEC_FULL §6.1); Message is the in-memory pairing of both.
type Message struct {
	TypeTag string `json:"type_tag"`
	Version string `json:"version"`
	Payload []byte `json:"payload"`
}

// Marshaler is implemented by every concrete message payload type
// (DataPacket, Status, ZapReply, ...). TypeTag identifies the schema so a
// Registry can route a decoded Message to the right factory.
type Marshaler interface {
	TypeTag() string
	ToCBOR() ([]byte, error)
	FromCBOR([]byte) error
}

// EncodeMessage serializes m into a Message envelope using CBOR.
func EncodeMessage(m Marshaler, version string) (Message, error) {
	payload, err := m.ToCBOR()
	if err != nil {
		return Message{}, fmt.Errorf("schema: encode %s: %w", m.TypeTag(), err)
	}
	return Message{TypeTag: m.TypeTag(), Version: version, Payload: payload}, nil
}

// marshalCBOR and unmarshalCBOR are the shared helpers every concrete
// payload type's ToCBOR/FromCBOR delegates to.
func marshalCBOR(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

func unmarshalCBOR(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("schema: empty payload")
	}
	return cbor.Unmarshal(data, v)
}

// ToJSON renders v as indented JSON for debugging; not used on the wire.
func ToJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
