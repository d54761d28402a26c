// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sockets

import (
	"encoding/binary"
	"fmt"

	"github.com/uofuseismo/umps/pkg/schema"
)

// NATS delivers a single byte-slice per message rather than the
// multi-part frames SPEC_FULL §6.1 describes, so EncodeFrame/DecodeFrame
// implement the length-prefixed two-frame framing noted in SPEC_FULL §6:
//
//	[4 bytes BE: len(type_tag)][type_tag][payload]
//
// Message.Version is not written to the wire: the payload holds only the
// CBOR encoding of the concrete message.
func EncodeFrame(msg schema.Message) []byte {
	tag := []byte(msg.TypeTag)
	out := make([]byte, 4+len(tag)+len(msg.Payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(tag)))
	copy(out[4:4+len(tag)], tag)
	copy(out[4+len(tag):], msg.Payload)
	return out
}

// DecodeFrame parses a frame produced by EncodeFrame. The returned
// Message's Version is left empty.
func DecodeFrame(data []byte) (schema.Message, error) {
	if len(data) < 4 {
		return schema.Message{}, fmt.Errorf("%w: frame shorter than length prefix", ErrDecodeError)
	}
	tagLen := binary.BigEndian.Uint32(data[0:4])
	if uint32(len(data)) < 4+tagLen {
		return schema.Message{}, fmt.Errorf("%w: frame shorter than declared type_tag", ErrDecodeError)
	}
	tag := string(data[4 : 4+tagLen])
	payload := data[4+tagLen:]
	return schema.Message{TypeTag: tag, Payload: payload}, nil
}
