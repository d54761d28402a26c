// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

// Failure is the reply a Router callback produces in place of panicking
// or returning an error, per SPEC_FULL §9: "the poll loop's contract is
// that callbacks never panic and always return a message (a Failure if
// nothing else)".
type Failure struct {
	Detail string `json:"detail"`
}

func (f *Failure) TypeTag() string { return "UMPS.Failure" }

func (f *Failure) ToCBOR() ([]byte, error) { return marshalCBOR(f) }

func (f *Failure) FromCBOR(data []byte) error {
	var decoded Failure
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*f = decoded
	return nil
}
