// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

// RegisterRequest asks the connection information service to record (or
// replace) one module's ConnectionDetails entry.
type RegisterRequest struct {
	Details ConnectionDetails `json:"details"`
}

func (r *RegisterRequest) TypeTag() string { return "UMPS.ConnectionInfo.RegisterRequest" }

func (r *RegisterRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *RegisterRequest) FromCBOR(data []byte) error {
	var decoded RegisterRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// RegisterResponse acknowledges a RegisterRequest.
type RegisterResponse struct{}

func (r *RegisterResponse) TypeTag() string { return "UMPS.ConnectionInfo.RegisterResponse" }

func (r *RegisterResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *RegisterResponse) FromCBOR(data []byte) error {
	var decoded RegisterResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// DeregisterRequest removes a named entry.
type DeregisterRequest struct {
	Name string `json:"name"`
}

func (r *DeregisterRequest) TypeTag() string { return "UMPS.ConnectionInfo.DeregisterRequest" }

func (r *DeregisterRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *DeregisterRequest) FromCBOR(data []byte) error {
	var decoded DeregisterRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// DeregisterResponse acknowledges a DeregisterRequest.
type DeregisterResponse struct{}

func (r *DeregisterResponse) TypeTag() string { return "UMPS.ConnectionInfo.DeregisterResponse" }

func (r *DeregisterResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *DeregisterResponse) FromCBOR(data []byte) error {
	var decoded DeregisterResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// ListRequest asks for every currently registered connection.
type ListRequest struct{}

func (r *ListRequest) TypeTag() string { return "UMPS.ConnectionInfo.ListRequest" }

func (r *ListRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *ListRequest) FromCBOR(data []byte) error {
	var decoded ListRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// ListResponse answers a ListRequest.
type ListResponse struct {
	Connections []ConnectionDetails `json:"connections"`
}

func (r *ListResponse) TypeTag() string { return "UMPS.ConnectionInfo.ListResponse" }

func (r *ListResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *ListResponse) FromCBOR(data []byte) error {
	var decoded ListResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// QueryRequest asks for one named connection's details.
type QueryRequest struct {
	Name string `json:"name"`
}

func (r *QueryRequest) TypeTag() string { return "UMPS.ConnectionInfo.QueryRequest" }

func (r *QueryRequest) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *QueryRequest) FromCBOR(data []byte) error {
	var decoded QueryRequest
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// QueryResponse answers a QueryRequest. Found is false when no entry by
// that name is registered, in which case Details is the zero value.
type QueryResponse struct {
	Found   bool              `json:"found"`
	Details ConnectionDetails `json:"details"`
}

func (r *QueryResponse) TypeTag() string { return "UMPS.ConnectionInfo.QueryResponse" }

func (r *QueryResponse) ToCBOR() ([]byte, error) { return marshalCBOR(r) }

func (r *QueryResponse) FromCBOR(data []byte) error {
	var decoded QueryResponse
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}
