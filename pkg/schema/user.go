// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import "fmt"

// Privilege is the access level a User is granted, used by an
// Authenticator's min_privileges check (SPEC_FULL §4.3).
type Privilege int

const (
	PrivilegeReadOnly Privilege = iota
	PrivilegeReadWrite
	PrivilegeAdministrator
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeReadWrite:
		return "ReadWrite"
	case PrivilegeAdministrator:
		return "Administrator"
	default:
		return "ReadOnly"
	}
}

// User is a credential record (SPEC_FULL §3). HashedPassword and
// PublicKey are mutually optional: Woodhouse authentication needs the
// former, Stonehouse the latter.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"hashed_password,omitempty" db:"password"`
	PublicKey      string    `json:"public_key,omitempty" db:"public_key"`
	Privileges     Privilege `json:"privileges" db:"privileges"`
}

func (u *User) TypeTag() string { return "UMPS.User" }

func (u *User) ToCBOR() ([]byte, error) { return marshalCBOR(u) }

func (u *User) FromCBOR(data []byte) error {
	var decoded User
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	if decoded.Name == "" {
		return fmt.Errorf("schema: user missing name")
	}
	*u = decoded
	return nil
}

// StatusCode is the ZAP reply status taxonomy from SPEC_FULL §4.3: 200
// (OK), 400 (client error - bad credentials, unsupported mechanism,
// blacklisted IP), 500 (server error - credential store unavailable,
// internal error).
type StatusCode string

const (
	StatusOK            StatusCode = "200"
	StatusClientError   StatusCode = "400"
	StatusServerError   StatusCode = "500"
)

// ZapReply is the response the authentication handshake service sends
// for every ZAP request (SPEC_FULL §3, §4.3, §6.3).
type ZapReply struct {
	Version    string     `json:"version"`
	SequenceID string     `json:"sequence_id"`
	StatusCode StatusCode `json:"status_code"`
	StatusText string     `json:"status_text"`
	UserID     string     `json:"user_id,omitempty"`
	Metadata   []byte     `json:"metadata,omitempty"`
}

func (z *ZapReply) TypeTag() string { return "UMPS.ZapReply" }

func (z *ZapReply) ToCBOR() ([]byte, error) { return marshalCBOR(z) }

func (z *ZapReply) FromCBOR(data []byte) error {
	var decoded ZapReply
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	switch decoded.StatusCode {
	case StatusOK, StatusClientError, StatusServerError:
	default:
		return fmt.Errorf("schema: zap reply has invalid status_code %q", decoded.StatusCode)
	}
	*z = decoded
	return nil
}

// SecurityLevel is the strictly increasing authentication posture applied
// to a socket (SPEC_FULL §4.3).
type SecurityLevel int

const (
	Grasslands SecurityLevel = iota
	Strawhouse
	Woodhouse
	Stonehouse
)

func (l SecurityLevel) String() string {
	switch l {
	case Strawhouse:
		return "Strawhouse"
	case Woodhouse:
		return "Woodhouse"
	case Stonehouse:
		return "Stonehouse"
	default:
		return "Grasslands"
	}
}

// ConnectionType distinguishes a request/reply service from a pub/sub
// broadcast in the connection information registry.
type ConnectionType int

const (
	ConnectionService ConnectionType = iota
	ConnectionBroadcast
)

// SocketDetails is a tagged variant over the six pattern-socket roles; it
// carries address(es), security level, and bind/connect side, per
// SPEC_FULL §3's ConnectionDetails.socket_details.
type SocketDetails struct {
	Role          string        `json:"role"` // Publisher, Subscriber, XPublisher, XSubscriber, Request, Router, Reply, Dealer
	Address       string        `json:"address"`
	SecurityLevel SecurityLevel `json:"security_level"`
	IsBind        bool          `json:"is_bind"`
}

// ConnectionDetails describes one named broadcast or service a module
// exposes, as registered with the connection information service.
type ConnectionDetails struct {
	Name           string         `json:"name"`
	ConnectionType ConnectionType `json:"connection_type"`
	SocketDetails  SocketDetails  `json:"socket_details"`
}

func (c *ConnectionDetails) TypeTag() string { return "UMPS.ConnectionDetails" }

func (c *ConnectionDetails) ToCBOR() ([]byte, error) { return marshalCBOR(c) }

func (c *ConnectionDetails) FromCBOR(data []byte) error {
	var decoded ConnectionDetails
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	if decoded.Name == "" {
		return fmt.Errorf("schema: connection details missing name")
	}
	*c = decoded
	return nil
}
