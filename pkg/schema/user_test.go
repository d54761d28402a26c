// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapReplyFromCBORRejectsInvalidStatusCode(t *testing.T) {
	reply := ZapReply{Version: "1.0", StatusCode: "999"}
	data, err := reply.ToCBOR()
	require.NoError(t, err)

	var decoded ZapReply
	err = decoded.FromCBOR(data)
	assert.Error(t, err)
}

func TestZapReplyFromCBORAcceptsKnownStatusCodes(t *testing.T) {
	for _, code := range []StatusCode{StatusOK, StatusClientError, StatusServerError} {
		reply := ZapReply{Version: "1.0", StatusCode: code, StatusText: "ok"}
		data, err := reply.ToCBOR()
		require.NoError(t, err)

		var decoded ZapReply
		require.NoError(t, decoded.FromCBOR(data))
		assert.Equal(t, code, decoded.StatusCode)
	}
}

func TestUserFromCBORRejectsMissingName(t *testing.T) {
	u := User{ID: 1, Email: "a@b.com"}
	data, err := u.ToCBOR()
	require.NoError(t, err)

	var decoded User
	assert.Error(t, decoded.FromCBOR(data))
}

func TestPrivilegeString(t *testing.T) {
	assert.Equal(t, "ReadOnly", PrivilegeReadOnly.String())
	assert.Equal(t, "ReadWrite", PrivilegeReadWrite.String())
	assert.Equal(t, "Administrator", PrivilegeAdministrator.String())
}

func TestSecurityLevelString(t *testing.T) {
	assert.Equal(t, "Grasslands", Grasslands.String())
	assert.Equal(t, "Strawhouse", Strawhouse.String())
	assert.Equal(t, "Woodhouse", Woodhouse.String())
	assert.Equal(t, "Stonehouse", Stonehouse.String())
}

func TestConnectionDetailsFromCBORRejectsMissingName(t *testing.T) {
	c := ConnectionDetails{SocketDetails: SocketDetails{Role: "Publisher"}}
	data, err := c.ToCBOR()
	require.NoError(t, err)

	var decoded ConnectionDetails
	assert.Error(t, decoded.FromCBOR(data))
}
