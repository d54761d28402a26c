// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uofuseismo/umps/pkg/schema"
)

var testConn *DBConnection

func init() {
	dir, err := os.MkdirTemp("", "credstore-test")
	if err != nil {
		panic(err)
	}
	testConn, err = Connect(filepath.Join(dir, "test.db"))
	if err != nil {
		panic(err)
	}
}

func TestAddUserAndGetUserByName(t *testing.T) {
	repo := NewRepository(testConn)
	ctx := context.Background()

	id, err := repo.AddUser(ctx, "jdoe-by-name", "jdoe@example.com", "secret", "", schema.PrivilegeReadWrite)
	require.NoError(t, err)
	assert.Positive(t, id)

	user, err := repo.GetUserByName(ctx, "jdoe-by-name")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "jdoe-by-name", user.Name)
	assert.Equal(t, "jdoe@example.com", user.Email)
	assert.Equal(t, schema.PrivilegeReadWrite, user.Privileges)
	assert.NotEmpty(t, user.HashedPassword)
}

func TestGetUserByNameUnknownReturnsNil(t *testing.T) {
	repo := NewRepository(testConn)
	user, err := repo.GetUserByName(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetUserByPublicKey(t *testing.T) {
	repo := NewRepository(testConn)
	ctx := context.Background()

	_, err := repo.AddUser(ctx, "stonehouse-user", "", "", "deadbeefcafebabe", schema.PrivilegeAdministrator)
	require.NoError(t, err)

	user, err := repo.GetUserByPublicKey(ctx, "deadbeefcafebabe")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "stonehouse-user", user.Name)
	assert.Equal(t, schema.PrivilegeAdministrator, user.Privileges)
}

func TestAuthenticatorValidatePasswordRoundTrip(t *testing.T) {
	repo := NewRepository(testConn)
	ctx := context.Background()

	_, err := repo.AddUser(ctx, "woodhouse-user", "woodhouse@example.com", "correct-horse", "", schema.PrivilegeReadOnly)
	require.NoError(t, err)

	authn, err := NewAuthenticator(ctx, repo, schema.PrivilegeReadOnly)
	require.NoError(t, err)

	status, _, user := authn.ValidatePassword(ctx, "woodhouse-user", "correct-horse")
	assert.Equal(t, schema.StatusOK, status)
	require.NotNil(t, user)
	assert.Equal(t, "woodhouse-user", user.Name)

	status, _, user = authn.ValidatePassword(ctx, "woodhouse-user", "wrong-password")
	assert.Equal(t, schema.StatusClientError, status)
	assert.Nil(t, user)
}

func TestAuthenticatorValidatePasswordRejectsInsufficientPrivileges(t *testing.T) {
	repo := NewRepository(testConn)
	ctx := context.Background()

	_, err := repo.AddUser(ctx, "readonly-user", "", "only-reads", "", schema.PrivilegeReadOnly)
	require.NoError(t, err)

	authn, err := NewAuthenticator(ctx, repo, schema.PrivilegeAdministrator)
	require.NoError(t, err)

	status, _, user := authn.ValidatePassword(ctx, "readonly-user", "only-reads")
	assert.Equal(t, schema.StatusClientError, status)
	assert.Nil(t, user)
}

func TestAuthenticatorBlacklistReload(t *testing.T) {
	repo := NewRepository(testConn)
	ctx := context.Background()

	require.NoError(t, repo.AddBlacklistEntry(ctx, "10.1.2.3"))

	authn, err := NewAuthenticator(ctx, repo, schema.PrivilegeReadOnly)
	require.NoError(t, err)
	assert.True(t, authn.IsBlacklisted("10.1.2.3"))
	assert.False(t, authn.IsBlacklisted("10.1.2.4"))
}
