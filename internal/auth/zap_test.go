// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uofuseismo/umps/pkg/schema"
)

type fakeAuthenticator struct {
	blacklisted map[string]bool
	whitelisted map[string]bool
	user        *schema.User
	validPass   string
}

func (f *fakeAuthenticator) IsBlacklisted(ip string) bool { return f.blacklisted[ip] }
func (f *fakeAuthenticator) IsWhitelisted(ip string) bool {
	if len(f.whitelisted) == 0 {
		return true
	}
	return f.whitelisted[ip]
}
func (f *fakeAuthenticator) ValidatePassword(_ context.Context, username, password string) (schema.StatusCode, string, *schema.User) {
	if password == f.validPass {
		return schema.StatusOK, "OK", f.user
	}
	return schema.StatusClientError, "bad credentials", nil
}
func (f *fakeAuthenticator) ValidatePublicKey(_ context.Context, publicKey string) (schema.StatusCode, string, *schema.User) {
	if publicKey == "good-key" {
		return schema.StatusOK, "OK", f.user
	}
	return schema.StatusClientError, "unknown public key", nil
}
func (f *fakeAuthenticator) MinPrivileges() schema.Privilege { return schema.PrivilegeReadOnly }

func authenticate(t *testing.T, svc *HandshakeService, req ZapRequest) schema.ZapReply {
	t.Helper()
	svc.Start()
	defer svc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := svc.Authenticate(ctx, req)
	require.NoError(t, err)
	return reply
}

func TestGrasslandsAlwaysOK(t *testing.T) {
	svc := NewHandshakeService(schema.Grasslands, nil, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1"})
	assert.Equal(t, schema.StatusOK, reply.StatusCode)
}

func TestStrawhouseRejectsBlacklistedIP(t *testing.T) {
	fake := &fakeAuthenticator{blacklisted: map[string]bool{"10.0.0.1": true}}
	svc := NewHandshakeService(schema.Strawhouse, fake, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1"})
	assert.Equal(t, schema.StatusClientError, reply.StatusCode)
}

func TestStrawhouseAcceptsNonBlacklistedIP(t *testing.T) {
	fake := &fakeAuthenticator{}
	svc := NewHandshakeService(schema.Strawhouse, fake, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1"})
	assert.Equal(t, schema.StatusOK, reply.StatusCode)
}

func TestWoodhouseRejectsWrongMechanism(t *testing.T) {
	fake := &fakeAuthenticator{validPass: "secret"}
	svc := NewHandshakeService(schema.Woodhouse, fake, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1", Mechanism: "NULL"})
	assert.Equal(t, schema.StatusClientError, reply.StatusCode)
}

func TestWoodhouseAcceptsValidCredentials(t *testing.T) {
	fake := &fakeAuthenticator{validPass: "secret", user: &schema.User{ID: 7, Name: "jdoe"}}
	svc := NewHandshakeService(schema.Woodhouse, fake, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1", Mechanism: "PLAIN", Username: "jdoe", Password: "secret"})
	assert.Equal(t, schema.StatusOK, reply.StatusCode)
	assert.Equal(t, "7", reply.UserID)
}

func TestWoodhouseIssuesVerifiableSessionToken(t *testing.T) {
	key := []byte("test-signing-key")
	fake := &fakeAuthenticator{validPass: "secret", user: &schema.User{ID: 42, Name: "jdoe"}}
	svc := NewHandshakeService(schema.Woodhouse, fake, key)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1", Mechanism: "PLAIN", Username: "jdoe", Password: "secret"})
	require.NotEmpty(t, reply.Metadata)

	sub, err := svc.VerifySessionToken(reply.Metadata)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestStonehouseAcceptsValidPublicKey(t *testing.T) {
	fake := &fakeAuthenticator{user: &schema.User{ID: 1}}
	svc := NewHandshakeService(schema.Stonehouse, fake, nil)
	reply := authenticate(t, svc, ZapRequest{IP: "10.0.0.1", Mechanism: "CURVE", PublicKey: "good-key"})
	assert.Equal(t, schema.StatusOK, reply.StatusCode)
}

func TestPauseRejectsRequestsUntilResumed(t *testing.T) {
	svc := NewHandshakeService(schema.Grasslands, nil, nil)
	svc.Start()
	defer svc.Stop()
	svc.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := svc.Authenticate(ctx, ZapRequest{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusServerError, reply.StatusCode)

	svc.Resume()
	reply, err = svc.Authenticate(ctx, ZapRequest{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusOK, reply.StatusCode)
}
