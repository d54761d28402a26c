// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/uofuseismo/umps/pkg/schema"
)

// Authenticator is the decision-policy half of the authentication
// subsystem (SPEC_FULL §4.3): IP blacklist/whitelist checks and
// credential validation. Every method must be safe for concurrent use
// and return (status_code, status_text) rather than panic, mirroring
// cc-backend/internal/auth's Authenticator interface.
type Authenticator interface {
	IsBlacklisted(ip string) bool
	IsWhitelisted(ip string) bool
	ValidatePassword(ctx context.Context, username, password string) (schema.StatusCode, string, *schema.User)
	ValidatePublicKey(ctx context.Context, publicKey string) (schema.StatusCode, string, *schema.User)
	MinPrivileges() schema.Privilege
}

// argon2Params are the Argon2id parameters applied uniformly to every
// hashed password; chosen per OWASP's current baseline recommendation.
var argon2Params = struct {
	time, memory uint32
	threads      uint8
	keyLen       uint32
}{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32}

// HashPassword derives an Argon2id digest for password using salt. The
// credential store is responsible for generating and persisting salt
// alongside the digest.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Params.time, argon2Params.memory, argon2Params.threads, argon2Params.keyLen)
}

// VerifyPassword reports whether password matches digest for salt, using
// a constant-time comparison per SPEC_FULL §3.
func VerifyPassword(password string, salt, digest []byte) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(computed, digest) == 1
}

// ErrCredentialStoreUnavailable is returned by an Authenticator
// implementation backed by a database when the lookup itself fails (as
// opposed to the credentials being merely invalid). Such an implementation
// reports it with a 500 status, which the ZAP handshake relays unchanged.
var ErrCredentialStoreUnavailable = errors.New("auth: credential store unavailable")

// ListAuthenticator is a simple in-memory Authenticator suitable for
// Strawhouse (IP-only) deployments and as the base every richer
// implementation (internal/credstore) composes with, grounded on
// cc-backend/internal/auth's chained-authenticators pattern.
type ListAuthenticator struct {
	mu         sync.RWMutex
	blacklist  map[string]struct{}
	whitelist  map[string]struct{}
	minPrivilege schema.Privilege
}

// NewListAuthenticator returns a ListAuthenticator with empty
// blacklist/whitelist.
func NewListAuthenticator() *ListAuthenticator {
	return &ListAuthenticator{
		blacklist: make(map[string]struct{}),
		whitelist: make(map[string]struct{}),
	}
}

// Blacklist adds ip (or an IP wildcard pattern accepted by IsOkayIP) to
// the blacklist.
func (a *ListAuthenticator) Blacklist(ip string) error {
	if !IsOkayIP(ip) {
		return errors.New("auth: not a valid IP pattern")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blacklist[ip] = struct{}{}
	return nil
}

// Whitelist adds ip (or an IP wildcard pattern accepted by IsOkayIP) to
// the whitelist.
func (a *ListAuthenticator) Whitelist(ip string) error {
	if !IsOkayIP(ip) {
		return errors.New("auth: not a valid IP pattern")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.whitelist[ip] = struct{}{}
	return nil
}

func (a *ListAuthenticator) IsBlacklisted(ip string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return IPExists(ip, a.blacklist)
}

func (a *ListAuthenticator) IsWhitelisted(ip string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.whitelist) == 0 {
		return true // no whitelist configured means every non-blacklisted IP is allowed
	}
	return IPExists(ip, a.whitelist)
}

// ValidatePassword always fails on the base ListAuthenticator: it only
// implements the Strawhouse (IP-only) checks. internal/credstore composes
// it with a real username/password lookup for Woodhouse.
func (a *ListAuthenticator) ValidatePassword(context.Context, string, string) (schema.StatusCode, string, *schema.User) {
	return schema.StatusClientError, "username/password authentication not configured", nil
}

// ValidatePublicKey always fails on the base ListAuthenticator; see
// ValidatePassword.
func (a *ListAuthenticator) ValidatePublicKey(context.Context, string) (schema.StatusCode, string, *schema.User) {
	return schema.StatusClientError, "public-key authentication not configured", nil
}

func (a *ListAuthenticator) MinPrivileges() schema.Privilege { return schema.PrivilegeReadOnly }
