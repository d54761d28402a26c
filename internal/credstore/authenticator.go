// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package credstore

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/uofuseismo/umps/internal/auth"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Authenticator is the SQLite-backed auth.Authenticator the handshake
// service consults at Woodhouse (username/password) and Stonehouse
// (public key) security levels. Blacklist/whitelist checks are cached
// in-memory (refreshed via Reload) since they are read on every
// connection attempt and the spec treats the store as read-mostly.
type Authenticator struct {
	repo *Repository
	*auth.ListAuthenticator
	minPrivileges schema.Privilege
}

// NewAuthenticator wraps repo, loading the current blacklist/whitelist.
func NewAuthenticator(ctx context.Context, repo *Repository, minPrivileges schema.Privilege) (*Authenticator, error) {
	a := &Authenticator{repo: repo, ListAuthenticator: auth.NewListAuthenticator(), minPrivileges: minPrivileges}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload refreshes the in-memory blacklist/whitelist from the database.
func (a *Authenticator) Reload(ctx context.Context) error {
	blacklist, err := a.repo.loadIPSet(ctx, "blacklist")
	if err != nil {
		return err
	}
	whitelist, err := a.repo.loadIPSet(ctx, "whitelist")
	if err != nil {
		return err
	}
	a.ListAuthenticator = auth.NewListAuthenticator()
	for ip := range blacklist {
		_ = a.ListAuthenticator.Blacklist(ip)
	}
	for ip := range whitelist {
		_ = a.ListAuthenticator.Whitelist(ip)
	}
	return nil
}

func (a *Authenticator) MinPrivileges() schema.Privilege { return a.minPrivileges }

// ValidatePassword looks up username and verifies password against the
// stored "salt:digest" hex pair with VerifyPassword's constant-time
// comparison.
func (a *Authenticator) ValidatePassword(ctx context.Context, username, password string) (schema.StatusCode, string, *schema.User) {
	user, err := a.repo.GetUserByName(ctx, username)
	if err != nil {
		log.Errorf("credstore: looking up user %q: %v", username, err)
		return schema.StatusServerError, "credential store unavailable", nil
	}
	if user == nil || user.HashedPassword == "" {
		return schema.StatusClientError, "invalid credentials", nil
	}

	saltHex, digestHex, ok := strings.Cut(user.HashedPassword, ":")
	if !ok {
		return schema.StatusServerError, "stored credential malformed", nil
	}
	salt, err1 := hex.DecodeString(saltHex)
	digest, err2 := hex.DecodeString(digestHex)
	if err1 != nil || err2 != nil {
		return schema.StatusServerError, "stored credential malformed", nil
	}

	if !auth.VerifyPassword(password, salt, digest) {
		return schema.StatusClientError, "invalid credentials", nil
	}
	if user.Privileges < a.minPrivileges {
		return schema.StatusClientError, "insufficient privileges", nil
	}
	return schema.StatusOK, "OK", user
}

// ValidatePublicKey looks up a user by their registered Stonehouse public
// key.
func (a *Authenticator) ValidatePublicKey(ctx context.Context, publicKey string) (schema.StatusCode, string, *schema.User) {
	user, err := a.repo.GetUserByPublicKey(ctx, publicKey)
	if err != nil {
		log.Errorf("credstore: looking up public key: %v", err)
		return schema.StatusServerError, "credential store unavailable", nil
	}
	if user == nil {
		return schema.StatusClientError, "unrecognized public key", nil
	}
	if user.Privileges < a.minPrivileges {
		return schema.StatusClientError, "insufficient privileges", nil
	}
	return schema.StatusOK, "OK", user
}

var _ auth.Authenticator = (*Authenticator)(nil)
