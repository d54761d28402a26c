// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package credstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/uofuseismo/umps/internal/auth"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Repository is a sqlx/squirrel-backed CRUD layer over the user,
// blacklist and whitelist tables, grounded on cc-backend's
// internal/repository/user.go query-building style (sq.Select(...)
// .RunWith(r.DB)).
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an already-open *DBConnection.
func NewRepository(conn *DBConnection) *Repository {
	return &Repository{db: conn.DB}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// userRow mirrors the `user` table layout from SPEC_FULL §6.5.
type userRow struct {
	ID         int64          `db:"id"`
	Name       string         `db:"name"`
	Email      sql.NullString `db:"email"`
	Password   sql.NullString `db:"password"`
	PublicKey  sql.NullString `db:"public_key"`
	Privileges int            `db:"privileges"`
}

func (r *Repository) GetUserByName(ctx context.Context, name string) (*schema.User, error) {
	var row userRow
	query, args, err := builder().Select("id", "name", "email", "password", "public_key", "privileges").
		From("user").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrCredentialStoreUnavailable, err)
	}
	return rowToUser(row), nil
}

func (r *Repository) GetUserByPublicKey(ctx context.Context, publicKey string) (*schema.User, error) {
	var row userRow
	query, args, err := builder().Select("id", "name", "email", "password", "public_key", "privileges").
		From("user").Where(sq.Eq{"public_key": publicKey}).ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrCredentialStoreUnavailable, err)
	}
	return rowToUser(row), nil
}

func rowToUser(row userRow) *schema.User {
	return &schema.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email.String,
		HashedPassword: row.Password.String,
		PublicKey:      row.PublicKey.String,
		Privileges:     schema.Privilege(row.Privileges),
	}
}

// AddUser inserts a new user, hashing password with a fresh random salt
// (stored alongside the digest, hex-encoded "salt:digest" in the
// password column) or storing publicKey directly for Stonehouse.
func (r *Repository) AddUser(ctx context.Context, name, email, password, publicKey string, privileges schema.Privilege) (int64, error) {
	var hashed sql.NullString
	if password != "" {
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return 0, fmt.Errorf("credstore: generating salt: %w", err)
		}
		digest := auth.HashPassword(password, salt)
		hashed = sql.NullString{String: hex.EncodeToString(salt) + ":" + hex.EncodeToString(digest), Valid: true}
	}

	query, args, err := builder().Insert("user").
		Columns("name", "email", "password", "public_key", "privileges").
		Values(name, email, hashed, nullIfEmpty(publicKey), int(privileges)).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", auth.ErrCredentialStoreUnavailable, err)
	}
	return res.LastInsertId()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *Repository) AddBlacklistEntry(ctx context.Context, ip string) error {
	if !auth.IsOkayIP(ip) {
		return fmt.Errorf("credstore: %q is not a valid IP pattern", ip)
	}
	query, args, err := builder().Insert("blacklist").Columns("ip").Values(ip).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) AddWhitelistEntry(ctx context.Context, ip string) error {
	if !auth.IsOkayIP(ip) {
		return fmt.Errorf("credstore: %q is not a valid IP pattern", ip)
	}
	query, args, err := builder().Insert("whitelist").Columns("ip").Values(ip).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) loadIPSet(ctx context.Context, table string) (map[string]struct{}, error) {
	var ips []string
	query, args, err := builder().Select("ip").From(table).ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &ips, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrCredentialStoreUnavailable, err)
	}
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	return set, nil
}
