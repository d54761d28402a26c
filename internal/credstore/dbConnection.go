// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package credstore is the concrete SQLite-backed implementation of the
// Authenticator persistence contract (SPEC_FULL §6.5): it treats the
// credential store the way spec.md §1 says the core must — as an
// external blocking-lookup collaborator — while still shipping one real
// implementation, grounded on cc-backend/internal/repository's
// dbConnection.go / user.go and built with jmoiron/sqlx,
// mattn/go-sqlite3, qustavo/sqlhooks and Masterminds/squirrel.
package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"

	"github.com/uofuseismo/umps/pkg/log"
)

//go:embed migrations/*
var migrationFiles embed.FS

var (
	dbConnOnce     sync.Once
	dbConnInstance *DBConnection
	registerOnce   sync.Once
)

// DBConnection wraps the single sqlite3 handle the credential store
// reads and writes through.
type DBConnection struct {
	DB *sqlx.DB
}

// Connect opens (once) the SQLite database at path, registering a
// logging driver wrapper via sqlhooks the first time it is called.
// Per cc-backend's comment on the same pattern: sqlite does not
// multiplex connections usefully, so the pool is capped at one.
func Connect(path string) (*DBConnection, error) {
	var err error
	dbConnOnce.Do(func() {
		registerOnce.Do(func() {
			sql.Register("sqlite3WithHooks", sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, &queryLogHook{}))
		})

		var dbHandle *sqlx.DB
		dbHandle, err = sqlx.Open("sqlite3WithHooks", fmt.Sprintf("%s?_foreign_keys=on", path))
		if err != nil {
			return
		}
		dbHandle.SetMaxOpenConns(1)

		if migErr := migrateSchema(dbHandle.DB); migErr != nil {
			err = fmt.Errorf("credstore: applying schema: %w", migErr)
			return
		}

		dbConnInstance = &DBConnection{DB: dbHandle}
	})
	if err != nil {
		return nil, err
	}
	return dbConnInstance, nil
}

// GetConnection returns the previously-established connection.
func GetConnection() (*DBConnection, error) {
	if dbConnInstance == nil {
		return nil, fmt.Errorf("credstore: not connected")
	}
	return dbConnInstance, nil
}

// queryLogHook logs slow queries, grounded on cc-backend's sqlhooks.Hooks
// implementation (internal/repository/hooks.go).
type queryLogHook struct{}

type hookTimeKey struct{}

func (h *queryLogHook) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	return context.WithValue(ctx, hookTimeKey{}, time.Now()), nil
}

func (h *queryLogHook) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	if started, ok := ctx.Value(hookTimeKey{}).(time.Time); ok {
		if elapsed := time.Since(started); elapsed > 100*time.Millisecond {
			log.Warnf("credstore: slow query (%s): %s", elapsed, query)
		}
	}
	return ctx, nil
}

// migrateSchema brings db up to the latest embedded sqlite3 migration
// (SPEC_FULL §6.5), grounded on cc-backend/internal/repository's
// migration.go: golang-migrate driven from an iofs source over the
// embedded migrations/sqlite3 directory.
func migrateSchema(db *sql.DB) error {
	driver, err := migratesqlite3.WithInstance(db, &migratesqlite3.Config{})
	if err != nil {
		return fmt.Errorf("sqlite3 migration driver: %w", err)
	}
	source, err := iofs.New(migrationFiles, "migrations/sqlite3")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
