// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the INI-style configuration files SPEC_FULL §6.4
// describes: one [Section] per component, mapped onto plain structs with
// gopkg.in/ini.v1, following the pkg/nats.Config precedent (an ini-tagged
// struct plus an Init(section) that calls section.MapTo).
package config

import (
	"fmt"

	"github.com/uofuseismo/umps/internal/auth"
	"github.com/uofuseismo/umps/internal/sockets"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
	"gopkg.in/ini.v1"
)

// General holds the [General] section: module identity and logging.
type General struct {
	ModuleName      string `ini:"moduleName"`
	Verbose         int    `ini:"verbose"` // 0-4 -> Error/Warn/Notice/Info/Debug
	LogFileDirectory string `ini:"logFileDirectory"`
}

// UOperator holds the [uOperator] section: the address and ZAP
// credentials for talking to the operator's messaging backbone.
type UOperator struct {
	Address         string `ini:"address"`
	SecurityLevel   string `ini:"security_level"` // Grasslands|Strawhouse|Woodhouse|Stonehouse
	ServerPublicKey string `ini:"server_public_key"`
	ClientPublicKey string `ini:"client_public_key"`
	ClientPrivateKey string `ini:"client_private_key"`
	Username        string `ini:"username"`
	Password        string `ini:"password"`
}

// Heartbeat holds the [Heartbeat] section.
type Heartbeat struct {
	Broadcast string `ini:"broadcast"`
	Interval  int    `ini:"interval"` // seconds
}

// PacketCache holds the [PacketCache] section plus its Subscriber and
// Replier subsections, each sharing UOperator's socket keys.
type PacketCache struct {
	MaxPackets int       `ini:"maxPackets"`
	Subscriber UOperator `ini:"-"`
	Replier    UOperator `ini:"-"`
}

// Config is the fully parsed configuration file: every section SPEC_FULL
// §6.4 names, populated from whichever sections are present. A section
// absent from the file is left at its zero value.
type Config struct {
	General     General
	UOperator   UOperator
	Heartbeat   Heartbeat
	PacketCache PacketCache
}

// Load parses path and returns the populated Config. Sections not
// present in the file are left zero-valued rather than erroring, since a
// single-purpose module (e.g. a plain publisher) has no use for
// [PacketCache] or [Heartbeat].
func Load(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := mapSection(file, "General", &cfg.General); err != nil {
		return Config{}, err
	}
	if err := mapSection(file, "uOperator", &cfg.UOperator); err != nil {
		return Config{}, err
	}
	if err := mapSection(file, "Heartbeat", &cfg.Heartbeat); err != nil {
		return Config{}, err
	}
	if err := mapSection(file, "PacketCache", &cfg.PacketCache); err != nil {
		return Config{}, err
	}
	if err := mapSection(file, "PacketCache.Subscriber", &cfg.PacketCache.Subscriber); err != nil {
		return Config{}, err
	}
	if err := mapSection(file, "PacketCache.Replier", &cfg.PacketCache.Replier); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mapSection(file *ini.File, name string, v interface{}) error {
	if !file.HasSection(name) {
		return nil
	}
	section, err := file.GetSection(name)
	if err != nil {
		return fmt.Errorf("config: section %q: %w", name, err)
	}
	if err := section.MapTo(v); err != nil {
		return fmt.Errorf("config: section %q: %w", name, err)
	}
	return nil
}

// ApplyLogging sets the package-wide log level from General.Verbose, per
// SPEC_FULL §6.4's verbose -> level mapping.
func (g General) ApplyLogging() {
	levels := []string{"err", "warn", "notice", "info", "debug"}
	idx := g.Verbose
	if idx < 0 {
		idx = 0
	}
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	log.SetLogLevel(levels[idx])
}

// SecurityLevelValue parses UOperator.SecurityLevel into its schema.SecurityLevel
// value, defaulting to Grasslands on an empty or unrecognized string.
func (o UOperator) SecurityLevelValue() schema.SecurityLevel {
	switch o.SecurityLevel {
	case "Strawhouse":
		return schema.Strawhouse
	case "Woodhouse":
		return schema.Woodhouse
	case "Stonehouse":
		return schema.Stonehouse
	default:
		return schema.Grasslands
	}
}

// ZapOptions builds the auth.ZapOptions isServer expects from o's keys
// and credentials.
func (o UOperator) ZapOptions(isServer bool) auth.ZapOptions {
	return auth.ZapOptions{
		SecurityLevel:   o.SecurityLevelValue(),
		IsServer:        isServer,
		ServerPublicKey: o.ServerPublicKey,
		ClientPublicKey: o.ClientPublicKey,
		ClientSecretKey: o.ClientPrivateKey,
		Username:        o.Username,
		Password:        o.Password,
	}
}

// SocketOptions builds the sockets.Options a Publisher/Subscriber/Router
// initializes from, given the address to bind/connect and whether this
// side is the ZAP server.
func (o UOperator) SocketOptions(address string, isServer bool) sockets.Options {
	return sockets.Options{
		Address:    address,
		ZapOptions: o.ZapOptions(isServer),
	}
}
