// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package nats

import "gopkg.in/ini.v1"

// Config holds the configuration for connecting to the NATS server that
// backs every pattern socket in this module.
type Config struct {
	Address       string `ini:"address"`         // e.g. "nats://localhost:4222"
	Username      string `ini:"username"`         // optional
	Password      string `ini:"password"`         // optional
	CredsFilePath string `ini:"credsFilePath"`    // optional, path to a NATS .creds file
}

// Keys holds the global NATS configuration loaded via Init.
var Keys Config

// Init populates the global Keys configuration from an INI section, e.g.
// the [uOperator] section of the module's configuration file.
func Init(section *ini.Section) error {
	if section == nil {
		return nil
	}
	return section.MapTo(&Keys)
}
