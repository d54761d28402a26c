// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uofuseismo/umps/pkg/schema"
)

const sampleINI = `
[General]
moduleName = uPacketCache
verbose = 3
logFileDirectory = /var/log/umps

[uOperator]
address = nats://localhost:4222
security_level = Woodhouse
username = operator
password = hunter2

[Heartbeat]
broadcast = umps.broadcast.heartbeat
interval = 30

[PacketCache]
maxPackets = 1000

[PacketCache.Subscriber]
address = umps.broadcast.data

[PacketCache.Replier]
address = umps.service.packetcache
security_level = Stonehouse
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "umps.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadPopulatesEverySection(t *testing.T) {
	path := writeTempConfig(t, sampleINI)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "uPacketCache", cfg.General.ModuleName)
	assert.Equal(t, 3, cfg.General.Verbose)
	assert.Equal(t, "/var/log/umps", cfg.General.LogFileDirectory)

	assert.Equal(t, "nats://localhost:4222", cfg.UOperator.Address)
	assert.Equal(t, "Woodhouse", cfg.UOperator.SecurityLevel)
	assert.Equal(t, schema.Woodhouse, cfg.UOperator.SecurityLevelValue())

	assert.Equal(t, "umps.broadcast.heartbeat", cfg.Heartbeat.Broadcast)
	assert.Equal(t, 30, cfg.Heartbeat.Interval)

	assert.Equal(t, 1000, cfg.PacketCache.MaxPackets)
	assert.Equal(t, "umps.broadcast.data", cfg.PacketCache.Subscriber.Address)
	assert.Equal(t, "umps.service.packetcache", cfg.PacketCache.Replier.Address)
	assert.Equal(t, schema.Stonehouse, cfg.PacketCache.Replier.SecurityLevelValue())
}

func TestLoadLeavesAbsentSectionsZeroValued(t *testing.T) {
	path := writeTempConfig(t, "[General]\nmoduleName = uPublisher\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "uPublisher", cfg.General.ModuleName)
	assert.Equal(t, 0, cfg.Heartbeat.Interval)
	assert.Equal(t, "", cfg.Heartbeat.Broadcast)
	assert.Equal(t, 0, cfg.PacketCache.MaxPackets)
}

func TestSecurityLevelValueDefaultsToGrasslands(t *testing.T) {
	var o UOperator
	assert.Equal(t, schema.Grasslands, o.SecurityLevelValue())
	o.SecurityLevel = "bogus"
	assert.Equal(t, schema.Grasslands, o.SecurityLevelValue())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	assert.Error(t, err)
}
