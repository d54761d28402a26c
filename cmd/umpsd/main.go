// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command umpsd assembles a running UMPS module out of the internal/
// pieces: a heartbeat publisher, a packet cache service, and a connection
// information service, all sharing one ioctx.Context and stopped
// together by internal/modules.ProcessManager. Grounded on
// cc-backend/cmd/cc-backend's flag-parsing-then-ProgramConfig-then-serve
// shape.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/uofuseismo/umps/internal/config"
	"github.com/uofuseismo/umps/internal/connectioninfo"
	"github.com/uofuseismo/umps/internal/heartbeat"
	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/internal/modules"
	"github.com/uofuseismo/umps/internal/packetcache"
	"github.com/uofuseismo/umps/internal/sockets"
	natsclient "github.com/uofuseismo/umps/pkg/nats"
	"github.com/uofuseismo/umps/pkg/runtimeEnv"

	"github.com/uofuseismo/umps/pkg/log"
)

func main() {
	var flagConfigFile string
	var flagUser, flagGroup string
	flag.StringVar(&flagConfigFile, "config", "./umpsd.ini", "Path to the module's INI configuration file")
	flag.StringVar(&flagUser, "user", "", "Drop privileges to this user after startup")
	flag.StringVar(&flagGroup, "group", "", "Drop privileges to this group after startup")
	flag.Parse()

	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		log.Fatalf("umpsd: %v", err)
	}
	cfg.General.ApplyLogging()

	if flagUser != "" || flagGroup != "" {
		if err := runtimeEnv.DropPrivileges(flagUser, flagGroup); err != nil {
			log.Fatalf("umpsd: dropping privileges: %v", err)
		}
	}

	client, err := natsclient.NewClient(&natsclient.Config{
		Address:  cfg.UOperator.Address,
		Username: cfg.UOperator.Username,
		Password: cfg.UOperator.Password,
	})
	if err != nil {
		log.Fatalf("umpsd: connecting to %s: %v", cfg.UOperator.Address, err)
	}
	ioc := ioctx.New(client, 1)
	defer ioc.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	manager := modules.New()

	if cfg.Heartbeat.Broadcast != "" {
		publisher := sockets.NewPublisher(ioc)
		interval := cfg.Heartbeat.Interval
		if interval <= 0 {
			interval = 30
		}
		heartbeatProcess := heartbeat.New(publisher, cfg.General.ModuleName, hostname, time.Duration(interval)*time.Second)
		manager.Add("heartbeat", modules.Func(
			func() error {
				if err := publisher.Initialize(cfg.UOperator.SocketOptions(cfg.Heartbeat.Broadcast, false)); err != nil {
					return err
				}
				heartbeatProcess.Start()
				return nil
			},
			func() {
				heartbeatProcess.Stop()
				publisher.Disconnect()
			},
		))
	}

	if cfg.PacketCache.MaxPackets > 0 {
		packetCacheService := packetcache.NewService(ioc, cfg.PacketCache.MaxPackets)
		manager.Add("packetcache", modules.Func(
			func() error {
				subOpts := cfg.PacketCache.Subscriber.SocketOptions(cfg.PacketCache.Subscriber.Address, false)
				routerOpts := cfg.PacketCache.Replier.SocketOptions(cfg.PacketCache.Replier.Address, true)
				return packetCacheService.Start(subOpts, routerOpts)
			},
			packetCacheService.Stop,
		))
	}

	if cfg.General.ModuleName != "" {
		connectionInfoService := connectioninfo.NewService(ioc)
		manager.Add("connectioninfo", modules.Func(
			func() error {
				return connectionInfoService.Start(cfg.UOperator.SocketOptions(cfg.UOperator.Address, true))
			},
			connectionInfoService.Stop,
		))
	}

	if err := manager.Run(); err != nil {
		log.Fatalf("umpsd: %v", err)
	}
}
