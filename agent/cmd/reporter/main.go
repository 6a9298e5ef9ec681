package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swarmreport/swarmreport/agent/internal/config"
	"github.com/swarmreport/swarmreport/agent/internal/identity"
	"github.com/swarmreport/swarmreport/agent/internal/probe"
	"github.com/swarmreport/swarmreport/agent/internal/shipper"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty runs with defaults")
	server := flag.String("server", "", "sentinel gRPC address (overrides config and "+config.EnvSentinelAddr+")")
	flag.Parse()

	if *server != "" {
		os.Setenv(config.EnvSentinelAddr, *server) //nolint:errcheck
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	rc := cfg.Reporter

	level := new(slog.LevelVar)
	level.Set(rc.Log.SlogLevel())
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	nodeID, err := identity.Load(rc.StateFile)
	if err != nil {
		osName, osVersion := probe.Platform(ctx)
		nodeID = identity.HostDerived(probe.Hostname(ctx), osName, osVersion)
		slog.Warn("node id not persisted, using host-derived id",
			"state_file", rc.StateFile, "err", err, "node_id", nodeID)
	}

	slog.Info("swarmreport-reporter starting",
		"config", *configPath,
		"server_endpoint", rc.ServerEndpoint,
		"report_interval", rc.ReportInterval,
		"node_id", nodeID,
	)

	intervals := make(chan time.Duration, 1)
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				level.Set(updated.Reporter.Log.SlogLevel())
				select {
				case <-intervals:
				default:
				}
				intervals <- updated.Reporter.ReportInterval
				slog.Info("config hot-reloaded", "report_interval", updated.Reporter.ReportInterval)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	ship := shipper.New(rc)
	go ship.Run(ctx)

	prober := probe.New(nodeID)
	ticker := time.NewTicker(rc.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("swarmreport-reporter shutting down",
				"sent", ship.Sent(), "dropped", ship.Dropped())
			return
		case d := <-intervals:
			ticker.Reset(d)
		case <-ticker.C:
			r := prober.Collect(ctx)
			ship.Ship(r)
			slog.Debug("queued report", "hostname", r.Hostname, "cpu", r.CPUUsage, "services", len(r.Services))
		}
	}
}
