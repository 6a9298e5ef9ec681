package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/swarmreport/swarmreport/pkg/wire"
	"github.com/swarmreport/swarmreport/server/internal/api"
	"github.com/swarmreport/swarmreport/server/internal/config"
	"github.com/swarmreport/swarmreport/server/internal/ingress"
	"github.com/swarmreport/swarmreport/server/internal/metrics"
	"github.com/swarmreport/swarmreport/server/internal/receiver"
	"github.com/swarmreport/swarmreport/server/internal/store"
	"github.com/swarmreport/swarmreport/server/internal/tui"
	"github.com/swarmreport/swarmreport/server/internal/view"
	"github.com/swarmreport/swarmreport/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty runs with defaults")
	noTUI := flag.Bool("no-tui", false, "disable the terminal display and log to stdout")
	logFile := flag.String("log-file", "", "write logs to this file (overrides log.file)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sc := cfg.Sentinel
	if *noTUI {
		sc.TUI.Enabled = false
	}
	if *logFile != "" {
		sc.Log.File = *logFile
	}

	closeLog, err := setupLogging(sc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	slog.Info("swarmreport-sentinel starting",
		"config", *configPath,
		"grpc_port", sc.Server.GRPCPort,
		"http_port", sc.Server.HTTPPort,
		"identity", sc.Aggregator.Identity,
		"silence_threshold", sc.Aggregator.SilenceThreshold,
		"tui", sc.TUI.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel, *configPath, sc); err != nil {
		slog.Error("sentinel stopped", "err", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogging installs the default slog JSON handler. With the TUI on, logs
// go to the configured file or are discarded so the display stays intact.
func setupLogging(sc config.SentinelConfig) (func(), error) {
	var out io.Writer = os.Stdout
	closeFn := func() {}

	switch {
	case sc.Log.File != "":
		f, err := os.OpenFile(sc.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, func() { f.Close() }
	case sc.TUI.Enabled:
		out = io.Discard
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: sc.Log.SlogLevel()}))
	slog.SetDefault(logger)
	return closeFn, nil
}

func run(ctx context.Context, cancel context.CancelFunc, configPath string, sc config.SentinelConfig) error {
	mode := sc.Aggregator.IdentityMode()

	// Ingress queue -> aggregator -> store; the aggregator is the only writer.
	queue := ingress.New(sc.Ingress.Capacity)
	st := store.New()
	v := view.New(st)
	m := metrics.New(v.Summary)
	queue.OnDrop(m.Dropped)

	agg := store.NewAggregator(st, queue, store.AggregatorConfig{
		DrainInterval:    sc.Aggregator.DrainInterval,
		SweepInterval:    sc.Aggregator.SweepInterval,
		SilenceThreshold: sc.Aggregator.SilenceThreshold,
	}, m)
	aggDone := make(chan struct{})
	go func() {
		agg.Run(ctx)
		close(aggDone)
	}()

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(c *config.Config) {
				agg.SetSilenceThreshold(c.Sentinel.Aggregator.SilenceThreshold)
			})
			if err != nil {
				slog.Error("sentinel config: watch failed", "err", err)
			}
		}()
	}

	// gRPC receiver.
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(receiver.UnaryLogger))
	wire.RegisterSwarmReportServiceServer(grpcSrv, receiver.New(queue, v, mode).WithCounter(m))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", sc.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen on gRPC port %d: %w", sc.Server.GRPCPort, err)
	}
	go func() {
		slog.Info("gRPC receiver listening", "port", sc.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	// Dashboard, REST API, WebSocket stream and metrics on one HTTP port.
	hub := ws.New(v, sc.Stream.Interval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/", api.New(v, queue, mode))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", m.Handler())

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", sc.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", sc.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	var runErr error
	if sc.TUI.Enabled {
		// Quitting the display stops the sentinel.
		runErr = tui.Run(ctx, v, sc.TUI.RefreshInterval)
		cancel()
	} else {
		select {
		case <-ctx.Done():
		case err := <-httpErr:
			runErr = fmt.Errorf("http server: %w", err)
			cancel()
		}
	}

	slog.Info("swarmreport-sentinel shutting down")
	grpcSrv.GracefulStop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	<-aggDone
	return runErr
}
