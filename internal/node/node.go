// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return RunContext(
		signalCtx,
		cfg,
		logger,
		prometheus.DefaultRegisterer,
		prometheus.DefaultGatherer,
	)
}

// NodeOptions builds the node options for the given config
func NodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) ([]ballot.ConfigOptionFunc, error) {
	blockInterval, err := cfg.BlockIntervalDuration()
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := []ballot.ConfigOptionFunc{
		ballot.WithLogger(logger),
		ballot.WithDatabasePath(cfg.DatabasePath),
		ballot.WithBlobPlugin(cfg.BlobPlugin),
		ballot.WithMetadataPlugin(cfg.MetadataPlugin),
		ballot.WithGovernanceParams(cfg.Governance),
		ballot.WithBlockInterval(blockInterval),
		ballot.WithShutdownTimeout(shutdownTimeout),
		ballot.WithMaxPendingCalls(cfg.MempoolCapacity),
		ballot.WithMaxBlockCalls(cfg.MaxBlockCalls),
		ballot.WithPrometheusRegistry(promRegistry),
		ballot.WithTracing(cfg.Tracing),
		ballot.WithTracingStdout(cfg.TracingStdout),
	}
	if cfg.GenesisFile != "" {
		genesisCfg, err := governance.LoadGenesisConfig(cfg.GenesisFile)
		if err != nil {
			return nil, err
		}
		logger.Debug(
			fmt.Sprintf(
				"loaded %d genesis proposals from %s",
				len(genesisCfg.Proposals),
				cfg.GenesisFile,
			),
			"component", "node",
		)
		opts = append(opts, ballot.WithGenesisConfig(genesisCfg))
	}
	return opts, nil
}

// RunContext runs the node and its metrics listener until ctx is done or
// the node fails
func RunContext(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	promGatherer prometheus.Gatherer,
) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := NodeOptions(cfg, logger, promRegistry)
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	n, err := ballot.New(ballot.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	mux := http.NewServeMux()
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(promGatherer, promhttp.HandlerOpts{}),
	)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	registerHealth(mux, n)
	metricsAddr := net.JoinHostPort(
		cfg.BindAddr,
		fmt.Sprintf("%d", cfg.MetricsPort),
	)
	listenConfig := net.ListenConfig{Control: socketControl}
	metricsListener, err := listenConfig.Listen(
		context.Background(),
		"tcp",
		metricsAddr,
	)
	if err != nil {
		_ = n.Stop()
		return fmt.Errorf("failed to start metrics listener: %w", err)
	}
	logger.Info(
		"serving prometheus metrics and health checks on "+metricsListener.Addr().String(),
		"component",
		"node",
	)
	metricsServer := &http.Server{
		// Use h2c so the gRPC health check works without TLS
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errChan := make(chan error, 2)
	go func() {
		if err := metricsServer.Serve(metricsListener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics listener: %w", err)
		}
	}()

	// Run node in goroutine
	nodeCtx, nodeCtxStop := context.WithCancel(ctx)
	defer nodeCtxStop()
	go func() {
		//nolint:contextcheck
		if err := n.Run(nodeCtx); err != nil {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("signal received, initiating graceful shutdown")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		} else {
			logger.Info("node stopped")
		}
	}
	nodeCtxStop()

	// Shutdown metrics server
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}

	// Shutdown node
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("shutdown complete")
	}
	return runErr
}
