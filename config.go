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

package ballot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultMaxPendingCalls = 1024
	DefaultMaxBlockCalls   = 256
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	weights         governance.WeightInfo
	genesisConfig   *governance.GenesisConfig
	dataDir         string
	blobPlugin      string
	metadataPlugin  string
	governance      governance.Params
	blockInterval   time.Duration
	shutdownTimeout time.Duration
	maxPendingCalls int
	maxBlockCalls   int
	tracing         bool
	tracingStdout   bool
}

func (n *Node) configValidate() error {
	if err := n.config.governance.Validate(); err != nil {
		return err
	}
	if n.config.blockInterval < 0 {
		return fmt.Errorf(
			"invalid block interval: %s",
			n.config.blockInterval,
		)
	}
	if n.config.maxPendingCalls <= 0 {
		return errors.New("max pending calls must be positive")
	}
	if n.config.maxBlockCalls < 0 {
		return errors.New("max block calls must not be negative")
	}
	if n.config.tracingStdout && !n.config.tracing {
		return errors.New("stdout tracing requires tracing to be enabled")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the Connection config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new ballot config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		governance:      governance.DefaultParams(),
		maxPendingCalls: DefaultMaxPendingCalls,
		maxBlockCalls:   DefaultMaxBlockCalls,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithGovernanceParams specifies the governance parameters. The default is governance.DefaultParams()
func WithGovernanceParams(params governance.Params) ConfigOptionFunc {
	return func(c *Config) {
		c.governance = params
	}
}

// WithWeights specifies the weight table used for block accounting. The default is the benchmarked weights
func WithWeights(weights governance.WeightInfo) ConfigOptionFunc {
	return func(c *Config) {
		c.weights = weights
	}
}

// WithGenesisConfig specifies proposals to seed an empty ledger with on startup
func WithGenesisConfig(genesisConfig *governance.GenesisConfig) ConfigOptionFunc {
	return func(c *Config) {
		c.genesisConfig = genesisConfig
	}
}

// WithBlockInterval specifies how often a block is produced. A zero interval disables block production, and blocks
// are then only produced by calling ProduceBlock
func WithBlockInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockInterval = interval
	}
}

// WithMaxPendingCalls specifies how many submitted calls may wait for the next block
func WithMaxPendingCalls(maxCalls int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxPendingCalls = maxCalls
	}
}

// WithMaxBlockCalls specifies how many pending calls a single block takes. A value of 0 takes all pending calls
func WithMaxBlockCalls(maxCalls int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxBlockCalls = maxCalls
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
