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

package ledger

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/ballot/ledger"

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Weights      governance.WeightInfo
	Params       governance.Params
}

// LedgerState drives the governance engine one block at a time. It is the
// single writer of governance state.
type LedgerState struct {
	sync.Mutex
	config  LedgerStateConfig
	db      *database.Database
	engine  *governance.Engine
	tracer  trace.Tracer
	metrics stateMetrics
	closed  bool
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, ErrNilDatabase
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	engine, err := governance.NewEngine(
		governance.EngineConfig{
			Logger:       cfg.Logger,
			PromRegistry: cfg.PromRegistry,
			Weights:      cfg.Weights,
			Params:       cfg.Params,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create governance engine: %w", err)
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
		engine: engine,
		tracer: otel.Tracer(tracerName),
	}
	// Init metrics
	ls.metrics.init(cfg.PromRegistry)
	tip, err := ls.db.GetTip(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load tip: %w", err)
	}
	ls.metrics.blockNum.Set(float64(tip))
	ls.config.Logger.Info(
		fmt.Sprintf("loaded ledger tip at block %d", tip),
		"component", "ledger",
	)
	return ls, nil
}

// Database returns the underlying database
func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

// Engine returns the governance engine
func (ls *LedgerState) Engine() *governance.Engine {
	return ls.engine
}

// Tip returns the height of the last applied block. An empty ledger is at
// block 0.
func (ls *LedgerState) Tip() (governance.BlockNumber, error) {
	tip, err := ls.db.GetTip(nil)
	if err != nil {
		return 0, err
	}
	return governance.BlockNumber(tip), nil
}

// RecoverCommitTimestampConflict rebuilds the metadata index from the blob
// state after the two stores were found out of sync at startup
func (ls *LedgerState) RecoverCommitTimestampConflict() error {
	ls.Lock()
	defer ls.Unlock()
	ls.config.Logger.Warn(
		"rebuilding metadata index from blob state",
		"component", "ledger",
	)
	txn := ls.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		return ls.db.RebuildIndex(txn)
	})
}

// Close waits for any block in progress and rejects further blocks. The
// database is owned by the caller and is not closed.
func (ls *LedgerState) Close() error {
	ls.Lock()
	defer ls.Unlock()
	ls.closed = true
	return nil
}

func (ls *LedgerState) publish(evts []event.Event) {
	if ls.config.EventBus == nil {
		return
	}
	for _, evt := range evts {
		ls.config.EventBus.Publish(evt.Type, evt)
	}
}
