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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/ledger"
	"github.com/blinklabs-io/ballot/mempool"
)

var (
	ErrNodeNotRunning     = errors.New("node is not running")
	ErrPendingCallsFull   = mempool.ErrMempoolFull
	ErrNodeAlreadyRunning = errors.New("node is already running")
	ErrNodeStopped        = errors.New("node has been stopped")
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
	mu            sync.Mutex
	mempool       *mempool.Mempool
	producerStop  context.CancelFunc
	producerWg    sync.WaitGroup
	running       bool
	stopped       bool
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	n.mempool = mempool.NewMempool(
		mempool.MempoolConfig{
			PromRegistry: cfg.promRegistry,
			Logger:       cfg.logger,
			EventBus:     n.eventBus,
			Capacity:     cfg.maxPendingCalls,
		},
	)
	return n, nil
}

// Run opens the database, loads the ledger and starts block production. It
// blocks until ctx is done or Stop is called. Stop must be called to release
// resources, including after Run returns an error.
func (n *Node) Run(ctx context.Context) error {
	if err := n.start(ctx); err != nil {
		return err
	}
	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

func (n *Node) start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return ErrNodeStopped
	}
	if n.running {
		return ErrNodeAlreadyRunning
	}
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	dbNeedsRecovery := false
	dbConfig := &database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	}
	db, err := database.New(dbConfig)
	if err != nil {
		var dbErr database.CommitTimestampError
		if db == nil || !errors.As(err, &dbErr) {
			if db != nil {
				_ = db.Close()
			}
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"error",
			err,
		)
		dbNeedsRecovery = true
	}
	n.db = db
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Database:     n.db,
			EventBus:     n.eventBus,
			Logger:       n.config.logger,
			PromRegistry: n.config.promRegistry,
			Params:       n.config.governance,
			Weights:      n.config.weights,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	// Run DB recovery if needed
	if dbNeedsRecovery {
		if err := n.ledgerState.RecoverCommitTimestampConflict(); err != nil {
			return fmt.Errorf("failed to recover database: %w", err)
		}
	}
	// Seed genesis proposals on an empty ledger
	if n.config.genesisConfig != nil {
		err := n.ledgerState.Genesis(ctx, n.config.genesisConfig)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrLedgerNotEmpty):
			n.config.logger.Debug(
				"skipping genesis on non-empty ledger",
				"component", "node",
			)
		default:
			return fmt.Errorf("failed to apply genesis: %w", err)
		}
	}
	// Start block production
	if n.config.blockInterval > 0 {
		producerCtx, producerStop := context.WithCancel(ctx)
		n.producerStop = producerStop
		n.producerWg.Add(1)
		go n.produceBlocks(producerCtx)
	}
	n.running = true
	return nil
}

func (n *Node) produceBlocks(ctx context.Context) {
	defer n.producerWg.Done()
	ticker := time.NewTicker(n.config.blockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := n.ProduceBlock(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				n.config.logger.Error(
					fmt.Sprintf("failed to produce block: %s", err),
					"component", "node",
				)
			}
		}
	}
}

// ProduceBlock applies a block containing the oldest pending calls, in
// submission order. Calls from a block that fails to apply are dropped.
func (n *Node) ProduceBlock(ctx context.Context) (*ledger.BlockResult, error) {
	n.mu.Lock()
	ls := n.ledgerState
	if !n.running || ls == nil {
		n.mu.Unlock()
		return nil, ErrNodeNotRunning
	}
	n.mu.Unlock()
	calls := n.mempool.Drain(n.config.maxBlockCalls)
	res, err := ls.ApplyBlock(ctx, calls)
	if err != nil {
		if len(calls) > 0 {
			n.config.logger.Warn(
				fmt.Sprintf("dropped %d calls from failed block", len(calls)),
				"component", "node",
			)
		}
		return nil, err
	}
	return res, nil
}

// SubmitCall queues a call for inclusion in a future block
func (n *Node) SubmitCall(call ledger.Call) error {
	_, err := n.mempool.AddCall(call)
	return err
}

// PendingCalls returns the number of calls waiting for a block
func (n *Node) PendingCalls() int {
	return n.mempool.Len()
}

// Mempool returns the pending call pool
func (n *Node) Mempool() *mempool.Mempool {
	return n.mempool
}

// LedgerState returns the ledger, or nil before Run
func (n *Node) LedgerState() *ledger.LedgerState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledgerState
}

// Running returns true while the node is producing blocks
func (n *Node) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// EventBus returns the node event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop producing blocks
	n.config.logger.Debug("shutdown phase 1: stopping block production")

	n.mu.Lock()
	producerStop := n.producerStop
	n.running = false
	n.stopped = true
	n.mu.Unlock()
	if producerStop != nil {
		producerStop()
	}
	n.producerWg.Wait()

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
