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
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/blinklabs-io/ballot/ledger"
)

// Ledger is a ledger opened directly on the configured database, without
// block production. It is used by the one-shot CLI commands.
type Ledger struct {
	*ledger.LedgerState
	db       *database.Database
	eventBus *event.EventBus
}

// OpenLedger opens the configured database and loads the ledger, recovering
// the metadata index if the stores are out of sync
func OpenLedger(cfg *config.Config, logger *slog.Logger) (*Ledger, error) {
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		Logger:         logger,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	dbNeedsRecovery := false
	if err != nil {
		var dbErr database.CommitTimestampError
		if db == nil || !errors.As(err, &dbErr) {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		dbNeedsRecovery = true
	}
	eventBus := event.NewEventBus(nil, logger)
	ls, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Database: db,
			EventBus: eventBus,
			Logger:   logger,
			Params:   cfg.Governance,
		},
	)
	if err != nil {
		eventBus.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	l := &Ledger{
		LedgerState: ls,
		db:          db,
		eventBus:    eventBus,
	}
	if dbNeedsRecovery {
		if err := ls.RecoverCommitTimestampConflict(); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	return l, nil
}

// EventBus returns the event bus the ledger publishes to
func (l *Ledger) EventBus() *event.EventBus {
	return l.eventBus
}

// Close closes the ledger and its database
func (l *Ledger) Close() error {
	err := l.LedgerState.Close()
	l.eventBus.Stop()
	if dbErr := l.db.Close(); dbErr != nil {
		err = errors.Join(err, dbErr)
	}
	return err
}
