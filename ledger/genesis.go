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
	"context"
	"fmt"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Genesis seeds an empty ledger with the configured proposals at block 0.
// It fails with ErrLedgerNotEmpty once any block has been applied or any
// proposal exists, and leaves the ledger untouched on any error.
func (ls *LedgerState) Genesis(
	ctx context.Context,
	cfg *governance.GenesisConfig,
) error {
	ls.Lock()
	defer ls.Unlock()
	if ls.closed {
		return ErrLedgerClosed
	}
	numProposals := 0
	if cfg != nil {
		numProposals = len(cfg.Proposals)
	}
	_, span := ls.tracer.Start(
		ctx,
		"ledger.Genesis",
		trace.WithAttributes(attribute.Int("genesis.proposals", numProposals)),
	)
	defer span.End()
	var evts []event.Event
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		tip, err := ls.db.GetTip(txn)
		if err != nil {
			return fmt.Errorf("load tip: %w", err)
		}
		st := txn.Governance()
		nextId, err := st.NextProposalId()
		if err != nil {
			return err
		}
		if tip != 0 || nextId != 0 {
			return ErrLedgerNotEmpty
		}
		rec := &governance.EventRecorder{}
		env := governance.Env{
			Store:  st,
			Events: rec,
			Block:  governance.GenesisBlock,
		}
		if err := ls.engine.BuildGenesis(env, cfg); err != nil {
			return err
		}
		if err := ls.db.IndexEvents(rec.Events(), uint64(governance.GenesisBlock), txn); err != nil {
			return err
		}
		evts = rec.Events()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	ls.publish(evts)
	ls.config.Logger.Info(
		fmt.Sprintf("genesis created %d proposals", numProposals),
		"component", "ledger",
	)
	return nil
}
