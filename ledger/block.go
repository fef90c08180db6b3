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
	"math"
	"time"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ApplyBlock applies the next block on top of the current tip. The expiry
// sweep runs first, then each call in order. Calls that fail with a
// governance error are recorded in the result and do not affect the rest
// of the block. Any other error aborts the block and nothing is committed.
// Notifications are published to the event bus only after the commit.
func (ls *LedgerState) ApplyBlock(
	ctx context.Context,
	calls []Call,
) (*BlockResult, error) {
	ls.Lock()
	defer ls.Unlock()
	if ls.closed {
		return nil, ErrLedgerClosed
	}
	ctx, span := ls.tracer.Start(
		ctx,
		"ledger.ApplyBlock",
		trace.WithAttributes(attribute.Int("block.calls", len(calls))),
	)
	defer span.End()
	start := time.Now()
	var result *BlockResult
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		result, err = ls.applyBlockTxn(ctx, txn, calls)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.config.Logger.Error(
			"failed to apply block",
			"component", "ledger",
			"error", err,
		)
		return nil, err
	}
	ls.metrics.observeBlock(result, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int64("block.number", int64(min(uint64(result.BlockNumber), math.MaxInt64))), //nolint:gosec
		attribute.Int("block.failed_calls", result.FailedCalls()),
		attribute.Int("block.sweep_closures", result.SweepClosures),
	)
	ls.publish(result.Events)
	if ls.config.EventBus != nil {
		ls.config.EventBus.Publish(
			event.BlockAppliedEventType,
			event.NewEvent(
				event.BlockAppliedEventType,
				event.BlockAppliedEvent{
					BlockNumber:   uint64(result.BlockNumber),
					Calls:         len(result.Calls),
					FailedCalls:   result.FailedCalls(),
					SweepClosures: result.SweepClosures,
					RefTime:       result.Weight.RefTime,
					ProofSize:     result.Weight.ProofSize,
				},
			),
		)
	}
	ls.config.Logger.Debug(
		fmt.Sprintf(
			"applied block %d: %d calls (%d failed), %d proposals closed at initialization",
			result.BlockNumber,
			len(result.Calls),
			result.FailedCalls(),
			result.SweepClosures,
		),
		"component", "ledger",
		"ref_time", result.Weight.RefTime,
		"proof_size", result.Weight.ProofSize,
	)
	return result, nil
}

func (ls *LedgerState) applyBlockTxn(
	ctx context.Context,
	txn *database.Txn,
	calls []Call,
) (*BlockResult, error) {
	tip, err := ls.db.GetTip(txn)
	if err != nil {
		return nil, fmt.Errorf("load tip: %w", err)
	}
	height := tip
	if height < math.MaxUint64 {
		height++
	}
	rec := &governance.EventRecorder{}
	env := governance.Env{
		Store:  txn.Governance(),
		Events: rec,
		Block:  governance.BlockNumber(height),
	}
	res := &BlockResult{
		BlockNumber: env.Block,
		Calls:       make([]CallResult, 0, len(calls)),
	}
	// Close expired proposals before any call sees the new height
	_, sweepSpan := ls.tracer.Start(ctx, "governance.OnInitialize")
	sweepWeight, err := ls.engine.OnInitialize(env)
	sweepSpan.End()
	if err != nil {
		return nil, fmt.Errorf("block %d initialization: %w", height, err)
	}
	res.SweepClosures = rec.Len()
	res.Weight = sweepWeight
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr, err := ls.dispatch(env, rec, call)
		if err != nil {
			return nil, fmt.Errorf("block %d call %d (%s): %w", height, i, call.Type, err)
		}
		res.Calls = append(res.Calls, cr)
		res.Weight = res.Weight.Add(cr.Weight)
	}
	if err := ls.db.IndexEvents(rec.Events(), height, txn); err != nil {
		return nil, err
	}
	if err := ls.db.SetTip(height, txn); err != nil {
		return nil, err
	}
	res.Events = rec.Events()
	return res, nil
}

// dispatch applies a single call. Governance errors are captured in the
// result; storage errors are returned.
func (ls *LedgerState) dispatch(
	env governance.Env,
	rec *governance.EventRecorder,
	call Call,
) (CallResult, error) {
	ret := CallResult{
		Call:       call,
		ProposalId: call.ProposalId,
	}
	weights := ls.engine.Weights()
	mark := rec.Len()
	var err error
	switch call.Type {
	case CallTypePropose:
		ret.Weight = weights.Propose()
		var id governance.ProposalId
		id, err = ls.engine.Propose(env, call.Origin, call.Description)
		if err == nil {
			ret.ProposalId = id
		}
	case CallTypeVote:
		ret.Weight = weights.Vote()
		err = ls.engine.Vote(env, call.Origin, call.ProposalId, call.Vote)
	case CallTypeClose:
		ret.Weight = weights.CloseProposal()
		err = ls.engine.Close(env, call.Origin, call.ProposalId)
	default:
		ret.Err = fmt.Errorf("%w: %d", ErrUnknownCall, call.Type)
		return ret, nil
	}
	if err != nil {
		if !governance.IsCallError(err) {
			return ret, err
		}
		// Drop anything deposited by the failed call
		rec.Truncate(mark)
		ret.Err = err
		ls.config.Logger.Debug(
			"call failed",
			"component", "ledger",
			"call", call.Type.String(),
			"proposal_id", call.ProposalId,
			"error", err,
		)
	}
	return ret, nil
}
