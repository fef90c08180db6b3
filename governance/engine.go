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

package governance

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/blinklabs-io/ballot/event"
	"github.com/prometheus/client_golang/prometheus"
)

type EngineConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Weights      WeightInfo
	Params       Params
}

// Env is the execution environment for a single call or sweep. The
// enclosing runtime supplies the current block height and a store scoped
// to its transaction.
type Env struct {
	Store  Store
	Events EventSink
	Block  BlockNumber
}

func (env Env) deposit(eventType event.EventType, data any) {
	if env.Events == nil {
		return
	}
	env.Events.DepositEvent(event.NewEvent(eventType, data))
}

// Engine implements the proposal lifecycle: propose, vote, close and the
// per-block expiry sweep. It holds no mutable state of its own; all state
// lives in the Store passed with each call.
type Engine struct {
	logger  *slog.Logger
	metrics *engineMetrics
	weights WeightInfo
	params  Params
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		logger:  cfg.Logger,
		weights: cfg.Weights,
		params:  cfg.Params,
	}
	if e.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.weights == nil {
		e.weights = DefaultWeights()
	}
	if cfg.PromRegistry != nil {
		e.metrics = &engineMetrics{}
		e.metrics.init(cfg.PromRegistry)
	}
	return e, nil
}

// Params returns the engine parameters
func (e *Engine) Params() Params {
	return e.params
}

// Weights returns the weight table used by the engine
func (e *Engine) Weights() WeightInfo {
	return e.weights
}

// Propose creates a new proposal owned by the signing account and returns
// its ID
func (e *Engine) Propose(
	env Env,
	origin Origin,
	description []byte,
) (ProposalId, error) {
	who, err := ensureSigned(origin)
	if err != nil {
		e.recordCallError(err)
		return 0, err
	}
	if err := e.params.checkDescription(description); err != nil {
		e.recordCallError(err)
		return 0, err
	}
	id, err := e.createProposal(env, who, description)
	if err != nil {
		e.recordCallError(err)
		return 0, err
	}
	e.logger.Debug(
		"proposal created",
		"component", "governance",
		"proposal_id", id,
		"proposer", who.String(),
		"block", env.Block,
	)
	return id, nil
}

// createProposal allocates the next ID and stores the proposal and its
// tally. The description must already have been validated.
func (e *Engine) createProposal(
	env Env,
	proposer AccountId,
	description []byte,
) (ProposalId, error) {
	id, err := env.Store.NextProposalId()
	if err != nil {
		return 0, fmt.Errorf("get next proposal id: %w", err)
	}
	// The counter saturates, so the last ID can only be handed out once
	if id == math.MaxUint32 {
		existing, err := env.Store.Proposal(id)
		if err != nil {
			return 0, fmt.Errorf("get proposal %d: %w", id, err)
		}
		if existing != nil {
			return 0, ErrProposalIdExhausted
		}
	}
	endBlock := saturatingAddBlock(env.Block, e.params.DefaultVotingPeriod)
	proposal := &Proposal{
		Proposer:    proposer,
		Description: bytes.Clone(description),
		StartBlock:  env.Block,
		EndBlock:    endBlock,
		IsClosed:    false,
	}
	if err := env.Store.SetProposal(id, proposal); err != nil {
		return 0, fmt.Errorf("set proposal %d: %w", id, err)
	}
	if err := env.Store.InitTally(id); err != nil {
		return 0, fmt.Errorf("init tally %d: %w", id, err)
	}
	if err := env.Store.SetNextProposalId(saturatingIncProposalId(id)); err != nil {
		return 0, fmt.Errorf("set next proposal id: %w", err)
	}
	env.deposit(
		ProposalCreatedEventType,
		ProposalCreatedEvent{
			ProposalId:  id,
			Proposer:    proposer,
			Description: bytes.Clone(description),
			EndBlock:    endBlock,
		},
	)
	if e.metrics != nil {
		e.metrics.proposalsCreated.Inc()
	}
	return id, nil
}

// Vote records the signing account's vote on a proposal. Checks are
// applied in order and the first failure is returned: existence, closed
// flag, voting window, duplicate vote.
func (e *Engine) Vote(
	env Env,
	origin Origin,
	proposalId ProposalId,
	vote bool,
) error {
	err := e.vote(env, origin, proposalId, vote)
	e.recordCallError(err)
	return err
}

func (e *Engine) vote(
	env Env,
	origin Origin,
	proposalId ProposalId,
	vote bool,
) error {
	who, err := ensureSigned(origin)
	if err != nil {
		return err
	}
	proposal, err := env.Store.Proposal(proposalId)
	if err != nil {
		return fmt.Errorf("get proposal %d: %w", proposalId, err)
	}
	if proposal == nil {
		return ErrProposalNotFound
	}
	if proposal.IsClosed {
		return ErrProposalClosed
	}
	// Expiry is checked independently of the closed flag: a proposal past
	// its end block that has not been swept yet still rejects votes
	if proposal.Expired(env.Block) {
		return ErrVotingPeriodEnded
	}
	voted, err := env.Store.HasVote(proposalId, who)
	if err != nil {
		return fmt.Errorf("check vote on proposal %d: %w", proposalId, err)
	}
	if voted {
		return ErrAlreadyVoted
	}
	if err := env.Store.SetVote(proposalId, who, vote); err != nil {
		return fmt.Errorf("set vote on proposal %d: %w", proposalId, err)
	}
	if err := env.Store.IncrementTally(proposalId, vote); err != nil {
		return fmt.Errorf("update tally %d: %w", proposalId, err)
	}
	env.deposit(
		VotedEventType,
		VotedEvent{
			ProposalId: proposalId,
			Voter:      who,
			Vote:       vote,
		},
	)
	if e.metrics != nil {
		e.metrics.votesCast.WithLabelValues(choiceLabel(vote)).Inc()
	}
	e.logger.Debug(
		"vote recorded",
		"component", "governance",
		"proposal_id", proposalId,
		"voter", who.String(),
		"vote", vote,
	)
	return nil
}

// Close marks a proposal whose voting window has ended as closed. Any
// signed account may close an eligible proposal.
func (e *Engine) Close(
	env Env,
	origin Origin,
	proposalId ProposalId,
) error {
	err := e.close(env, origin, proposalId)
	e.recordCallError(err)
	return err
}

func (e *Engine) close(
	env Env,
	origin Origin,
	proposalId ProposalId,
) error {
	if _, err := ensureSigned(origin); err != nil {
		return err
	}
	proposal, err := env.Store.Proposal(proposalId)
	if err != nil {
		return fmt.Errorf("get proposal %d: %w", proposalId, err)
	}
	if proposal == nil {
		return ErrProposalNotFound
	}
	if proposal.IsClosed {
		return ErrProposalClosed
	}
	if !proposal.Expired(env.Block) {
		return ErrVotingPeriodNotEnded
	}
	return e.closeProposal(env, proposalId, proposal, closeReasonManual)
}

// closeProposal sets the closed flag, persists the proposal and emits the
// closing notification with the current tally
func (e *Engine) closeProposal(
	env Env,
	proposalId ProposalId,
	proposal *Proposal,
	reason string,
) error {
	proposal.IsClosed = true
	if err := env.Store.SetProposal(proposalId, proposal); err != nil {
		return fmt.Errorf("set proposal %d: %w", proposalId, err)
	}
	tally, err := env.Store.Tally(proposalId)
	if err != nil {
		return fmt.Errorf("get tally %d: %w", proposalId, err)
	}
	if tally == nil {
		tally = &Tally{}
	}
	env.deposit(
		ProposalClosedEventType,
		ProposalClosedEvent{
			ProposalId:   proposalId,
			ForVotes:     tally.ForVotes,
			AgainstVotes: tally.AgainstVotes,
		},
	)
	if e.metrics != nil {
		e.metrics.proposalsClosed.WithLabelValues(reason).Inc()
	}
	e.logger.Debug(
		"proposal closed",
		"component", "governance",
		"proposal_id", proposalId,
		"reason", reason,
		"for_votes", tally.ForVotes,
		"against_votes", tally.AgainstVotes,
	)
	return nil
}

// OnInitialize runs the expiry sweep for the block in env. It visits
// proposals in ascending ID order and closes at most MaxProposalsPerBlock
// expired proposals; any remaining ones are left for a later block. It
// returns the weight consumed by the closures.
func (e *Engine) OnInitialize(env Env) (Weight, error) {
	var weight Weight
	maxClosures := e.params.MaxProposalsPerBlock
	type expiredProposal struct {
		proposal *Proposal
		id       ProposalId
	}
	// Collect first and close afterwards, so no store writes happen while
	// the store iterator is open
	var expired []expiredProposal
	capReached := false
	err := env.Store.IterateProposals(
		func(id ProposalId, p *Proposal) bool {
			if uint32(len(expired)) >= maxClosures { //nolint:gosec
				capReached = true
				return false
			}
			if !p.IsClosed && p.Expired(env.Block) {
				expired = append(
					expired,
					expiredProposal{id: id, proposal: p},
				)
			}
			return true
		},
	)
	if err != nil {
		return weight, fmt.Errorf("iterate proposals: %w", err)
	}
	for _, item := range expired {
		if err := e.closeProposal(env, item.id, item.proposal, closeReasonSweep); err != nil {
			return weight, err
		}
		weight = weight.Add(e.weights.CloseProposal())
	}
	if e.metrics != nil {
		if capReached {
			e.metrics.sweepBacklog.Set(1)
		} else {
			e.metrics.sweepBacklog.Set(0)
		}
	}
	if len(expired) > 0 {
		e.logger.Debug(
			fmt.Sprintf("auto-closed %d expired proposal(s)", len(expired)),
			"component", "governance",
			"block", env.Block,
		)
	}
	return weight, nil
}

// Proposal returns the proposal with the given ID, or nil if absent
func (e *Engine) Proposal(st Store, id ProposalId) (*Proposal, error) {
	return st.Proposal(id)
}

// VoteOf returns the recorded vote of an account on a proposal, or nil
func (e *Engine) VoteOf(
	st Store,
	id ProposalId,
	voter AccountId,
) (*bool, error) {
	return st.Vote(id, voter)
}

// TallyOf returns the tally for a proposal, or nil if absent
func (e *Engine) TallyOf(st Store, id ProposalId) (*Tally, error) {
	return st.Tally(id)
}

// NextProposalId returns the ID the next proposal will receive
func (e *Engine) NextProposalId(st Store) (ProposalId, error) {
	return st.NextProposalId()
}

func choiceLabel(vote bool) string {
	if vote {
		return "for"
	}
	return "against"
}
