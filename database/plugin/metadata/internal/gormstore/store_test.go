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

package gormstore

import (
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDbCounter atomic.Uint32

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf(
		"file:gormstore-%d?mode=memory&cache=shared",
		testDbCounter.Add(1),
	)
	db, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	require.NoError(t, err)
	s := New(nil)
	require.NoError(t, s.Open(db))
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testAccount(b byte) []byte {
	ret := make([]byte, 32)
	ret[31] = b
	return ret
}

func testProposal(id uint32, proposer byte) *models.Proposal {
	return &models.Proposal{
		ProposalId:  id,
		Proposer:    testAccount(proposer),
		Description: []byte(fmt.Sprintf("proposal %d", id)),
		StartBlock:  types.Uint64(10),
		EndBlock:    types.Uint64(110),
	}
}

func TestProposalIndex(t *testing.T) {
	s := setupTestStore(t)
	for i := range uint32(5) {
		require.NoError(t, s.SetProposal(testProposal(i, byte(i%2)), nil))
	}

	p, err := s.GetProposal(3, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []byte("proposal 3"), p.Description)
	assert.Equal(t, types.Uint64(110), p.EndBlock)
	assert.False(t, p.IsClosed)
	assert.Nil(t, p.ClosedBlock)

	missing, err := s.GetProposal(99, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.GetProposals(models.ProposalFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, p := range all {
		assert.Equal(t, uint32(i), p.ProposalId)
	}

	byProposer, err := s.GetProposals(
		models.ProposalFilter{Proposer: testAccount(1)},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, byProposer, 2)
	assert.Equal(t, uint32(1), byProposer[0].ProposalId)
	assert.Equal(t, uint32(3), byProposer[1].ProposalId)

	after := uint32(1)
	page, err := s.GetProposals(
		models.ProposalFilter{AfterId: &after, Limit: 2},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint32(2), page[0].ProposalId)
	assert.Equal(t, uint32(3), page[1].ProposalId)
}

func TestProposalUpsert(t *testing.T) {
	s := setupTestStore(t)
	p := testProposal(0, 1)
	require.NoError(t, s.SetProposal(p, nil))
	replacement := testProposal(0, 2)
	replacement.Description = []byte("replaced")
	require.NoError(t, s.SetProposal(replacement, nil))

	all, err := s.GetProposals(models.ProposalFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []byte("replaced"), all[0].Description)
	assert.Equal(t, testAccount(2), all[0].Proposer)
}

func TestVotesAndClose(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SetProposal(testProposal(0, 1), nil))
	require.NoError(t, s.SetProposal(testProposal(1, 1), nil))

	for i := range byte(3) {
		require.NoError(t, s.AddVote(&models.Vote{
			ProposalId: 0,
			Voter:      testAccount(i),
			Vote:       i != 2,
			Block:      types.Uint64(20),
		}, nil))
	}
	require.NoError(t, s.AddVote(&models.Vote{
		ProposalId: 1,
		Voter:      testAccount(0),
		Vote:       false,
		Block:      types.Uint64(21),
	}, nil))

	p, err := s.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), p.ForVotes)
	assert.Equal(t, uint32(1), p.AgainstVotes)

	votes, err := s.GetVotes(0, nil)
	require.NoError(t, err)
	require.Len(t, votes, 3)
	assert.Equal(t, testAccount(0), votes[0].Voter)

	byVoter, err := s.GetVotesByVoter(testAccount(0), nil)
	require.NoError(t, err)
	require.Len(t, byVoter, 2)
	assert.Equal(t, uint32(0), byVoter[0].ProposalId)
	assert.Equal(t, uint32(1), byVoter[1].ProposalId)

	// Duplicate votes violate the unique index
	require.Error(t, s.AddVote(&models.Vote{
		ProposalId: 0,
		Voter:      testAccount(0),
		Vote:       true,
	}, nil))

	// Votes on unknown proposals are rejected
	require.ErrorIs(t, s.AddVote(&models.Vote{
		ProposalId: 7,
		Voter:      testAccount(0),
	}, nil), models.ErrProposalNotFound)

	require.NoError(t, s.SetProposalClosed(0, math.MaxUint64, 2, 1, nil))
	p, err = s.GetProposal(0, nil)
	require.NoError(t, err)
	assert.True(t, p.IsClosed)
	require.NotNil(t, p.ClosedBlock)
	assert.Equal(t, types.Uint64(math.MaxUint64), *p.ClosedBlock)

	open, err := s.GetProposals(models.ProposalFilter{OpenOnly: true}, nil)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, uint32(1), open[0].ProposalId)

	require.ErrorIs(
		t,
		s.SetProposalClosed(42, 1, 0, 0, nil),
		models.ErrProposalNotFound,
	)
}

func TestTransactionRollback(t *testing.T) {
	s := setupTestStore(t)
	txn := s.Transaction()
	require.NoError(t, s.SetProposal(testProposal(0, 1), txn))
	require.NoError(t, s.SetTip(5, txn))
	require.NoError(t, txn.Rollback())

	p, err := s.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
	tip, err := s.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip)

	// Finished transactions are not reusable
	_, err = s.GetProposal(0, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)

	txn = s.Transaction()
	require.NoError(t, s.SetProposal(testProposal(0, 1), txn))
	require.NoError(t, s.SetTip(6, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Commit())
	p, err = s.GetProposal(0, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
	tip, err = s.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), tip)
}

type otherTxn struct{}

func (otherTxn) Commit() error   { return nil }
func (otherTxn) Rollback() error { return nil }

func TestWrongTxnType(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetProposal(0, otherTxn{})
	require.ErrorIs(t, err, types.ErrTxnWrongType)
}

func TestCommitTimestamp(t *testing.T) {
	s := setupTestStore(t)
	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	require.NoError(t, s.SetCommitTimestamp(1234, nil))
	require.NoError(t, s.SetCommitTimestamp(5678, nil))
	ts, err = s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(5678), ts)
}

func TestNotOpen(t *testing.T) {
	s := New(nil)
	_, err := s.GetTip(nil)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.Transaction().Commit(), ErrNotOpen)
	require.NoError(t, s.Close())
}

func TestRegisterMetrics(t *testing.T) {
	s := setupTestStore(t)
	reg := prometheus.NewRegistry()
	s.RegisterMetrics(reg, "sqlite")
	count, err := testutil.GatherAndCount(
		reg,
		"database_metadata_open_connections",
		"database_metadata_in_use_connections",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResetIndex(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SetProposal(testProposal(0, 1), nil))
	require.NoError(t, s.AddVote(
		&models.Vote{ProposalId: 0, Voter: testAccount(2), Vote: true},
		nil,
	))
	require.NoError(t, s.SetTip(5, nil))
	require.NoError(t, s.ResetIndex(nil))

	proposals, err := s.GetProposals(models.ProposalFilter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, proposals)
	votes, err := s.GetVotes(0, nil)
	require.NoError(t, err)
	assert.Empty(t, votes)
	tip, err := s.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip)
}
