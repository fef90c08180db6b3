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

package database_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/plugin/blob/badger"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testAccount(b byte) governance.AccountId {
	var ret governance.AccountId
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func TestGovernanceStoreRoundTrip(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	st := txn.Governance()

	missing, err := st.Proposal(7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	p := &governance.Proposal{
		Proposer:    testAccount(0xaa),
		Description: []byte("raise the limit"),
		StartBlock:  3,
		EndBlock:    103,
	}
	require.NoError(t, st.SetProposal(7, p))
	got, err := st.Proposal(7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Proposer, got.Proposer)
	assert.Equal(t, p.Description, got.Description)
	assert.Equal(t, p.EndBlock, got.EndBlock)
	assert.False(t, got.IsClosed)

	voter := testAccount(0x01)
	has, err := st.HasVote(7, voter)
	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, st.SetVote(7, voter, false))
	choice, err := st.Vote(7, voter)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.False(t, *choice)

	require.ErrorIs(t, st.IncrementTally(7, true), governance.ErrTallyNotFound)
	require.NoError(t, st.InitTally(7))
	require.ErrorIs(t, st.InitTally(7), governance.ErrTallyExists)
	require.NoError(t, st.IncrementTally(7, true))
	require.NoError(t, st.IncrementTally(7, false))
	require.NoError(t, st.IncrementTally(7, true))
	tally, err := st.Tally(7)
	require.NoError(t, err)
	require.NotNil(t, tally)
	assert.Equal(t, uint32(2), tally.ForVotes)
	assert.Equal(t, uint32(1), tally.AgainstVotes)

	next, err := st.NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(0), next)
	require.NoError(t, st.SetNextProposalId(8))
	next, err = st.NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(8), next)
	require.NoError(t, txn.Commit())
}

func TestGovernanceStoreIterationOrder(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	defer txn.Release()
	st := txn.Governance()
	// Insert out of order, with IDs that sort differently as little-endian
	for _, id := range []governance.ProposalId{256, 2, 1, 65536, 0} {
		require.NoError(t, st.SetProposal(id, &governance.Proposal{
			Proposer: testAccount(0x02),
			EndBlock: governance.BlockNumber(id),
		}))
	}
	// A tally shares no prefix with proposals and must not be visited
	require.NoError(t, st.InitTally(3))
	var seen []governance.ProposalId
	err := st.IterateProposals(func(id governance.ProposalId, _ *governance.Proposal) bool {
		seen = append(seen, id)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []governance.ProposalId{0, 1, 2, 256, 65536}, seen)

	seen = nil
	err = st.IterateProposals(func(id governance.ProposalId, _ *governance.Proposal) bool {
		seen = append(seen, id)
		return len(seen) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []governance.ProposalId{0, 1}, seen)
}

func TestEngineAndIndex(t *testing.T) {
	db := newTestDatabase(t, "")
	engine, err := governance.NewEngine(governance.EngineConfig{
		Params: governance.Params{
			MaxDescriptionLength: 64,
			DefaultVotingPeriod:  2,
			MaxProposalsPerBlock: 10,
		},
	})
	require.NoError(t, err)
	alice := testAccount(0x0a)
	bob := testAccount(0x0b)

	// Block 1: propose and vote
	txn := db.Transaction(true)
	rec := &governance.EventRecorder{}
	env := governance.Env{Store: txn.Governance(), Events: rec, Block: 1}
	id, err := engine.Propose(env, governance.Signed(alice), []byte("first"))
	require.NoError(t, err)
	require.NoError(t, engine.Vote(env, governance.Signed(bob), id, true))
	require.NoError(t, engine.Vote(env, governance.Signed(alice), id, false))
	require.NoError(t, db.IndexEvents(rec.Events(), 1, txn))
	require.NoError(t, db.SetTip(1, txn))
	require.NoError(t, txn.Commit())

	proposals, err := db.GetProposals(models.ProposalFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, uint32(0), proposals[0].ProposalId)
	assert.Equal(t, alice.Bytes(), proposals[0].Proposer)
	assert.Equal(t, types.Uint64(1), proposals[0].StartBlock)
	assert.Equal(t, types.Uint64(3), proposals[0].EndBlock)
	assert.Equal(t, uint32(1), proposals[0].ForVotes)
	assert.Equal(t, uint32(1), proposals[0].AgainstVotes)
	assert.False(t, proposals[0].IsClosed)

	votes, err := db.GetVotes(0, nil)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, bob.Bytes(), votes[0].Voter)
	assert.True(t, votes[0].Vote)
	byVoter, err := db.GetVotesByVoter(alice.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, byVoter, 1)
	assert.False(t, byVoter[0].Vote)

	// Block 4: the sweep closes the expired proposal
	txn = db.Transaction(true)
	rec.Reset()
	env = governance.Env{Store: txn.Governance(), Events: rec, Block: 4}
	_, err = engine.OnInitialize(env)
	require.NoError(t, err)
	require.Equal(t, 1, rec.Len())
	require.NoError(t, db.IndexEvents(rec.Events(), 4, txn))
	require.NoError(t, db.SetTip(4, txn))
	require.NoError(t, txn.Commit())

	indexed, err := db.GetIndexedProposal(0, nil)
	require.NoError(t, err)
	require.NotNil(t, indexed)
	assert.True(t, indexed.IsClosed)
	require.NotNil(t, indexed.ClosedBlock)
	assert.Equal(t, types.Uint64(4), *indexed.ClosedBlock)

	open, err := db.GetProposals(models.ProposalFilter{OpenOnly: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, open)

	tip, err := db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), tip)

	txn = db.Transaction(false)
	defer txn.Release()
	p, err := engine.Proposal(txn.Governance(), 0)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsClosed)
}

func TestRollbackDiscardsBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := txn.Governance().SetNextProposalId(5); err != nil {
			return err
		}
		if err := db.SetTip(9, txn); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	tip, err := db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip)
	metaTip, err := db.Metadata().GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), metaTip)
	ro := db.Transaction(false)
	defer ro.Release()
	next, err := ro.Governance().NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(0), next)
}

func TestSetTipReadOnly(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(false)
	defer txn.Release()
	require.ErrorIs(t, db.SetTip(1, txn), types.ErrTxnReadOnly)
	require.ErrorIs(t, db.SetTip(1, nil), types.ErrTxnReadOnly)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	txn := db.Transaction(true)
	require.NoError(t, txn.Governance().SetNextProposalId(3))
	require.NoError(t, db.SetTip(12, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	db = newTestDatabase(t, dir)
	assert.Equal(t, dir, db.DataDir())
	tip, err := db.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), tip)
	ro := db.Transaction(false)
	defer ro.Release()
	next, err := ro.Governance().NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(3), next)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	txn := db.Transaction(true)
	require.NoError(t, db.SetTip(1, txn))
	require.NoError(t, txn.Commit())
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Move the blob store ahead of the metadata store
	bs, err := badger.New(badger.WithDataDir(filepath.Join(dir, "blob")))
	require.NoError(t, err)
	require.NoError(t, bs.Start())
	blobTxn := bs.NewTransaction(true)
	require.NoError(t, bs.SetCommitTimestamp(metadataTs+1000, blobTxn))
	require.NoError(t, blobTxn.Commit())
	require.NoError(t, bs.Close())

	db, err = database.New(&database.Config{DataDir: dir})
	require.Error(t, err)
	require.NotNil(t, db)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, metadataTs, tsErr.MetadataTimestamp)
	assert.Equal(t, metadataTs+1000, tsErr.BlobTimestamp)

	// Rebuilding the index commits both stores with the same timestamp
	txn = db.Transaction(true)
	require.NoError(t, db.RebuildIndex(txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())
	db = newTestDatabase(t, dir)
	tip, err := db.Metadata().GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tip)
}

func TestRebuildIndex(t *testing.T) {
	db := newTestDatabase(t, "")
	engine, err := governance.NewEngine(governance.EngineConfig{
		Params: governance.DefaultParams(),
	})
	require.NoError(t, err)
	txn := db.Transaction(true)
	env := governance.Env{Store: txn.Governance(), Block: 2}
	for i := range 3 {
		_, err := engine.Propose(env, governance.Signed(testAccount(byte(i))), []byte("p"))
		require.NoError(t, err)
	}
	require.NoError(t, engine.Vote(env, governance.Signed(testAccount(9)), 1, true))
	require.NoError(t, engine.Vote(env, governance.Signed(testAccount(8)), 1, false))
	require.NoError(t, engine.Vote(env, governance.Signed(testAccount(9)), 2, true))
	require.NoError(t, db.SetTip(2, txn))
	require.NoError(t, txn.Commit())

	// Nothing was indexed, so the rebuild is the only source of index rows
	txn = db.Transaction(true)
	require.NoError(t, db.RebuildIndex(txn))
	require.NoError(t, txn.Commit())

	proposals, err := db.GetProposals(models.ProposalFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, uint32(1), proposals[1].ForVotes)
	assert.Equal(t, uint32(1), proposals[1].AgainstVotes)
	assert.Equal(t, uint32(1), proposals[2].ForVotes)
	assert.Equal(t, types.Uint64(2), proposals[0].StartBlock)
	votes, err := db.GetVotesByVoter(testAccount(9).Bytes(), nil)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
	metaTip, err := db.Metadata().GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), metaTip)

	ro := db.Transaction(false)
	defer ro.Release()
	require.ErrorIs(t, db.RebuildIndex(ro), types.ErrTxnReadOnly)
}
