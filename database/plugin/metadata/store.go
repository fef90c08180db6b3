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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
)

// MetadataStore is the queryable index of proposals and votes
type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Index
	GetProposal(uint32, types.Txn) (*models.Proposal, error)
	GetProposals(models.ProposalFilter, types.Txn) ([]models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error
	SetProposalClosed(
		uint32, // proposal ID
		uint64, // block
		uint32, // for votes
		uint32, // against votes
		types.Txn,
	) error
	AddVote(*models.Vote, types.Txn) error
	GetVotes(uint32, types.Txn) ([]models.Vote, error)
	GetVotesByVoter([]byte, types.Txn) ([]models.Vote, error)
	GetTip(types.Txn) (uint64, error)
	SetTip(uint64, types.Txn) error
	ResetIndex(types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
