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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GenesisBlock is the block height used for proposals seeded at genesis
const GenesisBlock BlockNumber = 0

// GenesisProposal is a proposal seeded at system initialization
type GenesisProposal struct {
	Proposer    AccountId
	Description []byte
}

// GenesisConfig holds the proposals to create at genesis, in order
type GenesisConfig struct {
	Proposals []GenesisProposal
}

type genesisConfigYaml struct {
	Proposals []struct {
		Proposer    string `yaml:"proposer"`
		Description string `yaml:"description"`
	} `yaml:"proposals"`
}

// LoadGenesisConfig reads a genesis config from a YAML file of the form:
//
//	proposals:
//	  - proposer: <hex account id>
//	    description: <text>
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading genesis file: %w", err)
	}
	return ParseGenesisConfig(buf)
}

// ParseGenesisConfig decodes a genesis config from YAML
func ParseGenesisConfig(data []byte) (*GenesisConfig, error) {
	var tmp genesisConfigYaml
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("error parsing genesis config: %w", err)
	}
	ret := &GenesisConfig{
		Proposals: make([]GenesisProposal, 0, len(tmp.Proposals)),
	}
	for i, p := range tmp.Proposals {
		proposer, err := ParseAccountId(p.Proposer)
		if err != nil {
			return nil, fmt.Errorf("genesis proposal %d: %w", i, err)
		}
		ret.Proposals = append(
			ret.Proposals,
			GenesisProposal{
				Proposer:    proposer,
				Description: []byte(p.Description),
			},
		)
	}
	return ret, nil
}

// BuildGenesis seeds the store with the configured proposals using the same
// rules as Propose. Every description is checked before anything is
// written; a description over the bound is a fatal configuration error and
// leaves the store untouched.
func (e *Engine) BuildGenesis(env Env, cfg *GenesisConfig) error {
	if cfg == nil {
		return nil
	}
	for i, p := range cfg.Proposals {
		if err := e.params.checkDescription(p.Description); err != nil {
			return fmt.Errorf(
				"%w: proposal %d has %d bytes",
				ErrGenesisDescriptionTooLong,
				i,
				len(p.Description),
			)
		}
	}
	for _, p := range cfg.Proposals {
		id, err := e.createProposal(env, p.Proposer, p.Description)
		if err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
		e.logger.Debug(
			"genesis proposal created",
			"component", "governance",
			"proposal_id", id,
			"proposer", p.Proposer.String(),
		)
	}
	return nil
}
