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

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/blinklabs-io/ballot/internal/node"
	"github.com/blinklabs-io/ballot/ledger"
	"github.com/spf13/cobra"
)

var callFlags = struct {
	account string
}{}

func addAccountFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&callFlags.account,
		"account",
		"a",
		"",
		"hex-encoded signing account, unsigned when empty",
	)
}

func callOrigin() (governance.Origin, error) {
	if callFlags.account == "" {
		return governance.Unsigned(), nil
	}
	account, err := governance.ParseAccountId(callFlags.account)
	if err != nil {
		return governance.Origin{}, err
	}
	return governance.Signed(account), nil
}

func parseProposalId(arg string) (governance.ProposalId, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q: %w", arg, err)
	}
	return governance.ProposalId(id), nil
}

// applyBlock opens the ledger and applies a single block containing the
// given calls
func applyBlock(cmd *cobra.Command, calls ...ledger.Call) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger := commonRun()
	l, err := node.OpenLedger(cfg, logger)
	if err != nil {
		return err
	}
	defer l.Close() //nolint:errcheck
	res, err := l.ApplyBlock(cmd.Context(), calls)
	if err != nil {
		return err
	}
	printBlockResult(res)
	if res.FailedCalls() > 0 {
		// The block was still applied
		return fmt.Errorf("%d of %d calls failed", res.FailedCalls(), len(res.Calls))
	}
	return nil
}

func printBlockResult(res *ledger.BlockResult) {
	fmt.Printf(
		"block %d applied: %d calls, %d closed at initialization, weight %d/%d\n",
		res.BlockNumber,
		len(res.Calls),
		res.SweepClosures,
		res.Weight.RefTime,
		res.Weight.ProofSize,
	)
	for _, c := range res.Calls {
		if c.Failed() {
			fmt.Printf("  %-8s  failed: %s\n", c.Call.Type, c.Err)
			continue
		}
		fmt.Printf("  %-8s  ok: proposal %d\n", c.Call.Type, c.ProposalId)
	}
	for _, evt := range res.Events {
		fmt.Printf("  event %s: %+v\n", evt.Type, evt.Data)
	}
}

func proposeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose <description>",
		Short: "Submit a new proposal in its own block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := callOrigin()
			if err != nil {
				return err
			}
			return applyBlock(cmd, ledger.ProposeCall(origin, []byte(args[0])))
		},
	}
	addAccountFlag(cmd)
	return cmd
}

func voteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote <proposal-id> <for|against>",
		Short: "Vote on a proposal in its own block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := callOrigin()
			if err != nil {
				return err
			}
			id, err := parseProposalId(args[0])
			if err != nil {
				return err
			}
			var choice bool
			switch args[1] {
			case "for", "yes", "aye":
				choice = true
			case "against", "no", "nay":
				choice = false
			default:
				return fmt.Errorf("invalid vote %q: expected for or against", args[1])
			}
			return applyBlock(cmd, ledger.VoteCall(origin, id, choice))
		},
	}
	addAccountFlag(cmd)
	return cmd
}

func closeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <proposal-id>",
		Short: "Close a proposal whose voting period has ended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := callOrigin()
			if err != nil {
				return err
			}
			id, err := parseProposalId(args[0])
			if err != nil {
				return err
			}
			return applyBlock(cmd, ledger.CloseCall(origin, id))
		},
	}
	addAccountFlag(cmd)
	return cmd
}

func advanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance [blocks]",
		Short: "Apply empty blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := uint64(1)
			if len(args) == 1 {
				var err error
				count, err = strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid block count %q: %w", args[0], err)
				}
			}
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun()
			l, err := node.OpenLedger(cfg, logger)
			if err != nil {
				return err
			}
			defer l.Close() //nolint:errcheck
			for range count {
				res, err := l.ApplyBlock(cmd.Context(), nil)
				if err != nil {
					return err
				}
				printBlockResult(res)
			}
			return nil
		},
	}
	return cmd
}

func genesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis [genesis-file]",
		Short: "Seed an empty ledger with proposals (path via arg or genesisFile config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			// CLI argument takes priority over config
			genesisFile := cfg.GenesisFile
			if len(args) == 1 {
				genesisFile = args[0]
			}
			if genesisFile == "" {
				return errors.New(
					"path to genesis file required (via argument or genesisFile config)",
				)
			}
			genesisCfg, err := governance.LoadGenesisConfig(genesisFile)
			if err != nil {
				return err
			}
			logger := commonRun()
			l, err := node.OpenLedger(cfg, logger)
			if err != nil {
				return err
			}
			defer l.Close() //nolint:errcheck
			if err := l.Genesis(cmd.Context(), genesisCfg); err != nil {
				return err
			}
			fmt.Printf("seeded %d genesis proposals\n", len(genesisCfg.Proposals))
			return nil
		},
	}
	return cmd
}
