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
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/blinklabs-io/ballot/internal/node"
	"github.com/spf13/cobra"
)

func openLedger(cmd *cobra.Command) (*node.Ledger, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return node.OpenLedger(cfg, commonRun())
}

func shortHex(b []byte) string {
	s := hex.EncodeToString(b)
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal <proposal-id>",
		Short: "Show a proposal and its tally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalId(args[0])
			if err != nil {
				return err
			}
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close() //nolint:errcheck
			p, err := l.Proposal(id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: %d", governance.ErrProposalNotFound, id)
			}
			tally, err := l.Tally(id)
			if err != nil {
				return err
			}
			fmt.Printf("Proposal:     %d\n", id)
			fmt.Printf("Proposer:     %s\n", p.Proposer)
			fmt.Printf("Description:  %s\n", p.Description)
			fmt.Printf("Voting:       blocks %d to %d\n", p.StartBlock, p.EndBlock)
			fmt.Printf("Closed:       %t\n", p.IsClosed)
			if tally != nil {
				fmt.Printf(
					"Tally:        %d for, %d against\n",
					tally.ForVotes,
					tally.AgainstVotes,
				)
			}
			return nil
		},
	}
	return cmd
}

func proposalsCommand() *cobra.Command {
	var (
		openOnly bool
		proposer string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List indexed proposals",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.ProposalFilter{
				OpenOnly: openOnly,
				Limit:    limit,
			}
			if proposer != "" {
				account, err := governance.ParseAccountId(proposer)
				if err != nil {
					return err
				}
				filter.Proposer = account.Bytes()
			}
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close() //nolint:errcheck
			proposals, err := l.Proposals(filter)
			if err != nil {
				return fmt.Errorf("listing proposals: %w", err)
			}
			if len(proposals) == 0 {
				fmt.Println("No proposals found.")
				return nil
			}
			fmt.Printf(
				"%-8s  %-16s  %-10s  %-10s  %-6s  %6s  %7s  %s\n",
				"ID",
				"PROPOSER",
				"START",
				"END",
				"STATE",
				"FOR",
				"AGAINST",
				"DESCRIPTION",
			)
			for _, p := range proposals {
				state := "open"
				if p.IsClosed {
					state = "closed"
				}
				desc := string(p.Description)
				if len(desc) > 40 {
					desc = desc[:40]
				}
				fmt.Printf(
					"%-8d  %-16s  %-10d  %-10d  %-6s  %6d  %7d  %s\n",
					p.ProposalId,
					shortHex(p.Proposer),
					p.StartBlock,
					p.EndBlock,
					state,
					p.ForVotes,
					p.AgainstVotes,
					desc,
				)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "only list open proposals")
	cmd.Flags().StringVar(&proposer, "proposer", "", "only list proposals by this hex-encoded account")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of proposals to list, 0 for all")
	return cmd
}

func votesCommand() *cobra.Command {
	var voter string
	cmd := &cobra.Command{
		Use:   "votes [proposal-id]",
		Short: "List indexed votes on a proposal or by a voter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (voter != "") {
				return errors.New("specify either a proposal id or --voter")
			}
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close() //nolint:errcheck
			var votes []models.Vote
			if len(args) == 1 {
				id, err := parseProposalId(args[0])
				if err != nil {
					return err
				}
				votes, err = l.Votes(id)
				if err != nil {
					return fmt.Errorf("listing votes: %w", err)
				}
			} else {
				account, err := governance.ParseAccountId(voter)
				if err != nil {
					return err
				}
				votes, err = l.VotesByVoter(account)
				if err != nil {
					return fmt.Errorf("listing votes: %w", err)
				}
			}
			if len(votes) == 0 {
				fmt.Println("No votes found.")
				return nil
			}
			fmt.Printf("%-8s  %-64s  %-7s  %s\n", "ID", "VOTER", "VOTE", "BLOCK")
			for _, v := range votes {
				choice := "against"
				if v.Vote {
					choice = "for"
				}
				fmt.Printf(
					"%-8d  %-64s  %-7s  %d\n",
					v.ProposalId,
					hex.EncodeToString(v.Voter),
					choice,
					v.Block,
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&voter, "voter", "", "list votes cast by this hex-encoded account")
	return cmd
}
