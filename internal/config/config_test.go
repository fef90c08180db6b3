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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/governance"
)

// isolateHome keeps LoadConfig from picking up a config file in the real
// home directory
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "ballot.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return tmpFile
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	isolateHome(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	expected := &Config{
		DatabasePath:    ".ballot",
		BindAddr:        "0.0.0.0",
		MetricsPort:     9464,
		MempoolCapacity: 1024,
		MaxBlockCalls:   256,
		BlockInterval:   "6s",
		ShutdownTimeout: "30s",
		BlobPlugin:      "badger",
		MetadataPlugin:  "sqlite",
		Governance: governance.Params{
			MaxDescriptionLength: 256,
			DefaultVotingPeriod:  100,
			MaxProposalsPerBlock: 10,
		},
	}
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
	if GetConfig() != cfg {
		t.Errorf("expected GetConfig to return the loaded config")
	}
}

func TestLoad_CompareFullStruct(t *testing.T) {
	isolateHome(t)
	tmpFile := writeConfigFile(t, `
databasePath: "/var/lib/ballot"
bindAddr: "127.0.0.1"
metricsPort: 8088
mempoolCapacity: 64
maxBlockCalls: 0
genesisFile: "genesis.yaml"
blockInterval: "2s"
shutdownTimeout: "5s"
tracing: true
tracingStdout: true
governance:
  maxDescriptionLength: 128
  defaultVotingPeriod: 20
  maxProposalsPerBlock: 0
`)
	expected := &Config{
		DatabasePath:    "/var/lib/ballot",
		BindAddr:        "127.0.0.1",
		MetricsPort:     8088,
		MempoolCapacity: 64,
		MaxBlockCalls:   0,
		GenesisFile:     "genesis.yaml",
		BlockInterval:   "2s",
		ShutdownTimeout: "5s",
		Tracing:         true,
		TracingStdout:   true,
		BlobPlugin:      "badger",
		MetadataPlugin:  "sqlite",
		Governance: governance.Params{
			MaxDescriptionLength: 128,
			DefaultVotingPeriod:  20,
			MaxProposalsPerBlock: 0,
		},
	}
	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_ConfigSection(t *testing.T) {
	isolateHome(t)
	tmpFile := writeConfigFile(t, `
config:
  databasePath: "/data"
  governance:
    defaultVotingPeriod: 7
database:
  blob:
    plugin: badger
  metadata:
    plugin: sqlite
`)
	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DatabasePath != "/data" {
		t.Errorf("expected databasePath /data, got: %s", cfg.DatabasePath)
	}
	if cfg.Governance.DefaultVotingPeriod != 7 {
		t.Errorf("expected voting period 7, got: %d", cfg.Governance.DefaultVotingPeriod)
	}
	// Unset governance fields keep their defaults
	if cfg.Governance.MaxProposalsPerBlock != governance.DefaultMaxProposalsPerBlock {
		t.Errorf("expected default sweep cap, got: %d", cfg.Governance.MaxProposalsPerBlock)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateHome(t)
	tmpFile := writeConfigFile(t, `
metricsPort: 8088
governance:
  defaultVotingPeriod: 20
`)
	t.Setenv("BALLOT_METRICS_PORT", "9999")
	t.Setenv("BALLOT_DATABASE_PATH", "/env/path")
	t.Setenv("BALLOT_DATABASE_METADATA_PLUGIN", "postgres")
	t.Setenv("BALLOT_GOVERNANCE_DEFAULT_VOTING_PERIOD", "50")
	t.Setenv("BALLOT_GOVERNANCE_MAX_PROPOSALS_PER_BLOCK", "3")
	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.MetricsPort != 9999 {
		t.Errorf("expected metrics port 9999, got: %d", cfg.MetricsPort)
	}
	if cfg.DatabasePath != "/env/path" {
		t.Errorf("expected database path /env/path, got: %s", cfg.DatabasePath)
	}
	if cfg.MetadataPlugin != "postgres" {
		t.Errorf("expected metadata plugin postgres, got: %s", cfg.MetadataPlugin)
	}
	if cfg.Governance.DefaultVotingPeriod != 50 {
		t.Errorf("expected voting period 50, got: %d", cfg.Governance.DefaultVotingPeriod)
	}
	if cfg.Governance.MaxProposalsPerBlock != 3 {
		t.Errorf("expected sweep cap 3, got: %d", cfg.Governance.MaxProposalsPerBlock)
	}
}

func TestLoad_InvalidGovernance(t *testing.T) {
	isolateHome(t)
	tmpFile := writeConfigFile(t, `
governance:
  maxDescriptionLength: 1024
`)
	_, err := LoadConfig(tmpFile)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got: %v", err)
	}
	if !errors.Is(err, governance.ErrInvalidParams) {
		t.Fatalf("expected governance.ErrInvalidParams, got: %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	isolateHome(t)
	testDefs := []struct {
		name    string
		content string
	}{
		{name: "unparsable interval", content: `blockInterval: "soon"`},
		{name: "zero interval", content: `blockInterval: "0s"`},
		{name: "unparsable timeout", content: `shutdownTimeout: "later"`},
		{name: "zero mempool capacity", content: `mempoolCapacity: 0`},
		{name: "negative block calls", content: `maxBlockCalls: -1`},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, testDef.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolateHome(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	interval, err := cfg.BlockIntervalDuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval != 6*time.Second {
		t.Errorf("expected 6s, got: %s", interval)
	}
	cfg.ShutdownTimeout = ""
	timeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeout != 30*time.Second {
		t.Errorf("expected 30s, got: %s", timeout)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil config from empty context")
	}
	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), cfg)
	if FromContext(ctx) != cfg {
		t.Fatal("expected config from context")
	}
}
