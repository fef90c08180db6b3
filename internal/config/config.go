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
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "ballot.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultBlockInterval   = "6s"
	DefaultMempoolCapacity = 1024
	DefaultMaxBlockCalls   = 256
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

type tempConfig struct {
	Config   yaml.Node                 `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin  string            `yaml:"metadataPlugin"  envconfig:"DATABASE_METADATA_PLUGIN"`
	BlobPlugin      string            `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	DatabasePath    string            `yaml:"databasePath"                                      split_words:"true"`
	BindAddr        string            `yaml:"bindAddr"                                          split_words:"true"`
	GenesisFile     string            `yaml:"genesisFile"                                       split_words:"true"`
	BlockInterval   string            `yaml:"blockInterval"                                     split_words:"true"`
	ShutdownTimeout string            `yaml:"shutdownTimeout"                                   split_words:"true"`
	MetricsPort     uint              `yaml:"metricsPort"                                       split_words:"true"`
	MempoolCapacity int               `yaml:"mempoolCapacity"                                   split_words:"true"`
	MaxBlockCalls   int               `yaml:"maxBlockCalls"                                     split_words:"true"`
	Tracing         bool              `yaml:"tracing"`
	TracingStdout   bool              `yaml:"tracingStdout"                                     split_words:"true"`
	Governance      governance.Params `yaml:"governance"`
}

// DefaultConfig returns a config populated with the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    ".ballot",
		BindAddr:        "0.0.0.0",
		MetricsPort:     9464,
		MempoolCapacity: DefaultMempoolCapacity,
		MaxBlockCalls:   DefaultMaxBlockCalls,
		BlockInterval:   DefaultBlockInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		Governance:      governance.DefaultParams(),
	}
}

var globalConfig = DefaultConfig()

// LoadConfig builds the config from the defaults, the YAML config file and
// the environment, in that order. With no file given, ~/.ballot/ballot.yaml
// and then /etc/ballot/ballot.yaml are tried.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.ballot/ballot.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".ballot", "ballot.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/ballot/ballot.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/ballot/ballot.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		if err := loadConfigFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	err := envconfig.Process("ballot", cfg)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func loadConfigFile(configFile string, cfg *Config) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	err = yaml.Unmarshal(buf, &tempCfg)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	// If config section exists, use it for main config
	if !tempCfg.Config.IsZero() {
		// Decode over the existing defaults so unset values are kept
		if err := tempCfg.Config.Decode(cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// Otherwise unmarshal the whole file as main config
		err = yaml.Unmarshal(buf, cfg)
		if err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process plugin configurations
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	// Handle database section if present
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			if name := extractPluginName(tempCfg.Database.Blob); name != "" {
				cfg.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", tempCfg.Database.Blob)
		}
		if tempCfg.Database.Metadata != nil {
			if name := extractPluginName(tempCfg.Database.Metadata); name != "" {
				cfg.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", tempCfg.Database.Metadata)
		}
	}
	if len(pluginConfig) > 0 {
		err = plugin.ProcessConfig(pluginConfig)
		if err != nil {
			return fmt.Errorf(
				"error processing plugin config: %w",
				err,
			)
		}
	}
	return nil
}

// extractPluginName removes and returns the "plugin" entry of a database
// section
func extractPluginName(section map[string]any) string {
	pluginVal, exists := section["plugin"]
	if !exists {
		return ""
	}
	pluginName, ok := pluginVal.(string)
	if !ok {
		return ""
	}
	delete(section, "plugin")
	return pluginName
}

func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	section map[string]any,
) {
	typeConfig := make(map[string]map[string]any)
	for k, v := range section {
		if val, ok := v.(map[string]any); ok {
			typeConfig[k] = val
		} else if val, ok := v.(map[any]any); ok {
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			typeConfig[k] = stringAnyMap
		} else {
			// Log skipped non-map config entries
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", pluginType, k, v)
		}
	}
	// Merge with existing config instead of overwriting
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = typeConfig
	} else {
		maps.Copy(pluginConfig[pluginType], typeConfig)
	}
}

// Validate checks the config for values that cannot be used
func (c *Config) Validate() error {
	if err := c.Governance.Validate(); err != nil {
		return fmt.Errorf("%w: governance: %w", ErrInvalidConfig, err)
	}
	interval, err := c.BlockIntervalDuration()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf(
			"%w: block interval must be positive, got %s",
			ErrInvalidConfig,
			c.BlockInterval,
		)
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if c.MempoolCapacity <= 0 {
		return fmt.Errorf(
			"%w: mempool capacity must be positive, got %d",
			ErrInvalidConfig,
			c.MempoolCapacity,
		)
	}
	if c.MaxBlockCalls < 0 {
		return fmt.Errorf(
			"%w: max block calls must not be negative, got %d",
			ErrInvalidConfig,
			c.MaxBlockCalls,
		)
	}
	if c.MetricsPort > 65535 {
		return fmt.Errorf(
			"%w: metrics port %d out of range",
			ErrInvalidConfig,
			c.MetricsPort,
		)
	}
	return nil
}

// BlockIntervalDuration returns the parsed block interval
func (c *Config) BlockIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: block interval: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: shutdown timeout: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

func GetConfig() *Config {
	return globalConfig
}
