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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/plugin/blob"
	"github.com/blinklabs-io/ballot/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"

	// Register storage plugins
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/aws"
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/gcs"
	_ "github.com/blinklabs-io/ballot/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/ballot/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/ballot/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the storage settings for a Database. An empty DataDir keeps
// all state in memory.
type Config struct {
	Logger         *slog.Logger
	PromRegistry   prometheus.Registerer
	DataDir        string
	BlobPlugin     string
	MetadataPlugin string
}

// Database couples the blob store, which holds the authoritative governance
// state, with the metadata store, which holds a queryable index of it
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New creates a new database instance with optional persistence using the
// data directory from the config
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	blobPlugin := cfg.BlobPlugin
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	metadataPlugin := cfg.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	blobDataDir := ""
	metadataDataDir := ""
	if cfg.DataDir != "" {
		blobDataDir = filepath.Join(cfg.DataDir, "blob")
		metadataDataDir = filepath.Join(cfg.DataDir, "metadata")
	}
	// Point the local storage plugins at the data dir. Plugins without a
	// data-dir option ignore this.
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, blobPlugin, "data-dir", blobDataDir); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, metadataPlugin, "data-dir", metadataDataDir); err != nil {
		return nil, err
	}
	plugin.SetLogger(logger)
	plugin.SetPromRegistry(cfg.PromRegistry)
	blobDb, err := blob.New(blobPlugin)
	if err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(metadataPlugin)
	if err != nil {
		_ = blobDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  cfg.DataDir,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, fmt.Errorf("database init: %w", err)
	}
	logger.Debug(
		"database opened",
		"component", "database",
		"blob", blobPlugin,
		"metadata", metadataPlugin,
		"data_dir", cfg.DataDir,
	)
	return db, nil
}
