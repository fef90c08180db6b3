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

package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin/metadata/internal/gormstore"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const DefaultDataDir = ".ballot"

var memoryDbCounter atomic.Uint64

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store
type MetadataStoreSqlite struct {
	*gormstore.Store
	promRegistry   prometheus.Registerer
	logger         *slog.Logger
	timerVacuum    *time.Timer
	timerMutex     sync.Mutex
	vacuumWG       sync.WaitGroup
	dataDir        string
	maxConnections int
	closed         bool
}

// New creates a SQLite metadata store. Uses in-memory database if dataDir is empty.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	return NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a SQLite metadata store with options. The database
// is opened by Start().
func NewWithOptions(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	db := &MetadataStoreSqlite{}
	for _, opt := range opts {
		opt(db)
	}
	if db.maxConnections < 0 {
		return nil, fmt.Errorf(
			"invalid max connections: %d",
			db.maxConnections,
		)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	db.Store = gormstore.New(db.logger)
	return db, nil
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Start() error {
	var dsn string
	if d.dataDir == "" {
		// Use in-memory database when no data directory is specified, useful for testing.
		// Each store gets its own named database so that stores don't see each other.
		dsn = fmt.Sprintf(
			"file:ballot-metadata-%d?mode=memory&cache=shared",
			memoryDbCounter.Add(1),
		)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		metadataDbPath := filepath.Join(
			d.dataDir,
			"metadata.sqlite",
		)
		// WAL journal mode, disable sync on write, increase cache size to 50MB (from 2MB)
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)&_pragma=cache_size(-50000)&_pragma=busy_timeout(5000)"
		dsn = fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts)
	}
	metadataDb, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return err
	}
	sqlDB, err := metadataDb.DB()
	if err != nil {
		return err
	}
	switch {
	case d.dataDir == "":
		// A single connection keeps the in-memory database free of
		// shared-cache table locks
		sqlDB.SetMaxOpenConns(1)
	case d.maxConnections > 0:
		sqlDB.SetMaxOpenConns(d.maxConnections)
	}
	if err := d.Open(metadataDb); err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.RegisterMetrics(d.promRegistry, "sqlite")
	d.timerMutex.Lock()
	d.closed = false
	d.timerMutex.Unlock()
	// Schedule daily database vacuum to free unused space
	d.scheduleDailyVacuum()
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

func (d *MetadataStoreSqlite) runVacuum() error {
	d.timerMutex.Lock()
	if d.dataDir == "" || d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	// Track this vacuum operation while we know the store is open
	d.vacuumWG.Add(1)
	d.timerMutex.Unlock()
	defer d.vacuumWG.Done()

	db := d.DB()
	if db == nil {
		return nil
	}
	return db.Exec("VACUUM").Error
}

// scheduleDailyVacuum schedules a daily vacuum operation
func (d *MetadataStoreSqlite) scheduleDailyVacuum() {
	d.timerMutex.Lock()
	defer d.timerMutex.Unlock()
	if d.closed {
		return
	}
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
	}
	daily := time.Duration(24) * time.Hour
	f := func() {
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
			"component", "database",
		)
		// schedule next run
		defer d.scheduleDailyVacuum()
		if err := d.runVacuum(); err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	}
	d.timerVacuum = time.AfterFunc(daily, f)
}

// Close shuts down the database connection and stops background processes
func (d *MetadataStoreSqlite) Close() error {
	d.timerMutex.Lock()
	d.closed = true
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
		d.timerVacuum = nil
	}
	d.timerMutex.Unlock()
	// Wait for any in-flight vacuum operations to complete
	d.vacuumWG.Wait()
	return d.Store.Close()
}
