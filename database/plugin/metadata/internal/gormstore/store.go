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


// Package gormstore holds the proposal and vote index shared by the
// relational metadata backends. Each backend opens its own *gorm.DB and
// hands it to Open.
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

var ErrNotOpen = errors.New("metadata store is not open")

// Store implements the metadata index queries over a GORM handle
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
	mutex  sync.RWMutex
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{logger: logger}
}

// Open attaches the GORM handle, enables tracing and creates the table
// schemas
func (s *Store) Open(db *gorm.DB) error {
	// Configure tracing for GORM
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}
	s.mutex.Lock()
	s.db = db
	s.mutex.Unlock()
	return nil
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.db
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	s.mutex.Lock()
	db := s.db
	s.db = nil
	s.mutex.Unlock()
	if db == nil {
		return nil
	}
	// get DB handle from gorm.DB
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates database schema for the given models
func (s *Store) AutoMigrate(dst ...any) error {
	db := s.DB()
	if db == nil {
		return ErrNotOpen
	}
	return db.AutoMigrate(dst...)
}

// Transaction begins a new database transaction. A failure to begin is
// reported by the first call on the returned handle.
func (s *Store) Transaction() types.Txn {
	db := s.DB()
	if db == nil {
		return newFailedTxn(ErrNotOpen)
	}
	tx := db.Begin()
	if tx.Error != nil {
		s.logger.Error(
			"failed to begin transaction",
			"component", "database",
			"error", tx.Error,
		)
		return newFailedTxn(tx.Error)
	}
	return newTxn(tx)
}

// resolveDB returns the *gorm.DB for the given transaction, or the store
// handle if txn is nil
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		db := s.DB()
		if db == nil {
			return nil, ErrNotOpen
		}
		return db, nil
	}
	gtx, ok := txn.(*gormTxn)
	if !ok || gtx == nil {
		return nil, types.ErrTxnWrongType
	}
	if gtx.beginErr != nil {
		return nil, gtx.beginErr
	}
	if gtx.finished {
		return nil, types.ErrTxnFinished
	}
	return gtx.db, nil
}
