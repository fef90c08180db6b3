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

package mysql

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin/metadata/internal/gormstore"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mysqlErrUnknownDatabase is the server error returned when the configured
// database does not exist
const mysqlErrUnknownDatabase = 1049

// MetadataStoreMysql stores the proposal and vote index in MySQL
type MetadataStoreMysql struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger

	host     string
	port     uint
	user     string
	password string
	database string
	sslMode  string
	timeZone string
	dsn      string // Data source name (MySQL connection string)
}

// New creates a new database
func New(
	host string,
	port uint,
	user string,
	password string,
	database string,
	sslMode string,
	timeZone string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreMysql, error) {
	return NewWithOptions(
		WithHost(host),
		WithPort(port),
		WithUser(user),
		WithPassword(password),
		WithDatabase(database),
		WithSSLMode(sslMode),
		WithTimeZone(timeZone),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new database with options
func NewWithOptions(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	db := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(db)
	}
	// Set defaults after options are applied (no side effects)
	if db.host == "" {
		db.host = "localhost"
	}
	if db.port == 0 {
		db.port = 3306
	}
	if db.user == "" {
		db.user = "root"
	}
	if db.database == "" {
		db.database = "ballot"
	}
	if db.timeZone == "" {
		db.timeZone = "UTC"
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	db.Store = gormstore.New(db.logger)
	// Note: Database initialization happens in Start()
	return db, nil
}

// buildDSN returns the DSN to connect with and the database name it selects
func (d *MetadataStoreMysql) buildDSN() (string, string) {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		dbName, _ := parseMysqlDatabaseFromDSN(dsn)
		return dsn, dbName
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = d.host + ":" + strconv.FormatUint(uint64(d.port), 10)
	cfg.DBName = d.database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	if d.timeZone != "" {
		loc, err := time.LoadLocation(d.timeZone)
		if err != nil {
			d.logger.Warn(
				"unknown mysql time zone, using UTC",
				"component", "database",
				"timezone", d.timeZone,
			)
			loc = time.UTC
		}
		cfg.Loc = loc
	}
	if d.sslMode != "" {
		cfg.TLSConfig = d.sslMode
	}
	return cfg.FormatDSN(), d.database
}

func (d *MetadataStoreMysql) open(dsn string) (*gorm.DB, error) {
	return gorm.Open(
		gormmysql.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	dsn, dbName := d.buildDSN()
	metadataDb, err := d.open(dsn)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrUnknownDatabase {
			return err
		}
		if createErr := d.ensureDatabaseExists(dsn, dbName); createErr != nil {
			return errors.Join(err, createErr)
		}
		metadataDb, err = d.open(dsn)
		if err != nil {
			return err
		}
	}
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"host", d.host,
		"port", d.port,
		"database", dbName,
	)
	// Configure connection pool
	sqlDB, err := metadataDb.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := d.Open(metadataDb); err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.RegisterMetrics(d.promRegistry, "mysql")
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

func (d *MetadataStoreMysql) ensureDatabaseExists(
	dsn string,
	dbName string,
) error {
	if dbName == "" {
		return errors.New("no database name in DSN")
	}
	adminDsn, ok := stripDatabaseFromDSN(dsn)
	if !ok {
		return errors.New("cannot determine server DSN")
	}
	adminDb, err := d.open(adminDsn)
	if err != nil {
		return err
	}
	sqlAdminDb, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlAdminDb.Close()
	d.logger.Info(
		"creating mysql database",
		"component", "database",
		"database", dbName,
	)
	return adminDb.Exec(
		fmt.Sprintf(
			"CREATE DATABASE IF NOT EXISTS `%s`",
			strings.ReplaceAll(dbName, "`", "``"),
		),
	).Error
}

func parseMysqlDatabaseFromDSN(dsn string) (string, bool) {
	base := dsn
	if idx := strings.Index(base, "?"); idx >= 0 {
		base = base[:idx]
	}
	slash := strings.LastIndex(base, "/")
	if slash < 0 || slash == len(base)-1 {
		return "", false
	}
	return base[slash+1:], true
}

func stripDatabaseFromDSN(dsn string) (string, bool) {
	base := dsn
	params := ""
	if idx := strings.Index(dsn, "?"); idx >= 0 {
		base = dsn[:idx]
		params = dsn[idx+1:]
	}
	slash := strings.LastIndex(base, "/")
	if slash < 0 {
		return "", false
	}
	base = base[:slash+1]
	if params == "" {
		return base, true
	}
	return base + "?" + params, true
}
