// Package store persists the product mirror with gorm. SQLite (pure Go) is the
// default backend; PostgreSQL is available for shared deployments.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and tunes the backing database.
type Config struct {
	Driver string
	DSN    string

	// MaxOpenConns caps the pool; zero leaves the driver default.
	MaxOpenConns int

	Logger *zerolog.Logger
}

// Store is the gorm-backed mirror. Every method starts a fresh session bound to
// the caller's context, so the worker and readers never share a handle.
type Store struct {
	db     *gorm.DB
	driver string
}

// Open connects to the configured database and migrates the products table.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := cfg.DSN
	if dsn == "" && driver == DriverSQLite {
		dsn = constants.DefaultDatabaseFile
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.NewConfigError("database", fmt.Sprintf("unsupported driver %q", cfg.Driver), nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.WrapStore("open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WrapStore("open", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, driver: driver}
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Debug().Str("driver", driver).Msg("Mirror store opened")
	return s, nil
}

// sqliteDSN appends the WAL and busy timeout pragmas. The driver applies
// DSN pragmas to every connection it opens, so each pooled connection waits
// on a locked database instead of failing.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		dsn, sep, constants.SQLiteBusyTimeout.Milliseconds())
}

// Migrate creates or updates the products table.
func (s *Store) Migrate(ctx context.Context) error {
	return errors.WrapStore("migrate", s.session(ctx).AutoMigrate(&catalog.Product{}))
}

// Driver returns the active driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.WrapStore("close", err)
	}
	return errors.WrapStore("close", sqlDB.Close())
}

func (s *Store) session(ctx context.Context) *gorm.DB {
	return s.db.Session(&gorm.Session{NewDB: true, Context: ctx})
}
