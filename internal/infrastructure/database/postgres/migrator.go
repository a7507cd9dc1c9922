package postgres

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// sqlOpen is a variable to allow mocking in tests.
var sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// Migrator applies the embedded schema migrations.  It runs over database/sql
// with lib/pq because golang-migrate's postgres driver requires a *sql.DB.
type Migrator struct {
	m      *migrate.Migrate
	db     *sql.DB
	logger logging.Logger
}

// NewMigrator opens a dedicated connection for schema changes.
func NewMigrator(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Migrator, error) {
	db, err := sqlOpen("postgres", buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open migration connection")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	m, err := newMigrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Migrator{m: m, db: db, logger: log}, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to load embedded migrations")
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create migrate instance")
	}
	return m, nil
}

// Up applies every pending migration.  No pending migrations is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		version, _, _ := mg.m.Version()
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to run migrations (current version: %d)", version))
	}
	mg.logVersion("Database migrations applied")
	return nil
}

// Down rolls back steps migrations.  steps must be positive.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "steps must be greater than 0, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeBadRequest, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to roll back %d step(s)", steps))
	}
	mg.logVersion("Database migrations rolled back")
	return nil
}

// Version reports the applied version and whether the last run left the
// schema dirty.  A fresh database reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return version, dirty, nil
}

// Force marks version as applied without running it.  Recovery from a dirty
// state only.
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, fmt.Sprintf("failed to force version %d", version))
	}
	mg.logger.Warn("Forced migration version", logging.Int("version", version))
	return nil
}

// Close releases the migration source, driver and connection.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	closeErr := mg.db.Close()
	return stderrors.Join(srcErr, dbErr, closeErr)
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.logger.Warn("Failed to get migration version", logging.Err(err))
		return
	}
	mg.logger.Info(msg,
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
}
