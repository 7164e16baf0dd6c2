// Package schema embeds the submission store migrations for each SQL dialect
// and applies them with golang-migrate.
package schema

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	mdb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/JaimeStill/numeral/pkg/database"
	"github.com/JaimeStill/numeral/pkg/lifecycle"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrations embed.FS

// Source returns the migration files for the dialect.
func Source(d database.Dialect) (source.Driver, error) {
	switch d {
	case database.Postgres, database.SQLite:
		src, err := iofs.New(migrations, string(d))
		if err != nil {
			return nil, fmt.Errorf("migration source %s: %w", d, err)
		}
		return src, nil
	}
	return nil, fmt.Errorf("%w: %s", database.ErrUnsupportedDialect, d)
}

// Up applies all pending migrations to an open connection pool.
// The pool is left open.
func Up(db *sql.DB, d database.Dialect) (uint, error) {
	src, err := Source(d)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	var driver mdb.Driver
	switch d {
	case database.Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case database.SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}

	// Closing the migrator would close db; only the source is released.
	m, err := migrate.NewWithInstance("iofs", src, string(d), driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}

// Start registers a startup hook that migrates the database to the latest version.
func Start(lc *lifecycle.Coordinator, db database.System, logger *slog.Logger) {
	logger = logger.With("system", "schema")

	lc.OnStartup(func() error {
		version, err := Up(db.Connection(), db.Dialect())
		if err != nil {
			logger.Error("schema migration failed", "error", err)
			return err
		}
		logger.Info("schema ready", "version", version)
		return nil
	})
}
