package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/numeral/internal/schema"
	"github.com/JaimeStill/numeral/pkg/database"
)

const (
	envDSN     = "NUMERAL_DB_CONNECTION_STRING"
	defaultDSN = "sqlite://numeral.db"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (postgres:// or sqlite://)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *dsn == "" {
		*dsn = os.Getenv(envDSN)
	}
	if *dsn == "" {
		*dsn = defaultDSN
	}

	dialect, path, err := database.ParseConnectionString(*dsn)
	if err != nil {
		log.Fatalf("invalid connection string: %v", err)
	}
	if dialect == database.SQLite && database.InMemory(path) {
		log.Fatal("in-memory databases are migrated by the server at startup (database.auto_migrate)")
	}

	source, err := schema.Source(dialect)
	if err != nil {
		log.Fatalf("failed to create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(dialect, *dsn, path))
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Printf("%s migrations applied successfully\n", dialect)
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Printf("%s migrations reverted successfully\n", dialect)
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate -dsn <connection-string> [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// migrationURL rewrites SQLite connection strings into the sqlite:// form
// the migrate driver registry dispatches on.
func migrationURL(dialect database.Dialect, dsn, path string) string {
	if dialect == database.SQLite {
		return "sqlite://" + path
	}
	return dsn
}
