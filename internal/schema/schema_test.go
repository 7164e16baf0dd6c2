package schema_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/numeral/internal/schema"
	"github.com/JaimeStill/numeral/pkg/database"
)

func memoryDB(t *testing.T) database.System {
	t.Helper()

	cfg := database.Config{ConnectionString: "sqlite::memory:"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	db, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Connection().Close() })
	return db
}

func TestUpSQLite(t *testing.T) {
	db := memoryDB(t)

	for range 2 {
		version, err := schema.Up(db.Connection(), db.Dialect())
		if err != nil {
			t.Fatalf("Up() error = %v", err)
		}
		if version != 1 {
			t.Errorf("version = %d, want 1", version)
		}
	}

	var name string
	err := db.Connection().
		QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'submissions'").
		Scan(&name)
	if err != nil {
		t.Fatalf("submissions table missing: %v", err)
	}
}

func TestLabelConstraint(t *testing.T) {
	db := memoryDB(t)
	if _, err := schema.Up(db.Connection(), db.Dialect()); err != nil {
		t.Fatal(err)
	}

	insert := "INSERT INTO submissions (id, submitted_at, image, label, predictions) VALUES ($1, CURRENT_TIMESTAMP, x'00', $2, '[]')"

	tests := []struct {
		label   int
		wantErr bool
	}{
		{0, false},
		{9, false},
		{10, true},
		{-1, true},
	}

	for i, tt := range tests {
		_, err := db.Connection().Exec(insert, i, tt.label)
		if (err != nil) != tt.wantErr {
			t.Errorf("label %d: error = %v, wantErr %v", tt.label, err, tt.wantErr)
		}
	}
}

func TestSource(t *testing.T) {
	for _, d := range []database.Dialect{database.Postgres, database.SQLite} {
		t.Run(string(d), func(t *testing.T) {
			src, err := schema.Source(d)
			if err != nil {
				t.Fatalf("Source() error = %v", err)
			}
			defer src.Close()

			first, err := src.First()
			if err != nil {
				t.Fatalf("First() error = %v", err)
			}
			if first != 1 {
				t.Errorf("first version = %d, want 1", first)
			}
		})
	}

	if _, err := schema.Source("mysql"); !errors.Is(err, database.ErrUnsupportedDialect) {
		t.Errorf("Source(mysql) error = %v, want ErrUnsupportedDialect", err)
	}
}
