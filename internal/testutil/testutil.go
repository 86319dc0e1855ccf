// Package testutil provides shared test helpers for stores and services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "taxon-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestService returns a catalog service over a fresh SQLite store.
func TestService(t *testing.T, opts ...catalog.ServiceOption) *catalog.Service {
	t.Helper()
	base := []catalog.ServiceOption{catalog.WithLogger(DiscardLogger())}
	return catalog.NewService(TestDB(t), append(base, opts...)...)
}
