// Package testutil holds shared test fixtures.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mkral/tempmail/internal/store"
)

// NewTestStore opens a migrated SQLiteStore backed by a throwaway
// database file. A file (rather than :memory:) keeps the behavior honest
// under connection pooling, where each in-memory connection would see
// its own empty database. The store is closed when the test finishes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tempmail.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}
