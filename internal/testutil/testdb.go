package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/balkashynov/deepwork/internal/config"
	"github.com/balkashynov/deepwork/internal/db"
)

// NewTestStore opens a fresh SQLite store in a temp directory with all
// migrations applied. The store is closed when the test completes.
func NewTestStore(t *testing.T) *db.Store {
	t.Helper()
	return OpenTestStore(t, filepath.Join(t.TempDir(), "deepwork.db"))
}

// OpenTestStore opens (or reopens) a SQLite store at path.
func OpenTestStore(t *testing.T, path string) *db.Store {
	t.Helper()
	store, err := db.Open(config.DBConfig{
		Driver:  config.DriverSQLite,
		Path:    path,
		Timeout: 5 * time.Second,
	}, false)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
