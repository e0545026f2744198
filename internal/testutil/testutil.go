// Package testutil provides shared test helpers for setting up installation
// roots, legacy configuration files, and history databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/srcupdate/internal/history"
)

// TestDB creates a temporary run-history database that is automatically
// cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "srcupdate-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteConf writes a legacy key/value configuration file into a temp
// directory and returns its path.
func WriteConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "srcupdate.conf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
