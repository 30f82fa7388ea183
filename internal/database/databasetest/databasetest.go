// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/config"
	"github.com/mrcoldpotato/talentflow-v2/internal/database"
)

// Open returns a migrated SQLite database living in t's temp dir.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "talentflow.db"),
	}
	db, err := database.Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
