package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mrcoldpotato/talentflow-v2/internal/config"
	"github.com/mrcoldpotato/talentflow-v2/internal/database/migrations"
)

const migrationTable = "schema_migrations"

func init() {
	// modernc registers as "sqlite", which sqlx does not know; it takes `?`.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// One writer at a time; SQLite serializes writes anyway.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}
	log.Info("Database connection established successfully.", zap.String("driver", cfg.Driver))

	applied, err := Migrate(ctx, db, cfg.Driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.", zap.Strings("applied", applied))
	return db, nil
}

// Migrate executes the embedded migrations for driver at most once per file
// and returns the names it applied.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return nil, fmt.Errorf("ensure migration table: %w", err)
	}

	var applied []string
	for _, file := range files {
		done, err := isApplied(ctx, db, file)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrations.FS, path.Join(driver, file))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin migration transaction %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("exec migration %s: %w", file, err)
		}
		record := tx.Rebind(fmt.Sprintf("INSERT INTO %s (name, applied_at) VALUES (?, ?)", migrationTable))
		if _, err := tx.ExecContext(ctx, record, file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}

	return applied, nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

func isApplied(ctx context.Context, db *sqlx.DB, name string) (bool, error) {
	var count int
	query := db.Rebind("SELECT COUNT(*) FROM " + migrationTable + " WHERE name = ?")
	if err := db.GetContext(ctx, &count, query, name); err != nil {
		return false, err
	}
	return count > 0, nil
}
