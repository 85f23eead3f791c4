package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// MigrateUp applies every embedded migration that is not yet recorded in
// schema_migrations, oldest first.
func MigrateUp(db *sql.DB, log zerolog.Logger) error {
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	versions, err := migrationVersions(".up.sql")
	if err != nil {
		return err
	}
	for _, v := range versions {
		if applied[v] {
			continue
		}
		err := runMigration(db, v+".up.sql",
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			v, time.Now().UTC().Format(sqliteTimeLayout))
		if err != nil {
			return err
		}
		log.Info().Str("version", v).Msg("applied migration")
	}
	return nil
}

// MigrateDown reverts every recorded migration, newest first.
func MigrateDown(db *sql.DB, log zerolog.Logger) error {
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	versions, err := migrationVersions(".down.sql")
	if err != nil {
		return err
	}
	slices.Reverse(versions)
	for _, v := range versions {
		if !applied[v] {
			continue
		}
		if err := runMigration(db, v+".down.sql", "DELETE FROM schema_migrations WHERE version = ?", v); err != nil {
			return err
		}
		log.Info().Str("version", v).Msg("reverted migration")
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	if _, err := db.Exec(createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// migrationVersions lists file names without suffix, e.g. "0001_completions".
func migrationVersions(suffix string) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	versions := make([]string, 0, len(names))
	for _, name := range names {
		versions = append(versions, strings.TrimSuffix(path.Base(name), suffix))
	}
	slices.Sort(versions)
	return versions, nil
}

// runMigration executes one migration file and its bookkeeping statement in
// a single transaction.
func runMigration(db *sql.DB, file, record string, args ...any) error {
	body, err := migrationFiles.ReadFile("migrations/" + file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file, err)
	}
	if _, err := tx.Exec(string(body)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", file, err)
	}
	if _, err := tx.Exec(record, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}
