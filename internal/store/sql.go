package store

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLStore implements the Store interface over a sqlx database handle.
// It runs against the hosted Postgres store in production and against an
// in-memory SQLite database in tests; queries are written with `?`
// placeholders and rebound for the active driver.
type SQLStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to the hosted relational store and applies any
// pending schema migrations.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres store: %w", err)
	}

	s := &SQLStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenSQLite opens (or creates) a SQLite database at dbPath, enables WAL
// mode and foreign keys, and runs any pending schema migrations. Used for
// tests and offline development.
func OpenSQLite(dbPath string) (*SQLStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind adapts `?` placeholders to the active driver's bindvar style.
func (s *SQLStore) rebind(query string) string {
	return s.db.Rebind(query)
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(&tableCount, s.rebind(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?"),
		"schema_version",
	)
	if err != nil {
		// SQLite has no information_schema; fall back to sqlite_master.
		err = s.db.Get(&tableCount,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
		)
		if err != nil {
			return fmt.Errorf("checking schema_version table: %w", err)
		}
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// boolToInt converts a boolean to 0 or 1 for storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
