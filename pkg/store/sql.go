package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Options configures the SQL record store.
type Options struct {
	// Driver selects the database driver, "sqlite3" or "postgres".
	Driver string

	// DSN is the driver-specific data source name. For sqlite3 this is a
	// file path; for postgres a connection string or URL.
	DSN string

	MaxOpenConns int
	MaxIdleConns int
}

// SQLStore implements RecordStore on a relational database. Queries are
// written once with ? placeholders and rewritten for postgres at call
// time, so both drivers share the same statements.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database, configures the connection pool and
// verifies connectivity before returning.
func Open(opts Options) (*SQLStore, error) {
	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStore{db: db, driver: opts.Driver}, nil
}

// NewSQLStore wraps an existing database handle. The caller keeps
// ownership of pool configuration.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// Migrate creates the schema when missing. Statements stick to the
// portable subset both supported drivers accept.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pinned_apps (
			username TEXT NOT NULL,
			position INTEGER NOT NULL,
			app_id TEXT NOT NULL,
			PRIMARY KEY (username, position)
		)`,
		`CREATE TABLE IF NOT EXISTS panel_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders into the $n form the postgres driver
// expects. The sqlite3 driver takes ? directly.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func (s *SQLStore) GetPins(ctx context.Context, username string) ([]string, error) {
	query := s.rebind(`SELECT app_id FROM pinned_apps WHERE username = ? ORDER BY position`)

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query pins: %w", err)
	}
	defer rows.Close()

	appIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		appIDs = append(appIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pins: %w", err)
	}

	return appIDs, nil
}

func (s *SQLStore) SetPins(ctx context.Context, username string, appIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM pinned_apps WHERE username = ?`), username); err != nil {
		return fmt.Errorf("failed to clear pins: %w", err)
	}

	insert := s.rebind(`INSERT INTO pinned_apps (username, position, app_id) VALUES (?, ?, ?)`)
	for i, id := range appIDs {
		if _, err := tx.ExecContext(ctx, insert, username, i, id); err != nil {
			return fmt.Errorf("failed to insert pin %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pins: %w", err)
	}

	return nil
}

func (s *SQLStore) GetSetting(ctx context.Context, key string) (string, error) {
	query := s.rebind(`SELECT value FROM panel_settings WHERE key = ?`)

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return value, nil
}

func (s *SQLStore) SetSetting(ctx context.Context, key, value string) error {
	query := s.rebind(`INSERT INTO panel_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`)

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}

func (s *SQLStore) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM panel_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return settings, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
