// Package sqlite persists map settings in a single-file SQLite database so
// they survive power cycles.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SettingsBackend implements settings.Backend on a SQLite table.
type SettingsBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string, logger *slog.Logger) (*SettingsBackend, error) {
	logger.Info("opening settings database", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SettingsBackend{db: db, logger: logger}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Close closes the database connection.
func (b *SettingsBackend) Close() error {
	return b.db.Close()
}

// Ping reports whether the database is reachable.
func (b *SettingsBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Load returns the stored value of name, or found=false if it was never saved.
func (b *SettingsBackend) Load(ctx context.Context, name string) (int, bool, error) {
	var value int
	err := b.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query setting %s: %w", name, err)
	}
	return value, true, nil
}

// Save upserts name=value. The write is committed before Save returns.
func (b *SettingsBackend) Save(ctx context.Context, name string, value int) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, name, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", name, err)
	}
	b.logger.Debug("setting persisted", "setting", name, "value", value)
	return nil
}
