package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// snapshotSlot is the key of the single ledger slot in the snapshots table.
const snapshotSlot = "ledger"

// SQLiteSnapshot stores the ledger snapshot in a one-row key-value table.
type SQLiteSnapshot struct {
	db *sql.DB
}

func NewSQLiteSnapshot(dbPath string) (*SQLiteSnapshot, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteSnapshot{db: db}, nil
}

func (s *SQLiteSnapshot) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM ledger_snapshots WHERE slot = ?`, snapshotSlot,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot slot: %w", err)
	}
	return data, nil
}

func (s *SQLiteSnapshot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_snapshots (slot, data, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snapshotSlot, data)
	if err != nil {
		return fmt.Errorf("write snapshot slot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshot) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM ledger_snapshots WHERE slot = ?`, snapshotSlot); err != nil {
		return fmt.Errorf("delete snapshot slot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
