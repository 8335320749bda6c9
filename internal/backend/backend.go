// Package backend selects and builds the durable snapshot store the ledger
// persists into.
package backend

import (
	"context"
	"fmt"

	"github.com/Pixalesce/simple-expense-tracker/internal/config"
	"github.com/Pixalesce/simple-expense-tracker/internal/storage"
)

// Type represents the kind of snapshot store backing the ledger.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the snapshot store and optional cleanup function.
type Result struct {
	Snapshot storage.Snapshot
	Cleanup  CleanupFunc
}

// Factory creates snapshot stores based on configuration
type Factory interface {
	CreateSnapshot(ctx context.Context, cfg Config) (*Result, error)
}

// Config holds configuration for snapshot store creation
type Config struct {
	Type Type

	// File specific
	LedgerFilePath string

	// SQLite specific
	SQLiteDBPath string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:           t,
		LedgerFilePath: appConfig.LedgerFilePath,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FileBackend:
		if c.LedgerFilePath == "" {
			return fmt.Errorf("ledger file path is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	}

	return nil
}
