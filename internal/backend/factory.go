package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pixalesce/simple-expense-tracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new snapshot store factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSnapshot implements Factory.CreateSnapshot
func (f *DefaultFactory) CreateSnapshot(_ context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case FileBackend:
		snap, err := storage.NewFileSnapshot(cfg.LedgerFilePath)
		if err != nil {
			return nil, fmt.Errorf("initialize file snapshot: %w", err)
		}
		f.logger.Info("Initialized file snapshot backend", "path", cfg.LedgerFilePath)
		return &Result{Snapshot: snap, Cleanup: snap.Close}, nil

	case SQLiteBackend:
		snap, err := storage.NewSQLiteSnapshot(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite snapshot: %w", err)
		}
		f.logger.Info("Initialized sqlite snapshot backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Snapshot: snap, Cleanup: snap.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
