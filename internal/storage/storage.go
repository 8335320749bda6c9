// Package storage provides the durable snapshot slot the ledger is persisted
// into: a single key-value entry holding the JSON-serialized transaction
// array, overwritten whole on every ledger mutation.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no snapshot has been stored yet.
var ErrNotFound = errors.New("no ledger snapshot stored")

// Snapshot is a single durable key-value slot. Read at startup, overwritten
// on every ledger mutation, removable via reset.
type Snapshot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
	Close() error
}
