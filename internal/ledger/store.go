// Package ledger keeps the in-memory ordered transaction ledger and mirrors
// every mutation into a durable snapshot slot.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Pixalesce/simple-expense-tracker/internal/core"
	"github.com/Pixalesce/simple-expense-tracker/internal/storage"
)

// Store holds the ledger, most-recent-first in insertion order. Transactions
// are never mutated once appended; the only mutations are append and full
// reset, and each one overwrites the whole snapshot.
//
// IDs come from a monotonic counter rehydrated as max(stored id)+1 on load,
// never from the current ledger length.
type Store struct {
	mu     sync.Mutex
	snap   storage.Snapshot
	items  []core.Transaction
	nextID int64
}

func NewStore(snap storage.Snapshot) *Store {
	return &Store{snap: snap, nextID: 1}
}

// Load initializes the ledger from the durable snapshot. A missing snapshot
// seeds the bundled dataset; a corrupt snapshot is logged as a warning and
// reseeded the same way, never surfaced as an error to the user.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.snap.Read(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.InfoContext(ctx, "No ledger snapshot found, seeding starter dataset")
		if err := s.seedLocked(ctx); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	default:
		var items []core.Transaction
		if uerr := json.Unmarshal(data, &items); uerr != nil {
			slog.WarnContext(ctx, "Ledger snapshot corrupt, falling back to seed dataset",
				"error", uerr)
			if err := s.seedLocked(ctx); err != nil {
				return nil, err
			}
		} else {
			s.items = items
		}
	}

	s.nextID = maxID(s.items) + 1
	slog.InfoContext(ctx, "Ledger loaded", "transactions", len(s.items), "next_id", s.nextID)
	return s.copyLocked(), nil
}

// Append assigns the next id, prepends the transaction and persists the full
// ledger. On persistence failure the in-memory ledger is left untouched.
func (s *Store) Append(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	next := make([]core.Transaction, 0, len(s.items)+1)
	next = append(next, t)
	next = append(next, s.items...)

	if err := s.persist(ctx, next); err != nil {
		return core.Transaction{}, err
	}

	s.items = next
	s.nextID++
	slog.InfoContext(ctx, "Transaction appended",
		"id", t.ID,
		"type", string(t.Type),
		"base_amount", t.BaseAmount,
		"base_currency", t.BaseCurrency)
	return t, nil
}

// Reset discards the durable snapshot and reinitializes from the seed dataset.
func (s *Store) Reset(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snap.Delete(ctx); err != nil {
		return nil, fmt.Errorf("reset ledger: %w", err)
	}
	if err := s.seedLocked(ctx); err != nil {
		return nil, err
	}
	s.nextID = maxID(s.items) + 1
	slog.InfoContext(ctx, "Ledger reset to seed dataset", "transactions", len(s.items))
	return s.copyLocked(), nil
}

// All returns a copy of the ledger in insertion order, most recent first.
func (s *Store) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Len returns the number of transactions currently in the ledger.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) seedLocked(ctx context.Context) error {
	seed, err := seedTransactions()
	if err != nil {
		return err
	}
	if err := s.persist(ctx, seed); err != nil {
		return err
	}
	s.items = seed
	return nil
}

func (s *Store) persist(ctx context.Context, items []core.Transaction) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.snap.Write(ctx, data); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (s *Store) copyLocked() []core.Transaction {
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

func maxID(items []core.Transaction) int64 {
	var max int64
	for _, t := range items {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}
