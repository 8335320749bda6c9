package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pixalesce/simple-expense-tracker/internal/amqp"
	"github.com/Pixalesce/simple-expense-tracker/internal/core"
	"github.com/Pixalesce/simple-expense-tracker/internal/ledger"
)

// LedgerService orchestrates transaction capture: normalization, the ledger
// append, and the optional ledger event stream. Submissions are handled
// strictly one at a time; the store serializes mutations internally.
type LedgerService struct {
	store      *ledger.Store
	normalizer *core.Normalizer
	events     *amqp.Client
}

func NewLedgerService(store *ledger.Store, normalizer *core.Normalizer, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		normalizer: normalizer,
		events:     events,
	}
}

// Load initializes the ledger from durable storage (seeding when necessary).
func (s *LedgerService) Load(ctx context.Context) ([]core.Transaction, error) {
	return s.store.Load(ctx)
}

// Record turns raw form input into a finished transaction and appends it to
// the ledger. Validation failures and an unresolvable exchange rate come back
// unwrapped (*core.ValidationError, core.ErrNeedsManualRate) with the ledger
// untouched, for the presentation layer to re-prompt on.
func (s *LedgerService) Record(ctx context.Context, form core.FormInput) (core.Transaction, error) {
	tx, err := s.normalizer.Normalize(ctx, form)
	if err != nil {
		return core.Transaction{}, err
	}

	appended, err := s.store.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	// Best-effort event publish; the transaction is already durable.
	s.publish(ctx, amqp.NewTransactionAppendedEvent(appended.ID, string(appended.Type), appended.BaseCurrency))

	return appended, nil
}

// Reset restores the ledger to the bundled seed dataset.
func (s *LedgerService) Reset(ctx context.Context) ([]core.Transaction, error) {
	items, err := s.store.Reset(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, amqp.NewLedgerResetEvent())
	return items, nil
}

// Ledger returns the current ledger in insertion order, most recent first.
func (s *LedgerService) Ledger() []core.Transaction {
	return s.store.All()
}

// Sorted returns the display projection: stable descending by calendar date.
func (s *LedgerService) Sorted() []core.Transaction {
	return core.SortedByDateDesc(s.store.All())
}

// Summary returns the running totals in the base currency.
func (s *LedgerService) Summary() core.Summary {
	return core.Summarize(s.store.All())
}

// BaseCurrency returns the configured base currency code.
func (s *LedgerService) BaseCurrency() string {
	return s.normalizer.BaseCurrency()
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		// Don't fail the request - the ledger mutation already succeeded
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind, "error", err)
	}
}

// Close releases the event publisher, if one is configured.
func (s *LedgerService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close event publisher: %w", err)
		}
	}
	return nil
}
