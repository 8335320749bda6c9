package ledger

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Pixalesce/simple-expense-tracker/internal/core"
)

// seedJSON is the bundled starter dataset, used on first run and after reset.
//
//go:embed seed_transactions.json
var seedJSON []byte

// seedTransactions returns a fresh copy of the seed dataset so callers can
// never mutate the embedded source.
func seedTransactions() ([]core.Transaction, error) {
	var ts []core.Transaction
	if err := json.Unmarshal(seedJSON, &ts); err != nil {
		return nil, fmt.Errorf("decode seed dataset: %w", err)
	}
	return ts, nil
}
