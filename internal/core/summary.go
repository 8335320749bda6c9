package core

import (
	"sort"
	"time"
)

// Summary holds the running totals over a ledger, in the base currency.
type Summary struct {
	Income  float64
	Expense float64
	Net     float64
}

// Summarize derives income, expense and net totals from the ledger by summing
// base-currency amounts. Pure function of its input, recomputed on demand.
func Summarize(ledger []Transaction) Summary {
	var s Summary
	for _, t := range ledger {
		if t.Type == TypeIncome {
			s.Income += t.BaseAmount
		} else {
			s.Expense += t.BaseAmount
		}
	}
	s.Net = s.Income - s.Expense
	return s
}

// SortedByDateDesc returns a new ordering of the ledger by calendar date,
// most recent first. The sort is stable and the input is not mutated.
// Entries whose date fails to parse sort to the end.
func SortedByDateDesc(ledger []Transaction) []Transaction {
	out := make([]Transaction, len(ledger))
	copy(out, ledger)
	sort.SliceStable(out, func(i, j int) bool {
		return ledgerTime(out[i].Date).After(ledgerTime(out[j].Date))
	})
	return out
}

func ledgerTime(s string) time.Time {
	t, err := ParseLedgerDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
