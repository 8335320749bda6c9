package core

import (
	"fmt"
	"strings"
	"time"
)

// FormDateLayout is the format used by form input (ISO calendar date).
const FormDateLayout = "2006-01-02"

// LedgerDateLayout is the format transactions carry in the ledger.
const LedgerDateLayout = "02-01-2006"

// ParseFormDate parses a YYYY-MM-DD form value into a calendar date at
// midnight UTC. Parsing is strict: "2025-02-30" is rejected.
func ParseFormDate(s string) (time.Time, error) {
	t, err := time.Parse(FormDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse form date %q: %w", s, err)
	}
	return t, nil
}

// ParseLedgerDate parses a DD-MM-YYYY ledger date.
func ParseLedgerDate(s string) (time.Time, error) {
	t, err := time.Parse(LedgerDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse ledger date %q: %w", s, err)
	}
	return t, nil
}

// LedgerDate formats a calendar date the way the ledger stores it. Only the
// year, month and day are used, so the result never shifts across a day
// boundary regardless of the time or zone carried by t.
func LedgerDate(t time.Time) string {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(LedgerDateLayout)
}
