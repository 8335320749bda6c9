package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNeedsManualRate signals that the exchange rate for a foreign-currency
// transaction could not be resolved. The caller must collect a manual rate
// from the user and resubmit; the ledger is left untouched.
var ErrNeedsManualRate = errors.New("exchange rate unavailable, manual rate required")

// RateResolver resolves a conversion rate for a currency pair. A manual rate
// greater than zero takes precedence over any remote lookup.
type RateResolver interface {
	Resolve(ctx context.Context, from, to string, manual float64) (float64, error)
}

// FormInput is the raw transaction form as submitted by the presentation
// layer, before any normalization.
type FormInput struct {
	Date          string // YYYY-MM-DD
	Description   string
	Amount        float64
	Category      string
	PaymentMethod PaymentMethod
	Type          TransactionType
	Currency      string
	ManualRate    float64 // > 0 when the user supplied one
}

// Normalizer turns raw form input into a finished Transaction with a
// guaranteed base-currency amount. The base currency is injected
// configuration, the same for every transaction it produces.
type Normalizer struct {
	base  string
	rates RateResolver
}

func NewNormalizer(baseCurrency string, rates RateResolver) *Normalizer {
	return &Normalizer{
		base:  strings.ToUpper(strings.TrimSpace(baseCurrency)),
		rates: rates,
	}
}

// BaseCurrency returns the configured base currency code.
func (n *Normalizer) BaseCurrency() string { return n.base }

// Normalize validates the form, resolves the exchange rate when the
// transaction currency differs from the base currency, and produces the
// canonical Transaction. Field-level problems come back as *ValidationError;
// an unresolvable rate comes back as ErrNeedsManualRate. The returned
// transaction has no ID yet, the ledger assigns one on append.
func (n *Normalizer) Normalize(ctx context.Context, form FormInput) (Transaction, error) {
	currency := strings.ToUpper(strings.TrimSpace(form.Currency))
	description := strings.TrimSpace(form.Description)
	category := strings.TrimSpace(form.Category)

	day, err := ParseFormDate(form.Date)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "date", Message: "date must be a valid calendar date in YYYY-MM-DD form"}
	}
	if math.IsNaN(form.Amount) || math.IsInf(form.Amount, 0) || form.Amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	if !ValidCurrencyCode(currency) {
		return Transaction{}, &ValidationError{Field: "currency", Message: "currency must be a 3-letter code"}
	}
	if category == "" {
		return Transaction{}, &ValidationError{Field: "category", Message: "category must not be empty"}
	}
	typ, ok := ParseTransactionType(string(form.Type))
	if !ok {
		return Transaction{}, &ValidationError{Field: "type", Message: "type must be Expense or Income"}
	}
	if !form.PaymentMethod.AllowedFor(typ) {
		if typ == TypeIncome {
			return Transaction{}, &ValidationError{Field: "paymentMethod", Message: MsgIncomeMethod}
		}
		return Transaction{}, &ValidationError{
			Field:   "paymentMethod",
			Message: fmt.Sprintf("%s is not a valid payment method for expenses", form.PaymentMethod),
		}
	}

	if form.ManualRate != 0 && (math.IsNaN(form.ManualRate) || math.IsInf(form.ManualRate, 0) || form.ManualRate < 0) {
		return Transaction{}, &ValidationError{Field: "manualRate", Message: "manual rate must be greater than zero"}
	}

	rate := 1.0
	switch {
	case currency == n.base:
		// already in the base currency
	case form.ManualRate > 0:
		// a user-supplied rate skips the resolver entirely
		rate = form.ManualRate
	default:
		rate, err = n.rates.Resolve(ctx, currency, n.base, 0)
		if err != nil {
			return Transaction{}, fmt.Errorf("rate %s/%s: %w", currency, n.base, ErrNeedsManualRate)
		}
	}

	return Transaction{
		Date:          LedgerDate(day),
		Description:   description,
		Amount:        form.Amount,
		Category:      category,
		PaymentMethod: form.PaymentMethod,
		Type:          typ,
		Currency:      currency,
		BaseAmount:    form.Amount * rate,
		BaseCurrency:  n.base,
		ExchangeRate:  rate,
	}, nil
}
