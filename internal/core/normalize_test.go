package core

import (
	"context"
	"errors"
	"math"
	"testing"
)

// stubResolver returns a fixed rate or error and records invocations.
type stubResolver struct {
	rate  float64
	err   error
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, from, to string, manual float64) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if manual > 0 {
		return manual, nil
	}
	return s.rate, nil
}

func validForm() FormInput {
	return FormInput{
		Date:          "2025-03-15",
		Description:   " lunch ",
		Amount:        100,
		Category:      " Food & Drink ",
		PaymentMethod: PayCash,
		Type:          TypeExpense,
		Currency:      "sgd",
	}
}

func TestNormalizeSameCurrency(t *testing.T) {
	rates := &stubResolver{rate: 99}
	n := NewNormalizer("SGD", rates)

	tx, err := n.Normalize(context.Background(), validForm())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tx.BaseAmount != 100 || tx.ExchangeRate != 1 {
		t.Fatalf("baseAmount=%v rate=%v, want 100 and 1", tx.BaseAmount, tx.ExchangeRate)
	}
	if tx.Currency != "SGD" || tx.BaseCurrency != "SGD" {
		t.Fatalf("currency not normalized: %q/%q", tx.Currency, tx.BaseCurrency)
	}
	if tx.Description != "lunch" || tx.Category != "Food & Drink" {
		t.Fatalf("fields not trimmed: %q %q", tx.Description, tx.Category)
	}
	if tx.Date != "15-03-2025" {
		t.Fatalf("date = %q, want 15-03-2025", tx.Date)
	}
	if rates.calls != 0 {
		t.Fatalf("resolver called %d times for same-currency input", rates.calls)
	}
	if tx.ID != 0 {
		t.Fatalf("normalizer must not assign ids, got %d", tx.ID)
	}
}

func TestNormalizeForeignCurrency(t *testing.T) {
	rates := &stubResolver{rate: 1.35}
	n := NewNormalizer("SGD", rates)

	form := validForm()
	form.Currency = "USD"
	form.Amount = 50

	tx, err := n.Normalize(context.Background(), form)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tx.ExchangeRate != 1.35 {
		t.Fatalf("rate = %v, want 1.35", tx.ExchangeRate)
	}
	if math.Abs(tx.BaseAmount-67.5) > 1e-9 {
		t.Fatalf("baseAmount = %v, want 67.5", tx.BaseAmount)
	}
	if math.Abs(tx.BaseAmount-tx.Amount*tx.ExchangeRate) > 1e-9 {
		t.Fatalf("invariant broken: %v != %v * %v", tx.BaseAmount, tx.Amount, tx.ExchangeRate)
	}
	if rates.calls != 1 {
		t.Fatalf("resolver calls = %d, want 1", rates.calls)
	}
}

func TestNormalizeUnresolvedRate(t *testing.T) {
	rates := &stubResolver{err: errors.New("service unreachable")}
	n := NewNormalizer("SGD", rates)

	form := validForm()
	form.Currency = "USD"

	_, err := n.Normalize(context.Background(), form)
	if !errors.Is(err, ErrNeedsManualRate) {
		t.Fatalf("expected ErrNeedsManualRate, got %v", err)
	}
}

func TestNormalizeCanonicalizesType(t *testing.T) {
	// The capture form submits lowercase type values; both casings must
	// produce the canonical type on the stored transaction.
	cases := []struct {
		raw    TransactionType
		method PaymentMethod
		want   TransactionType
	}{
		{"expense", PayCreditCard, TypeExpense},
		{"income", PayBankTransfer, TypeIncome},
		{"Expense", PayCash, TypeExpense},
		{"Income", PayCash, TypeIncome},
	}
	for _, tc := range cases {
		rates := &stubResolver{rate: 1}
		n := NewNormalizer("SGD", rates)

		form := validForm()
		form.Type = tc.raw
		form.PaymentMethod = tc.method

		tx, err := n.Normalize(context.Background(), form)
		if err != nil {
			t.Fatalf("normalize type %q: %v", tc.raw, err)
		}
		if tx.Type != tc.want {
			t.Fatalf("type = %q, want %q", tx.Type, tc.want)
		}
	}
}

func TestNormalizeManualRateSkipsResolver(t *testing.T) {
	rates := &stubResolver{err: errors.New("service unreachable")}
	n := NewNormalizer("SGD", rates)

	form := validForm()
	form.Currency = "USD"
	form.Amount = 50
	form.ManualRate = 1.4

	tx, err := n.Normalize(context.Background(), form)
	if err != nil {
		t.Fatalf("normalize with manual rate: %v", err)
	}
	if tx.ExchangeRate != 1.4 {
		t.Fatalf("rate = %v, want 1.4", tx.ExchangeRate)
	}
	if rates.calls != 0 {
		t.Fatalf("resolver called %d times with a manual rate supplied", rates.calls)
	}
}

func TestNormalizeValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FormInput)
		field  string
	}{
		{"bad date", func(f *FormInput) { f.Date = "15-03-2025" }, "date"},
		{"impossible date", func(f *FormInput) { f.Date = "2025-02-30" }, "date"},
		{"zero amount", func(f *FormInput) { f.Amount = 0 }, "amount"},
		{"negative amount", func(f *FormInput) { f.Amount = -5 }, "amount"},
		{"nan amount", func(f *FormInput) { f.Amount = math.NaN() }, "amount"},
		{"short currency", func(f *FormInput) { f.Currency = "SG" }, "currency"},
		{"numeric currency", func(f *FormInput) { f.Currency = "S1D" }, "currency"},
		{"empty category", func(f *FormInput) { f.Category = "   " }, "category"},
		{"unknown type", func(f *FormInput) { f.Type = "Transfer" }, "type"},
		{"income via card", func(f *FormInput) { f.Type = TypeIncome; f.PaymentMethod = PayCreditCard }, "paymentMethod"},
		{"unknown method", func(f *FormInput) { f.PaymentMethod = "Cheque" }, "paymentMethod"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rates := &stubResolver{rate: 1.35}
			n := NewNormalizer("SGD", rates)
			form := validForm()
			tc.mutate(&form)

			_, err := n.Normalize(context.Background(), form)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field = %q, want %q", verr.Field, tc.field)
			}
			if rates.calls != 0 {
				t.Fatalf("resolver must not be called for invalid input")
			}
		})
	}
}

func TestNormalizeIncomeMessage(t *testing.T) {
	n := NewNormalizer("SGD", &stubResolver{rate: 1})
	form := validForm()
	form.Type = TypeIncome
	form.PaymentMethod = PayDebitCard

	_, err := n.Normalize(context.Background(), form)
	if err == nil || err.Error() != MsgIncomeMethod {
		t.Fatalf("message = %v, want %q", err, MsgIncomeMethod)
	}
}
