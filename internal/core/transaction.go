package core

import (
	"fmt"
	"math"
	"strings"
)

const (
	TypeExpense TransactionType = "Expense"
	TypeIncome  TransactionType = "Income"
)

const (
	PayCash         PaymentMethod = "Cash"
	PayCreditCard   PaymentMethod = "Credit Card"
	PayDebitCard    PaymentMethod = "Debit Card"
	PayBankTransfer PaymentMethod = "Bank Transfer"
)

// MsgIncomeMethod is the rejection message for income recorded with a card.
const MsgIncomeMethod = "Income must be recorded as Cash or Bank Transfer."

type (
	TransactionType string

	PaymentMethod string

	// Transaction is a single ledger entry. Once appended to the ledger it is
	// never mutated; amounts are kept both in the original currency and in the
	// configured base currency.
	Transaction struct {
		ID            int64           `json:"id"`
		Date          string          `json:"date"` // DD-MM-YYYY
		Description   string          `json:"description"`
		Amount        float64         `json:"amount"`
		Category      string          `json:"category"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Type          TransactionType `json:"type"`
		Currency      string          `json:"currency"`
		BaseAmount    float64         `json:"baseAmount"`
		BaseCurrency  string          `json:"baseCurrency"`
		ExchangeRate  float64         `json:"exchangeRate"`
	}
)

// ValidationError is a field-level rejection of user input. It is recovered by
// re-prompting the same form and never reaches the ledger.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValid reports whether the transaction type is one of the known values.
func (t TransactionType) IsValid() bool {
	return t == TypeExpense || t == TypeIncome
}

// ParseTransactionType canonicalizes a raw form value into a TransactionType,
// accepting any casing. The second return is false when the value matches
// neither known type.
func ParseTransactionType(s string) (TransactionType, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(TypeExpense)):
		return TypeExpense, true
	case strings.EqualFold(s, string(TypeIncome)):
		return TypeIncome, true
	}
	return TransactionType(s), false
}

// Methods returns the payment methods allowed for the transaction type.
func (t TransactionType) Methods() []PaymentMethod {
	if t == TypeIncome {
		return []PaymentMethod{PayCash, PayBankTransfer}
	}
	return []PaymentMethod{PayCash, PayCreditCard, PayDebitCard, PayBankTransfer}
}

// AllowedFor reports whether the payment method may be used for the given type.
func (m PaymentMethod) AllowedFor(t TransactionType) bool {
	for _, allowed := range t.Methods() {
		if m == allowed {
			return true
		}
	}
	return false
}

// ValidCurrencyCode reports whether s is exactly three ASCII letters.
func ValidCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Validate checks the ledger invariants on a finished transaction.
func (t Transaction) Validate() error {
	if _, err := ParseLedgerDate(t.Date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be a valid calendar date"}
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	if !ValidCurrencyCode(t.Currency) {
		return &ValidationError{Field: "currency", Message: "currency must be a 3-letter code"}
	}
	if strings.TrimSpace(t.Category) == "" {
		return &ValidationError{Field: "category", Message: "category must not be empty"}
	}
	if !t.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "type must be Expense or Income"}
	}
	if !t.PaymentMethod.AllowedFor(t.Type) {
		if t.Type == TypeIncome {
			return &ValidationError{Field: "paymentMethod", Message: MsgIncomeMethod}
		}
		return &ValidationError{
			Field:   "paymentMethod",
			Message: fmt.Sprintf("%s is not a valid payment method for expenses", t.PaymentMethod),
		}
	}
	return nil
}
