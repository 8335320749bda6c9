package http

import (
	"strconv"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/Pixalesce/simple-expense-tracker/internal/core"
)

// formatMoney renders an amount with the grapheme and minor-unit precision
// of its currency, e.g. "S$1,234.50". Unknown codes fall back to the code
// itself as the symbol.
func formatMoney(value float64, code string) string {
	return money.NewFromFloat(value, code).Display()
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// todayFormValue pre-fills the date input of the capture form.
func todayFormValue() string {
	return time.Now().Format(core.FormDateLayout)
}
