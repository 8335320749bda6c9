package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Pixalesce/simple-expense-tracker/internal/core"
	applog "github.com/Pixalesce/simple-expense-tracker/internal/log"
)

type transactionRow struct {
	ID       int64
	Date     string
	Desc     string
	Category string
	Method   string
	Type     string
	IsIncome bool
	Amount   string // original currency
	Base     string // base currency
	Rate     string
	Foreign  bool
}

type ledgerView struct {
	BaseCurrency    string
	Income          string
	Expense         string
	Net             string
	Count           int
	EntryLabel      string
	HasTransactions bool
	Rows            []transactionRow
}

func (s *Server) buildLedgerView() ledgerView {
	base := s.svc.BaseCurrency()
	sum := s.svc.Summary()
	sorted := s.svc.Sorted()

	view := ledgerView{
		BaseCurrency:    base,
		Income:          formatMoney(sum.Income, base),
		Expense:         formatMoney(sum.Expense, base),
		Net:             formatMoney(sum.Net, base),
		Count:           len(sorted),
		EntryLabel:      "entries",
		HasTransactions: len(sorted) > 0,
	}
	if view.Count == 1 {
		view.EntryLabel = "entry"
	}

	for _, t := range sorted {
		row := transactionRow{
			ID:       t.ID,
			Date:     t.Date,
			Desc:     t.Description,
			Category: t.Category,
			Method:   string(t.PaymentMethod),
			Type:     string(t.Type),
			IsIncome: t.Type == core.TypeIncome,
			Amount:   formatMoney(t.Amount, t.Currency),
			Base:     formatMoney(t.BaseAmount, t.BaseCurrency),
			Foreign:  t.Currency != t.BaseCurrency,
		}
		if row.Foreign {
			row.Rate = formatRate(t.ExchangeRate)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		View           ledgerView
		Today          string
		ExpenseMethods []core.PaymentMethod
		IncomeMethods  []core.PaymentMethod
	}{
		View:           s.buildLedgerView(),
		Today:          todayFormValue(),
		ExpenseMethods: core.TypeExpense.Methods(),
		IncomeMethods:  core.TypeIncome.Methods(),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleLedgerPartial renders the summary cards and the sorted table.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="ledger"><div class="placeholder">Templates not loaded</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "ledger.html", s.buildLedgerView()); err != nil {
		slog.ErrorContext(r.Context(), "Ledger template execution failed", applog.FieldError, err, "template", "ledger.html")
		_, _ = w.Write([]byte(`<section id="ledger"><div class="placeholder">Error rendering ledger</div></section>`))
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a positive number")
		return
	}

	var manualRate float64
	if v := strings.TrimSpace(r.Form.Get("manualRate")); v != "" {
		manualRate, err = core.ParseAmount(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "manual rate must be a positive number")
			return
		}
	}

	form := core.FormInput{
		Date:          strings.TrimSpace(r.Form.Get("date")),
		Description:   sanitizeInput(r.Form.Get("description")),
		Amount:        amount,
		Category:      sanitizeInput(r.Form.Get("category")),
		PaymentMethod: core.PaymentMethod(strings.TrimSpace(r.Form.Get("paymentMethod"))),
		Type:          core.TransactionType(strings.TrimSpace(r.Form.Get("type"))),
		Currency:      r.Form.Get("currency"),
		ManualRate:    manualRate,
	}

	tx, err := s.svc.Record(r.Context(), form)
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
		return
	case errors.Is(err, core.ErrNeedsManualRate):
		// Recoverable: the client reveals the manual-rate field and resubmits.
		w.Header().Set("HX-Trigger", `{"rate:manual-required": {}}`)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error manual-rate">Live exchange rate unavailable. Enter a manual rate and resubmit.</div>`))
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Transaction record error", applog.FieldError, err, "description", form.Description)
		writeError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	w.Header().Set("HX-Trigger", `{"transaction:created": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Recorded #` + template.HTMLEscapeString(formatID(tx.ID)) + `: ` +
		template.HTMLEscapeString(tx.Description) +
		` — ` + template.HTMLEscapeString(formatMoney(tx.BaseAmount, tx.BaseCurrency)) + `</div>`))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	items, err := s.svc.Reset(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger reset error", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Failed to reset ledger")
		return
	}

	w.Header().Set("HX-Trigger", `{"ledger:reset": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Ledger reset to ` + template.HTMLEscapeString(formatID(int64(len(items)))) + ` seed entries</div>`))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
