package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Pixalesce/simple-expense-tracker/internal/core"
	"github.com/Pixalesce/simple-expense-tracker/internal/ledger"
	"github.com/Pixalesce/simple-expense-tracker/internal/services"
	"github.com/Pixalesce/simple-expense-tracker/internal/storage"
)

type fixedResolver struct {
	rate float64
	err  error
}

func (r fixedResolver) Resolve(_ context.Context, _, _ string, manual float64) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if manual > 0 {
		return manual, nil
	}
	return r.rate, nil
}

func newTestServer(t *testing.T, resolver core.RateResolver) *Server {
	t.Helper()
	snap, err := storage.NewFileSnapshot(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	svc := services.NewLedgerService(ledger.NewStore(snap), core.NewNormalizer("SGD", resolver), nil)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := NewServer(":0", svc)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func captureForm() url.Values {
	return url.Values{
		"type":          {"expense"},
		"date":          {"2025-03-15"},
		"description":   {"lunch"},
		"amount":        {"12.50"},
		"currency":      {"SGD"},
		"category":      {"Food & Drink"},
		"paymentMethod": {"Cash"},
	}
}

func TestIndexRendersLedger(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{"Expense Tracker", "total entries", "SGD"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestIndexUnknownPathReturns404(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestCreateTransactionSuccess(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})
	before := len(srv.svc.Ledger())

	rec := postForm(srv, "/transactions", captureForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %q", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "transaction:created") {
		t.Errorf("HX-Trigger = %q, want transaction:created", rec.Header().Get("HX-Trigger"))
	}
	if got := len(srv.svc.Ledger()); got != before+1 {
		t.Errorf("ledger size = %d, want %d", got, before+1)
	}
}

func TestCreateTransactionAcceptsFormOptionValues(t *testing.T) {
	// The index template's <option> values are submitted verbatim; both type
	// options must round-trip to a stored transaction with the canonical type.
	srv := newTestServer(t, fixedResolver{rate: 1.35})

	cases := []struct {
		typ    string
		method string
		want   core.TransactionType
	}{
		{"expense", "Credit Card", core.TypeExpense},
		{"income", "Bank Transfer", core.TypeIncome},
	}
	for _, tc := range cases {
		form := captureForm()
		form.Set("type", tc.typ)
		form.Set("paymentMethod", tc.method)

		rec := postForm(srv, "/transactions", form)
		if rec.Code != http.StatusOK {
			t.Fatalf("type %q status = %d, want %d, body %q", tc.typ, rec.Code, http.StatusOK, rec.Body.String())
		}
		if got := srv.svc.Ledger()[0].Type; got != tc.want {
			t.Errorf("stored type = %q, want %q", got, tc.want)
		}
	}
}

func TestCreateTransactionValidationError(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})
	before := len(srv.svc.Ledger())

	form := captureForm()
	form.Set("type", "income")
	form.Set("paymentMethod", "Credit Card")
	rec := postForm(srv, "/transactions", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), core.MsgIncomeMethod) {
		t.Errorf("body = %q, want income-method message", rec.Body.String())
	}
	if got := len(srv.svc.Ledger()); got != before {
		t.Errorf("ledger size changed on invalid input: %d, want %d", got, before)
	}
}

func TestCreateTransactionBadAmount(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})

	form := captureForm()
	form.Set("amount", "-5")
	rec := postForm(srv, "/transactions", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateTransactionManualRatePrompt(t *testing.T) {
	srv := newTestServer(t, fixedResolver{err: errors.New("exchange down")})
	before := len(srv.svc.Ledger())

	form := captureForm()
	form.Set("currency", "USD")
	rec := postForm(srv, "/transactions", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "rate:manual-required") {
		t.Errorf("HX-Trigger = %q, want rate:manual-required", rec.Header().Get("HX-Trigger"))
	}
	if got := len(srv.svc.Ledger()); got != before {
		t.Errorf("ledger size changed on unresolved rate: %d, want %d", got, before)
	}

	// Resubmitting with a manual rate succeeds even though the resolver is down.
	form.Set("manualRate", "1.40")
	rec = postForm(srv, "/transactions", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("manual rate retry status = %d, want %d, body %q", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := len(srv.svc.Ledger()); got != before+1 {
		t.Errorf("ledger size = %d, want %d", got, before+1)
	}
}

func TestCreateTransactionRejectsGet(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestResetRestoresSeed(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})
	seedLen := len(srv.svc.Ledger())

	if rec := postForm(srv, "/transactions", captureForm()); rec.Code != http.StatusOK {
		t.Fatalf("setup append failed: %d", rec.Code)
	}

	rec := postForm(srv, "/reset", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "ledger:reset") {
		t.Errorf("HX-Trigger = %q, want ledger:reset", rec.Header().Get("HX-Trigger"))
	}
	if got := len(srv.svc.Ledger()); got != seedLen {
		t.Errorf("ledger size after reset = %d, want %d", got, seedLen)
	}
}

func TestLedgerPartialRendersTable(t *testing.T) {
	srv := newTestServer(t, fixedResolver{rate: 1.35})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/ledger", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="ledger"`, "Income", "Expenses", "Net"} {
		if !strings.Contains(body, want) {
			t.Errorf("partial missing %q", want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  coffee  ", "coffee"},
		{"line\x00break", "linebreak"},
		{"tab\tok", "tab\tok"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
