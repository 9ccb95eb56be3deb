package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// brokenQueries fails every read.
type brokenQueries struct{}

func (brokenQueries) Reference(context.Context) (services.Reference, error) {
	return services.Reference{}, errors.New("sheet unavailable")
}
func (brokenQueries) Dashboard(context.Context, core.YearMonth) (ledger.Dashboard, error) {
	return ledger.Dashboard{}, errors.New("sheet unavailable")
}
func (brokenQueries) History(context.Context) (services.History, error) {
	return services.History{}, errors.New("sheet unavailable")
}
func (brokenQueries) ClearCache() bool { return false }

// partialRecorder reports a half-written expense.
type partialRecorder struct{ Recorder }

func (partialRecorder) RecordExpense(context.Context, core.ExpenseInput) ([]core.Expense, error) {
	return nil, &services.PartialWriteError{GroupID: "g1", Written: 2, Total: 5, Err: errors.New("quota")}
}

type testEnv struct {
	server *Server
	table  *memory.Store
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	tbl := memory.New(memory.Seed{
		IncomeCategories:  []string{"Salary"},
		ExpenseCategories: []string{"Rent", "Groceries"},
		PaymentMethods:    []string{"PIX", "Credit"},
		Cards:             []string{"Nubank"},
	})
	adapter := store.NewAdapter(tbl)
	rec := services.NewTransactionService(adapter, nil, services.WithLogger(quietLogger()))
	q := services.NewQueryService(adapter)

	cfg := Config{
		Addr:       ":0",
		Backend:    "memory",
		SheetNames: map[core.Kind]string{core.KindIncome: "Entradas"},
		Logger:     quietLogger(),
		Now:        func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := NewServer(cfg, rec, q)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{server: srv, table: tbl}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	rr = env.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var ready map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready["status"])
	assert.Equal(t, "memory", ready["backend"])
}

func TestReadyFailsWhenStoreUnreachable(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Ready = fakePinger{err: errors.New("connection refused")} })

	rr := env.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestDashboardEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Mar 2024")
	assert.Contains(t, body, "No transactions yet")
	assert.Contains(t, body, `href="/?month=2024-02"`)
	assert.Contains(t, body, `href="/?month=2024-04"`)
}

func TestCreateIncomeThenDashboard(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodPost, "/income", url.Values{
		"date":     {"2024-03-05"},
		"category": {"Salary"},
		"type":     {"Fixed"},
		"amount":   {"1.500,00"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"income:created":{"month":"2024-03"}`)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"form:reset"`)
	assert.Contains(t, rr.Body.String(), "R$ 1,500.00")
	assert.Equal(t, 1, env.table.Len(core.KindIncome))

	rr = env.do(http.MethodGet, "/?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "R$ 1,500.00")
	assert.NotContains(t, body, "No transactions yet")
}

func TestCreateIncomeRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing amount", url.Values{"category": {"Salary"}, "type": {"Fixed"}}, "amount"},
		{"negative amount", url.Values{"category": {"Salary"}, "type": {"Fixed"}, "amount": {"-5"}}, "amount"},
		{"missing category", url.Values{"type": {"Fixed"}, "amount": {"10"}}, "category"},
		{"bad type", url.Values{"category": {"Salary"}, "type": {"Bonus"}, "amount": {"10"}}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, "/income", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
	assert.Equal(t, 0, env.table.Len(core.KindIncome))
}

func TestCreateExpenseInstallments(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodPost, "/expense", url.Values{
		"date":           {"2024-01-31"},
		"category":       {"Groceries"},
		"payment_method": {"Credit"},
		"card":           {"Nubank"},
		"amount":         {"100"},
		"installments":   {"3"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "3 installments of R$ 33.33")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"expense:created":{"month":"2024-01"}`)
	assert.Equal(t, 3, env.table.Len(core.KindExpense))
}

func TestCreateExpenseCreditNeedsCard(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodPost, "/expense", url.Values{
		"category":       {"Groceries"},
		"payment_method": {"Credit"},
		"amount":         {"100"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "card")
	assert.Equal(t, 0, env.table.Len(core.KindExpense))
}

func TestCreateExpensePartialWrite(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.recorder = partialRecorder{}

	rr := env.do(http.MethodPost, "/expense", url.Values{
		"category":       {"Rent"},
		"payment_method": {"PIX"},
		"amount":         {"100"},
		"installments":   {"5"},
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Saved 2 of 5 installments")
}

func TestCreateIncomeJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/income",
		strings.NewReader(`{"category":"Salary","type":"Variable","amount":250.5}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.server.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"month":"2024-03"`)
}

func TestForms(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/income/new", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<option>Salary</option>")
	assert.Contains(t, rr.Body.String(), `value="2024-03-15"`)

	rr = env.do(http.MethodGet, "/expense/new", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<option>Groceries</option>")
	assert.Contains(t, body, "<option>Nubank</option>")
	assert.Contains(t, body, `max="120"`)
}

func TestInstallmentPreview(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/ui/installment-preview?amount=100&installments=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "3 installments of R$ 33.33", rr.Body.String())

	for _, q := range []string{"amount=100&installments=1", "amount=&installments=3", "amount=100&installments=abc"} {
		rr = env.do(http.MethodGet, "/ui/installment-preview?"+q, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Body.String(), q)
	}
}

func TestHistoryAndExport(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(http.MethodPost, "/expense", url.Values{
		"date": {"2024-02-10"}, "category": {"Rent"}, "payment_method": {"PIX"}, "amount": {"800"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "2024-02-10")
	assert.Contains(t, rr.Body.String(), "R$ 800.00")

	rr = env.do(http.MethodGet, "/history/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="fintrack-2024-03-15.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetExpenses)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSettingsAndClearCache(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Backend: memory")
	assert.Contains(t, body, "<td>Entradas</td>")
	assert.Contains(t, body, "<td>expense</td>")

	// The adapter is not cached, so there is nothing to clear.
	rr = env.do(http.MethodPost, "/settings/cache/clear", url.Values{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No cache is configured")
}

func TestStoreFailuresRender500(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.queries = brokenQueries{}

	for _, path := range []string{"/", "/income/new", "/history", "/history/export.xlsx", "/settings"} {
		rr := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
		assert.NotContains(t, rr.Body.String(), "sheet unavailable", path)
	}
}

func TestRateLimitOnSubmissions(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.RateLimit = ratelimit.Config{RequestsPerMinute: 2, Methods: []string{http.MethodPost}}
	})

	form := url.Values{"category": {"Salary"}, "type": {"Fixed"}, "amount": {"10"}}
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/income", form).Code)
	}
	rr := env.do(http.MethodPost, "/income", form)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", nil).Code)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(http.MethodGet, "/static/app.css", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodDelete, "/income", nil).Code)
}

func TestPercentOf(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, 0, percentOf(d("0"), d("100"), true))
	assert.Equal(t, 2, percentOf(d("0.5"), d("100"), true))
	assert.Equal(t, 1, percentOf(d("0.5"), d("50"), false))
	assert.Equal(t, 100, percentOf(d("100"), d("100"), false))
	assert.Equal(t, 0, percentOf(d("10"), d("0"), true))
}
