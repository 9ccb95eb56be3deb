// Package http provides HTTP server and handler implementations.
//
// This file turns query strings and submitted forms into domain inputs.
// Conversion failures are reported as *core.ValidationError so handlers map
// them to 422 the same way as failed validation.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const maxBodyBytes = 64 << 10

// ParseMonthParam reads ?month=YYYY-MM. A missing or malformed value yields
// the month of today.
func ParseMonthParam(query url.Values, today core.Date) core.YearMonth {
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if ym, err := core.ParseYearMonth(v); err == nil {
			return ym
		}
	}
	return today.YearMonth()
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most 64 KiB of the request body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// values is the read side shared by RequestBodyParser and url.Values.
type values interface {
	Get(key string) string
}

func parseIncomeInput(v values, today core.Date) (core.IncomeInput, error) {
	date, err := parseDateField(v.Get("date"), today)
	if err != nil {
		return core.IncomeInput{}, err
	}
	amount, err := parseAmountField(v.Get("amount"))
	if err != nil {
		return core.IncomeInput{}, err
	}
	return core.IncomeInput{
		Date:        date,
		Category:    v.Get("category"),
		Type:        core.IncomeType(v.Get("type")),
		Amount:      amount,
		Description: v.Get("description"),
	}, nil
}

func parseExpenseInput(v values, today core.Date) (core.ExpenseInput, error) {
	date, err := parseDateField(v.Get("date"), today)
	if err != nil {
		return core.ExpenseInput{}, err
	}
	amount, err := parseAmountField(v.Get("amount"))
	if err != nil {
		return core.ExpenseInput{}, err
	}
	count, err := parseInstallmentsField(v.Get("installments"))
	if err != nil {
		return core.ExpenseInput{}, err
	}
	return core.ExpenseInput{
		Date:         date,
		Category:     v.Get("category"),
		Method:       core.PaymentMethod(v.Get("payment_method")),
		Card:         v.Get("card"),
		Amount:       amount,
		Installments: count,
		Description:  v.Get("description"),
	}, nil
}

// parseDateField defaults an empty field to today.
func parseDateField(s string, today core.Date) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	return d, nil
}

func parseAmountField(s string) (amount decimal.Decimal, err error) {
	amount, err = core.ParsePositiveAmount(s)
	if err != nil {
		return amount, &core.ValidationError{Field: "amount", Err: err}
	}
	return amount, nil
}

// parseInstallmentsField defaults an empty field to a single installment.
func parseInstallmentsField(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > core.MaxInstallments {
		return 0, &core.ValidationError{Field: "installments", Err: core.ErrInvalidInstallments}
	}
	return n, nil
}
