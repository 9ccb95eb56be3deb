package http

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type page struct {
	Title    string
	Active   string
	Warnings []string
}

type shareRow struct {
	Name    string
	Amount  string
	Width   int
	Percent int
}

type monthBar struct {
	Label         string
	Income        string
	Expense       string
	Balance       string
	IncomeHeight  int
	ExpenseHeight int
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl":  core.FormatBRL,
		"join": strings.Join,
	}
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// shareRows scales each bar against the largest share and labels it with
// its percentage of the total.
func shareRows(shares []ledger.Share) []shareRow {
	var max, total decimal.Decimal
	for _, sh := range shares {
		total = total.Add(sh.Amount)
		if sh.Amount.GreaterThan(max) {
			max = sh.Amount
		}
	}

	rows := make([]shareRow, 0, len(shares))
	for _, sh := range shares {
		rows = append(rows, shareRow{
			Name:    sh.Name,
			Amount:  core.FormatBRL(sh.Amount),
			Width:   percentOf(sh.Amount, max, true),
			Percent: percentOf(sh.Amount, total, false),
		})
	}
	return rows
}

func monthBars(months []ledger.MonthTotal) []monthBar {
	var max decimal.Decimal
	for _, m := range months {
		max = decimal.Max(max, m.Income, m.Expense)
	}

	bars := make([]monthBar, 0, len(months))
	for _, m := range months {
		bars = append(bars, monthBar{
			Label:         m.Month.Label(),
			Income:        core.FormatBRL(m.Income),
			Expense:       core.FormatBRL(m.Expense),
			Balance:       core.FormatBRL(m.Balance),
			IncomeHeight:  percentOf(m.Income, max, true),
			ExpenseHeight: percentOf(m.Expense, max, true),
		})
	}
	return bars
}

// percentOf returns part/whole as a rounded percentage in [0, 100]. With
// visible set, any positive part gets at least 2 so it shows on screen.
func percentOf(part, whole decimal.Decimal, visible bool) int {
	if !whole.IsPositive() || !part.IsPositive() {
		return 0
	}
	p := int(part.Mul(decimal.NewFromInt(100)).DivRound(whole, 0).IntPart())
	if visible && p < 2 {
		p = 2
	}
	if p > 100 {
		p = 100
	}
	return p
}

func warningsOf(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
