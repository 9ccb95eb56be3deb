// Package ledger aggregates income and expense records into the figures the
// dashboard renders. Every function is a pure transformation over its input.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// MonthTotal is one row of the monthly evolution.
type MonthTotal struct {
	Month   core.YearMonth
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// MonthlyTotals sums each table per calendar month and joins the two sides,
// treating a month missing on one side as zero. The result is ordered by
// month ascending and is empty when both inputs are empty.
func MonthlyTotals(incomes []core.Income, expenses []core.Expense) []MonthTotal {
	in := sumByMonth(incomes)
	out := sumByMonth(expenses)

	months := make([]core.YearMonth, 0, len(in)+len(out))
	for ym := range in {
		months = append(months, ym)
	}
	for ym := range out {
		if _, ok := in[ym]; !ok {
			months = append(months, ym)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	totals := make([]MonthTotal, 0, len(months))
	for _, ym := range months {
		totals = append(totals, newMonthTotal(ym, in[ym], out[ym]))
	}
	return totals
}

// CurrentMonth returns the totals of a single month, zero when nothing matches.
func CurrentMonth(incomes []core.Income, expenses []core.Expense, ym core.YearMonth) MonthTotal {
	return newMonthTotal(ym, TotalFor(incomes, ym), TotalFor(expenses, ym))
}

// TotalFor sums the records dated in ym.
func TotalFor[T core.Entry](records []T, ym core.YearMonth) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if r.EntryDate().YearMonth() == ym {
			sum = sum.Add(r.EntryAmount())
		}
	}
	return sum
}

// Total sums every record.
func Total[T core.Entry](records []T) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.EntryAmount())
	}
	return sum
}

// CreditTotal sums the expenses paid by credit card.
func CreditTotal(expenses []core.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if e.IsCredit() {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

func sumByMonth[T core.Entry](records []T) map[core.YearMonth]decimal.Decimal {
	sums := make(map[core.YearMonth]decimal.Decimal)
	for _, r := range records {
		ym := r.EntryDate().YearMonth()
		sums[ym] = sums[ym].Add(r.EntryAmount())
	}
	return sums
}

func newMonthTotal(ym core.YearMonth, income, expense decimal.Decimal) MonthTotal {
	return MonthTotal{Month: ym, Income: income, Expense: expense, Balance: income.Sub(expense)}
}
