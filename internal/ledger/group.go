package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Share is one slice of a breakdown, ready for a chart or a table.
type Share struct {
	Name   string
	Amount decimal.Decimal
}

// GroupBy sums amounts by the key returned for each record. Records whose
// key is empty are skipped when skipEmpty is set.
func GroupBy[T any](records []T, key func(T) string, amount func(T) decimal.Decimal, skipEmpty bool) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		k := key(r)
		if skipEmpty && strings.TrimSpace(k) == "" {
			continue
		}
		sums[k] = sums[k].Add(amount(r))
	}
	return sums
}

// GroupByCategory sums amounts per category. Categories absent from the
// input are omitted.
func GroupByCategory[T core.Entry](records []T) map[string]decimal.Decimal {
	return GroupBy(records,
		func(r T) string { return r.EntryCategory() },
		func(r T) decimal.Decimal { return r.EntryAmount() },
		false)
}

// GroupByIncomeType splits income between Fixed and Variable.
func GroupByIncomeType(incomes []core.Income) map[string]decimal.Decimal {
	return GroupBy(incomes,
		func(i core.Income) string { return string(i.Type) },
		func(i core.Income) decimal.Decimal { return i.Amount },
		false)
}

// GroupByPaymentMethod sums expenses per payment method.
func GroupByPaymentMethod(expenses []core.Expense) map[string]decimal.Decimal {
	return GroupBy(expenses,
		func(e core.Expense) string { return string(e.Method) },
		func(e core.Expense) decimal.Decimal { return e.Amount },
		false)
}

// GroupByCard sums credit expenses per card. Expenses without a card are
// left out.
func GroupByCard(expenses []core.Expense) map[string]decimal.Decimal {
	credit := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.IsCredit() {
			credit = append(credit, e)
		}
	}
	return GroupBy(credit,
		func(e core.Expense) string { return e.Card },
		func(e core.Expense) decimal.Decimal { return e.Amount },
		true)
}

// Shares orders a breakdown by amount, largest first, then by name.
func Shares(sums map[string]decimal.Decimal) []Share {
	out := make([]Share, 0, len(sums))
	for name, amt := range sums {
		out = append(out, Share{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}
