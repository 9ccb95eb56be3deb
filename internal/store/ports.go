// Package store reads and writes the five positional tables of the finance
// workbook. Backends implement Table; the Adapter turns raw rows into typed
// records and Cached puts a TTL cache in front of it.
package store

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// Table is a backend holding one sheet-like table per kind.
	Table interface {
		// ReadRows returns the header row followed by data rows. An empty
		// table yields no rows at all.
		ReadRows(ctx context.Context, kind core.Kind) ([][]string, error)
		// AppendRow appends one positional row.
		AppendRow(ctx context.Context, kind core.Kind, row []any) error
	}

	// Reader provides typed access to the tables.
	Reader interface {
		Incomes(ctx context.Context) ([]core.Income, error)
		Expenses(ctx context.Context) ([]core.Expense, error)
		Categories(ctx context.Context) ([]core.Category, error)
		PaymentMethods(ctx context.Context) ([]string, error)
		Cards(ctx context.Context) ([]string, error)
	}

	// Writer appends typed records.
	Writer interface {
		AppendIncome(ctx context.Context, in core.Income) error
		AppendExpense(ctx context.Context, e core.Expense) error
	}

	Store interface {
		Reader
		Writer
	}

	// Invalidator drops cached reads.
	Invalidator interface {
		Invalidate()
	}
)

// Row is one data row keyed by canonical column name. Line is the 1-based
// line in the sheet, the header being line 1.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the raw value of column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}
