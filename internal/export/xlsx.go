// Package export renders transaction history as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/store"
)

const (
	SheetIncome   = "Income"
	SheetExpenses = "Expenses"
	SheetMonthly  = "Monthly"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var monthlyHeaders = []any{"Month", "Income", "Expense", "Balance"}

// WriteHistoryXLSX writes a workbook with the income and expense tables in
// their stored column order plus a sheet of monthly totals.
func WriteHistoryXLSX(w io.Writer, incomes []core.Income, expenses []core.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetIncome); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetExpenses, SheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	incomeRows := make([][]any, 0, len(incomes))
	for _, in := range incomes {
		incomeRows = append(incomeRows, store.EncodeIncome(in))
	}
	if err := writeTable(f, SheetIncome, headersOf(core.KindIncome), incomeRows); err != nil {
		return err
	}

	expenseRows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		expenseRows = append(expenseRows, store.EncodeExpense(e))
	}
	if err := writeTable(f, SheetExpenses, headersOf(core.KindExpense), expenseRows); err != nil {
		return err
	}

	monthly := ledger.MonthlyTotals(incomes, expenses)
	monthlyRows := make([][]any, 0, len(monthly))
	for _, m := range monthly {
		monthlyRows = append(monthlyRows, []any{
			m.Month.String(),
			m.Income.Round(2).InexactFloat64(),
			m.Expense.Round(2).InexactFloat64(),
			m.Balance.Round(2).InexactFloat64(),
		})
	}
	if err := writeTable(f, SheetMonthly, monthlyHeaders, monthlyRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headersOf(kind core.Kind) []any {
	names := store.SchemaFor(kind).Headers()
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func writeTable(f *excelize.File, sheet string, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
