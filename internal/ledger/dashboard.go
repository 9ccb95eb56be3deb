package ledger

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Dashboard is everything the overview page shows for one month. Monthly
// covers every month present in the data, not only Month.
type Dashboard struct {
	Month             core.YearMonth
	Current           MonthTotal
	Monthly           []MonthTotal
	IncomeByCategory  []Share
	ExpenseByCategory []Share
	IncomeByType      []Share
	ExpenseByMethod   []Share
	CreditByCard      []Share
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	TotalCredit       decimal.Decimal
	IncomeCount       int
	ExpenseCount      int
}

// Empty reports whether there is nothing to chart.
func (d Dashboard) Empty() bool {
	return d.IncomeCount == 0 && d.ExpenseCount == 0
}

// BuildDashboard assembles the overview of ym. Breakdowns cover the whole
// history; the current totals cover ym only.
func BuildDashboard(incomes []core.Income, expenses []core.Expense, ym core.YearMonth) Dashboard {
	return Dashboard{
		Month:             ym,
		Current:           CurrentMonth(incomes, expenses, ym),
		Monthly:           MonthlyTotals(incomes, expenses),
		IncomeByCategory:  Shares(GroupByCategory(incomes)),
		ExpenseByCategory: Shares(GroupByCategory(expenses)),
		IncomeByType:      Shares(GroupByIncomeType(incomes)),
		ExpenseByMethod:   Shares(GroupByPaymentMethod(expenses)),
		CreditByCard:      Shares(GroupByCard(expenses)),
		TotalIncome:       Total(incomes),
		TotalExpense:      Total(expenses),
		TotalCredit:       CreditTotal(expenses),
		IncomeCount:       len(incomes),
		ExpenseCount:      len(expenses),
	}
}
