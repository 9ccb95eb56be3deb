package http

import (
	"net/http"

	"fintrack/internal/core"
)

type dashboardView struct {
	page
	Month    core.YearMonth
	Prev     string
	Next     string
	Income   string
	Expense  string
	Balance  string
	Negative bool
	Empty    bool
	Chart    []monthBar

	IncomeByCategory  []shareRow
	ExpenseByCategory []shareRow
	IncomeByType      []shareRow
	ExpenseByMethod   []shareRow
	CreditByCard      []shareRow
	TotalCredit       string
}

// handleDashboard renders the overview for ?month=YYYY-MM, defaulting to the
// current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ym := ParseMonthParam(r.URL.Query(), s.today())

	d, err := s.queries.Dashboard(r.Context(), ym)
	if err != nil {
		s.loadFailed(w, r, "dashboard", err)
		return
	}

	// Reference problems are shown on every page, not only on the forms.
	var warnings []string
	if ref, err := s.queries.Reference(r.Context()); err == nil {
		warnings = warningsOf(ref.Warnings)
	}

	s.render(w, r, "dashboard", dashboardView{
		page:              page{Title: ym.Label(), Active: "dashboard", Warnings: warnings},
		Month:             ym,
		Prev:              ym.AddMonths(-1).String(),
		Next:              ym.AddMonths(1).String(),
		Income:            core.FormatBRL(d.Current.Income),
		Expense:           core.FormatBRL(d.Current.Expense),
		Balance:           core.FormatBRL(d.Current.Balance),
		Negative:          d.Current.Balance.IsNegative(),
		Empty:             d.Empty(),
		Chart:             monthBars(d.Monthly),
		IncomeByCategory:  shareRows(d.IncomeByCategory),
		ExpenseByCategory: shareRows(d.ExpenseByCategory),
		IncomeByType:      shareRows(d.IncomeByType),
		ExpenseByMethod:   shareRows(d.ExpenseByMethod),
		CreditByCard:      shareRows(d.CreditByCard),
		TotalCredit:       core.FormatBRL(d.TotalCredit),
	})
}
