package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/store"
)

// Reference is the reference data offered by the entry forms.
type Reference struct {
	IncomeCategories  []string
	ExpenseCategories []string
	PaymentMethods    []string
	Cards             []string
	// Warnings holds one *core.ConfigurationError per empty list.
	Warnings []error
}

// History is every transaction, newest first.
type History struct {
	Incomes      []core.Income
	Expenses     []core.Expense
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	TotalCredit  decimal.Decimal
}

// QueryService builds the read models over a store.
type QueryService struct {
	reader      store.Reader
	invalidator store.Invalidator
}

// NewQueryService reads from r. When r also implements store.Invalidator,
// ClearCache drops its cached reads.
func NewQueryService(r store.Reader) *QueryService {
	q := &QueryService{reader: r}
	if inv, ok := r.(store.Invalidator); ok {
		q.invalidator = inv
	}
	return q
}

// Reference loads categories, payment methods and cards. Empty payment
// method and card lists fall back to the defaults and still raise a
// warning.
func (q *QueryService) Reference(ctx context.Context) (Reference, error) {
	var (
		categories []core.Category
		methods    []string
		cards      []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = q.reader.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		methods, err = q.reader.PaymentMethods(gctx)
		return err
	})
	g.Go(func() (err error) {
		cards, err = q.reader.Cards(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Reference{}, fmt.Errorf("load reference data: %w", err)
	}

	var ref Reference
	for _, c := range categories {
		switch c.Type {
		case core.CategoryIncome:
			ref.IncomeCategories = append(ref.IncomeCategories, c.Name)
		case core.CategoryExpense:
			ref.ExpenseCategories = append(ref.ExpenseCategories, c.Name)
		}
	}

	if len(ref.IncomeCategories) == 0 {
		ref.Warnings = append(ref.Warnings, &core.ConfigurationError{Kind: core.KindCategory, Message: "no income categories configured"})
	}
	if len(ref.ExpenseCategories) == 0 {
		ref.Warnings = append(ref.Warnings, &core.ConfigurationError{Kind: core.KindCategory, Message: "no expense categories configured"})
	}

	ref.PaymentMethods = methods
	if len(methods) == 0 {
		ref.PaymentMethods = core.DefaultPaymentMethods()
		ref.Warnings = append(ref.Warnings, &core.ConfigurationError{Kind: core.KindPaymentMethod, Message: "no payment methods configured, using defaults"})
	}
	ref.Cards = cards
	if len(cards) == 0 {
		ref.Cards = core.DefaultCards()
		ref.Warnings = append(ref.Warnings, &core.ConfigurationError{Kind: core.KindCard, Message: "no cards configured, using defaults"})
	}
	return ref, nil
}

// Dashboard loads both transaction tables concurrently and aggregates them
// for ym.
func (q *QueryService) Dashboard(ctx context.Context, ym core.YearMonth) (ledger.Dashboard, error) {
	incomes, expenses, err := q.transactions(ctx)
	if err != nil {
		return ledger.Dashboard{}, err
	}
	return ledger.BuildDashboard(incomes, expenses, ym), nil
}

// History returns every income and expense, newest first.
func (q *QueryService) History(ctx context.Context) (History, error) {
	incomes, expenses, err := q.transactions(ctx)
	if err != nil {
		return History{}, err
	}

	sort.SliceStable(incomes, func(i, j int) bool { return incomes[i].Date.After(incomes[j].Date) })
	sort.SliceStable(expenses, func(i, j int) bool {
		if expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Index < expenses[j].Index
		}
		return expenses[i].Date.After(expenses[j].Date)
	})

	return History{
		Incomes:      incomes,
		Expenses:     expenses,
		TotalIncome:  ledger.Total(incomes),
		TotalExpense: ledger.Total(expenses),
		TotalCredit:  ledger.CreditTotal(expenses),
	}, nil
}

// ClearCache drops cached reads. It reports false when the store is not
// cached.
func (q *QueryService) ClearCache() bool {
	if q.invalidator == nil {
		return false
	}
	q.invalidator.Invalidate()
	return true
}

func (q *QueryService) transactions(ctx context.Context) ([]core.Income, []core.Expense, error) {
	var (
		incomes  []core.Income
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incomes, err = q.reader.Incomes(gctx)
		if err != nil {
			return fmt.Errorf("load incomes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		expenses, err = q.reader.Expenses(gctx)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}
