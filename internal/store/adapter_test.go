package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

// fakeTable is an in-memory Table that records calls.
type fakeTable struct {
	rows    map[core.Kind][][]string
	reads   map[core.Kind]int
	readErr error
	failOn  int // fail the n-th append, 1-based; zero never fails
	appends int
}

func newFakeTable() *fakeTable {
	return &fakeTable{rows: map[core.Kind][][]string{}, reads: map[core.Kind]int{}}
}

func (f *fakeTable) ReadRows(_ context.Context, kind core.Kind) ([][]string, error) {
	f.reads[kind]++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]string, len(f.rows[kind]))
	copy(out, f.rows[kind])
	return out, nil
}

func (f *fakeTable) AppendRow(_ context.Context, kind core.Kind, row []any) error {
	f.appends++
	if f.failOn > 0 && f.appends == f.failOn {
		return errors.New("quota exceeded")
	}
	if len(f.rows[kind]) == 0 {
		f.rows[kind] = [][]string{SchemaFor(kind).Headers()}
	}
	cols := make([]string, len(row))
	for i, v := range row {
		cols[i] = fmt.Sprint(v)
	}
	f.rows[kind] = append(f.rows[kind], cols)
	return nil
}

func TestFetchMapsByHeaderAndAliases(t *testing.T) {
	tbl := newFakeTable()
	tbl.rows[core.KindIncome] = [][]string{
		{"ID", "Data", "Categoria", "Tipo_Receita", "Valor", "Descrição"},
		{"a1", "2024-01-05", "Salary", "Fixa", "1.000,50", "January"},
		{"", "", "", "", "", ""},
		{"a2", "15/01/2024", "Gig", "Variável", "200"},
	}
	a := NewAdapter(tbl)

	rows, err := a.Fetch(context.Background(), core.KindIncome)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "Salary", rows[0].Get(ColCategory))
	assert.Equal(t, "", rows[1].Get(ColDescription), "short rows read missing cells as empty")

	incomes, err := a.Incomes(context.Background())
	require.NoError(t, err)
	require.Len(t, incomes, 2)
	assert.Equal(t, core.IncomeFixed, incomes[0].Type)
	assert.True(t, incomes[0].Amount.Equal(decimal.RequireFromString("1000.50")))
	assert.Equal(t, "2024-01-15", incomes[1].Date.String())
	assert.Equal(t, core.IncomeVariable, incomes[1].Type)
}

func TestFetchEmptyTable(t *testing.T) {
	a := NewAdapter(newFakeTable())
	incomes, err := a.Incomes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, incomes)

	expenses, err := a.Expenses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestFetchReorderedColumns(t *testing.T) {
	tbl := newFakeTable()
	tbl.rows[core.KindExpense] = [][]string{
		{"Amount", "Date", "InstallmentIndex", "InstallmentCount", "Category"},
		{"10", "2024-02-01", "2", "3", "Food"},
	}
	expenses, err := NewAdapter(tbl).Expenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 3, expenses[0].Count)
	assert.Equal(t, 2, expenses[0].Index)
	assert.Equal(t, "Food", expenses[0].Category)
}

func TestDataFormatErrors(t *testing.T) {
	cases := map[string]struct {
		kind   core.Kind
		rows   [][]string
		column string
		line   int
	}{
		"bad date": {
			kind:   core.KindIncome,
			rows:   [][]string{SchemaFor(core.KindIncome).Headers(), {"a", "2024-01-01", "c", "Fixed", "1", ""}, {"b", "soon", "c", "Fixed", "1", ""}},
			column: ColDate,
			line:   3,
		},
		"bad amount": {
			kind:   core.KindExpense,
			rows:   [][]string{SchemaFor(core.KindExpense).Headers(), {"a", "2024-01-01", "c", "PIX", "", "ten", "1", "1", "g", ""}},
			column: ColAmount,
			line:   2,
		},
		"bad installment": {
			kind:   core.KindExpense,
			rows:   [][]string{SchemaFor(core.KindExpense).Headers(), {"a", "2024-01-01", "c", "PIX", "", "10", "x", "1", "g", ""}},
			column: ColInstallmentCount,
			line:   2,
		},
		"missing amount column": {
			kind:   core.KindIncome,
			rows:   [][]string{{"ID", "Date", "Category"}, {"a", "2024-01-01", "c"}},
			column: ColAmount,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tbl := newFakeTable()
			tbl.rows[tc.kind] = tc.rows
			a := NewAdapter(tbl)

			var err error
			if tc.kind == core.KindIncome {
				_, err = a.Incomes(context.Background())
			} else {
				_, err = a.Expenses(context.Background())
			}
			var dfe *core.DataFormatError
			require.ErrorAs(t, err, &dfe)
			assert.Equal(t, tc.column, dfe.Column)
			assert.Equal(t, tc.line, dfe.Line)
			assert.Equal(t, tc.kind, dfe.Kind)
		})
	}
}

func TestBlankInstallmentCellsReadAsSingle(t *testing.T) {
	tbl := newFakeTable()
	tbl.rows[core.KindExpense] = [][]string{
		SchemaFor(core.KindExpense).Headers(),
		{"a", "2024-01-01", "Food", "PIX", "", "10", "", "", "", "Lunch"},
		{"b", "2024-01-02", "Food", "PIX", "", "12", "2.0", "1", "g", ""},
	}
	expenses, err := NewAdapter(tbl).Expenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expenses[0].Count)
	assert.Equal(t, 1, expenses[0].Index)
	assert.Equal(t, 2, expenses[1].Count)
}

func TestReadErrorPropagates(t *testing.T) {
	tbl := newFakeTable()
	tbl.readErr = errors.New("connection refused")
	_, err := NewAdapter(tbl).Incomes(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, tbl.readErr)
	assert.False(t, core.IsDataFormat(err))
}

func TestReferenceReaders(t *testing.T) {
	tbl := newFakeTable()
	tbl.rows[core.KindCategory] = [][]string{
		{"Tipo", "Nome_Categoria"},
		{"Receita", "Salary"},
		{"Despesa", "Food"},
		{"Expense", ""},
	}
	tbl.rows[core.KindPaymentMethod] = [][]string{{"Tipo_Pagamento"}, {"PIX"}, {"Credit"}, {"PIX"}, {" "}}
	tbl.rows[core.KindCard] = [][]string{{"CardName"}, {"Nubank"}}
	a := NewAdapter(tbl)
	ctx := context.Background()

	cats, err := a.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{Type: core.CategoryIncome, Name: "Salary"}, {Type: core.CategoryExpense, Name: "Food"}}, cats)

	methods, err := a.PaymentMethods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PIX", "Credit"}, methods)

	cards, err := a.Cards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nubank"}, cards)
}

func TestAppendIsPositional(t *testing.T) {
	tbl := newFakeTable()
	a := NewAdapter(tbl)
	ctx := context.Background()

	e := core.Expense{
		ID: "id1", Date: core.NewDate(2024, time.March, 2), Category: "Food", Method: core.PaymentCredit,
		Card: "Inter", Amount: decimal.RequireFromString("33.333"), Count: 3, Index: 1, GroupID: "grp", Description: "x - Installment 1/3",
	}
	require.NoError(t, a.AppendExpense(ctx, e))
	assert.Equal(t, []string{"id1", "2024-03-02", "Food", "Credit", "Inter", "33.33", "3", "1", "grp", "x - Installment 1/3"}, tbl.rows[core.KindExpense][1])

	got, err := a.Expenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "grp", got[0].GroupID)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("33.33")))

	in := core.Income{ID: "i1", Date: core.NewDate(2024, time.March, 1), Category: "Salary", Type: core.IncomeFixed, Amount: decimal.NewFromInt(5000)}
	require.NoError(t, a.AppendIncome(ctx, in))
	assert.Equal(t, []string{"i1", "2024-03-01", "Salary", "Fixed", "5000", ""}, tbl.rows[core.KindIncome][1])
}

func TestAppendRejectsWrongWidth(t *testing.T) {
	a := NewAdapter(newFakeTable())
	err := a.Append(context.Background(), core.KindCard, []any{"Nubank", "extra"})
	assert.Error(t, err)

	err = a.Append(context.Background(), core.Kind("ledger"), []any{"x"})
	assert.Error(t, err)
}
