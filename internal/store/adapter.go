package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Adapter converts between the raw positional rows of a Table and the
// typed records of package core.
type Adapter struct {
	table Table
}

var _ Store = (*Adapter)(nil)

func NewAdapter(t Table) *Adapter {
	return &Adapter{table: t}
}

// Fetch reads every data row of kind keyed by canonical column name.
// Blank rows are skipped. A header lacking a required column is a
// DataFormatError.
func (a *Adapter) Fetch(ctx context.Context, kind core.Kind) ([]Row, error) {
	schema := SchemaFor(kind)
	if schema.Width() == 0 {
		return nil, fmt.Errorf("unknown table kind %q", kind)
	}
	raw, err := a.table.ReadRows(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	idx, err := schema.index(raw[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cols := range raw[1:] {
		if blank(cols) {
			continue
		}
		values := make(map[string]string, len(idx))
		for name, pos := range idx {
			values[name] = strings.TrimSpace(safeGet(cols, pos))
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	return rows, nil
}

// Append writes one positional row. The row must have exactly one value
// per schema column.
func (a *Adapter) Append(ctx context.Context, kind core.Kind, row []any) error {
	schema := SchemaFor(kind)
	if schema.Width() == 0 {
		return fmt.Errorf("unknown table kind %q", kind)
	}
	if len(row) != schema.Width() {
		return fmt.Errorf("append %s: got %d values, schema has %d columns", kind, len(row), schema.Width())
	}
	if err := a.table.AppendRow(ctx, kind, row); err != nil {
		return fmt.Errorf("append %s: %w", kind, err)
	}
	return nil
}

func (a *Adapter) Incomes(ctx context.Context) ([]core.Income, error) {
	rows, err := a.Fetch(ctx, core.KindIncome)
	if err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(rows))
	for _, r := range rows {
		in, err := decodeIncome(r)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (a *Adapter) Expenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := a.Fetch(ctx, core.KindExpense)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		e, err := decodeExpense(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (a *Adapter) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := a.Fetch(ctx, core.KindCategory)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		name := r.Get(ColCategoryName)
		if name == "" {
			continue
		}
		typ, _ := core.ParseCategoryType(r.Get(ColType))
		out = append(out, core.Category{Type: typ, Name: name})
	}
	return out, nil
}

func (a *Adapter) PaymentMethods(ctx context.Context) ([]string, error) {
	return a.names(ctx, core.KindPaymentMethod, ColPaymentMethodName)
}

func (a *Adapter) Cards(ctx context.Context) ([]string, error) {
	return a.names(ctx, core.KindCard, ColCardName)
}

func (a *Adapter) AppendIncome(ctx context.Context, in core.Income) error {
	return a.Append(ctx, core.KindIncome, EncodeIncome(in))
}

func (a *Adapter) AppendExpense(ctx context.Context, e core.Expense) error {
	return a.Append(ctx, core.KindExpense, EncodeExpense(e))
}

func (a *Adapter) names(ctx context.Context, kind core.Kind, column string) ([]string, error) {
	rows, err := a.Fetch(ctx, kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Get(column))
	}
	return dedupe(names), nil
}

// EncodeIncome lays out an income in schema order.
func EncodeIncome(in core.Income) []any {
	return []any{
		in.ID,
		in.Date.String(),
		in.Category,
		string(in.Type),
		amountCell(in.Amount),
		in.Description,
	}
}

// EncodeExpense lays out one installment in schema order.
func EncodeExpense(e core.Expense) []any {
	return []any{
		e.ID,
		e.Date.String(),
		e.Category,
		string(e.Method),
		e.Card,
		amountCell(e.Amount),
		e.Count,
		e.Index,
		e.GroupID,
		e.Description,
	}
}

// amountCell writes amounts as numbers so sheet formulas keep working.
func amountCell(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func decodeIncome(r Row) (core.Income, error) {
	date, err := parseDateCell(core.KindIncome, r)
	if err != nil {
		return core.Income{}, err
	}
	amount, err := parseAmountCell(core.KindIncome, r)
	if err != nil {
		return core.Income{}, err
	}
	typ, _ := core.ParseIncomeType(r.Get(ColIncomeType))
	return core.Income{
		ID:          r.Get(ColID),
		Date:        date,
		Category:    r.Get(ColCategory),
		Type:        typ,
		Amount:      amount,
		Description: r.Get(ColDescription),
	}, nil
}

func decodeExpense(r Row) (core.Expense, error) {
	date, err := parseDateCell(core.KindExpense, r)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := parseAmountCell(core.KindExpense, r)
	if err != nil {
		return core.Expense{}, err
	}
	count, err := parseCountCell(r, ColInstallmentCount)
	if err != nil {
		return core.Expense{}, err
	}
	index, err := parseCountCell(r, ColInstallmentIndex)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          r.Get(ColID),
		Date:        date,
		Category:    r.Get(ColCategory),
		Method:      core.PaymentMethod(r.Get(ColPaymentMethod)),
		Card:        r.Get(ColCard),
		Amount:      amount,
		Count:       count,
		Index:       index,
		GroupID:     r.Get(ColGroupID),
		Description: r.Get(ColDescription),
	}, nil
}

func parseDateCell(kind core.Kind, r Row) (core.Date, error) {
	v := r.Get(ColDate)
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &core.DataFormatError{Kind: kind, Line: r.Line, Column: ColDate, Value: v, Err: err}
	}
	return d, nil
}

func parseAmountCell(kind core.Kind, r Row) (decimal.Decimal, error) {
	v := r.Get(ColAmount)
	d, err := core.ParseAmount(v)
	if err != nil {
		return decimal.Zero, &core.DataFormatError{Kind: kind, Line: r.Line, Column: ColAmount, Value: v, Err: err}
	}
	return d, nil
}

// parseCountCell reads installment numbers. Blank cells mean a single
// installment; "3.0" is accepted as 3.
func parseCountCell(r Row, column string) (int, error) {
	v := r.Get(column)
	if v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &core.DataFormatError{Kind: core.KindExpense, Line: r.Line, Column: column, Value: v, Err: err}
		}
		n = int(f)
	}
	if n < 1 {
		return 0, &core.DataFormatError{Kind: core.KindExpense, Line: r.Line, Column: column, Value: v, Err: fmt.Errorf("must be at least 1")}
	}
	return n, nil
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// dedupe drops blanks and repeats, preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
