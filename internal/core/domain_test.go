package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := NewDate(2024, time.March, 5)
	for _, in := range []string{"2024-03-05", "2024-03-05 13:45:00", "2024-03-05T08:00:00Z", "05/03/2024", "5/3/2024", "05/3/2024", "5/03/2024", " 2024-03-05 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s parsed as %s", in, got)
	}

	_, err := ParseDate("March 5")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateAddDaysAndYearMonth(t *testing.T) {
	d := NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-03-01", d.AddDays(30).String())
	assert.Equal(t, YearMonth{Year: 2024, Month: time.January}, d.YearMonth())
	assert.Equal(t, "2024-01", d.YearMonth().String())
	assert.Equal(t, "Jan 2024", d.YearMonth().Label())
}

func TestYearMonthOrdering(t *testing.T) {
	a := YearMonth{Year: 2023, Month: time.December}
	b := YearMonth{Year: 2024, Month: time.January}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Less(t, a.String(), b.String())

	ym, err := ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2024, Month: time.February}, ym)

	_, err = ParseYearMonth("2024-13")
	assert.Error(t, err)
}

func TestYearMonthAddMonths(t *testing.T) {
	jan := YearMonth{Year: 2024, Month: time.January}
	assert.Equal(t, YearMonth{Year: 2023, Month: time.December}, jan.AddMonths(-1))
	assert.Equal(t, YearMonth{Year: 2024, Month: time.February}, jan.AddMonths(1))
	assert.Equal(t, YearMonth{Year: 2025, Month: time.January}, jan.AddMonths(12))

	dec := YearMonth{Year: 2024, Month: time.December}
	assert.Equal(t, YearMonth{Year: 2025, Month: time.January}, dec.AddMonths(1))
	assert.Equal(t, dec, dec.AddMonths(0))
}

func TestParseIncomeType(t *testing.T) {
	cases := []struct {
		in   string
		want IncomeType
		ok   bool
	}{
		{"Fixed", IncomeFixed, true},
		{"fixa", IncomeFixed, true},
		{"Variável", IncomeVariable, true},
		{"variable", IncomeVariable, true},
		{"Bonus", IncomeType("Bonus"), false},
	}
	for _, tc := range cases {
		got, ok := ParseIncomeType(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestParseCategoryType(t *testing.T) {
	got, ok := ParseCategoryType("Receita")
	assert.True(t, ok)
	assert.Equal(t, CategoryIncome, got)

	got, ok = ParseCategoryType("despesa")
	assert.True(t, ok)
	assert.Equal(t, CategoryExpense, got)

	_, ok = ParseCategoryType("Transfer")
	assert.False(t, ok)
}

func TestPaymentMethodIsCredit(t *testing.T) {
	assert.True(t, PaymentCredit.IsCredit())
	assert.True(t, PaymentMethod("Crédito").IsCredit())
	assert.True(t, PaymentMethod(" credit ").IsCredit())
	assert.False(t, PaymentPIX.IsCredit())
	assert.False(t, PaymentDebit.IsCredit())
}

func validExpense() ExpenseInput {
	return ExpenseInput{
		Date:         NewDate(2024, time.January, 15),
		Category:     "Food",
		Method:       PaymentCredit,
		Card:         "Nubank",
		Amount:       decimal.RequireFromString("100"),
		Installments: 3,
		Description:  "groceries",
	}
}

func TestExpenseInputValidate(t *testing.T) {
	require.NoError(t, validExpense().Validate())

	cases := map[string]struct {
		mutate func(*ExpenseInput)
		field  string
		err    error
	}{
		"zero amount":      {func(in *ExpenseInput) { in.Amount = decimal.Zero }, "amount", ErrInvalidAmount},
		"negative amount":  {func(in *ExpenseInput) { in.Amount = decimal.NewFromInt(-1) }, "amount", ErrInvalidAmount},
		"no category":      {func(in *ExpenseInput) { in.Category = "  " }, "category", ErrEmptyCategory},
		"no method":        {func(in *ExpenseInput) { in.Method = "" }, "payment_method", ErrEmptyPaymentMethod},
		"credit no card":   {func(in *ExpenseInput) { in.Card = "" }, "card", ErrCardRequired},
		"zero installment": {func(in *ExpenseInput) { in.Installments = 0 }, "installments", ErrInvalidInstallments},
		"too many":         {func(in *ExpenseInput) { in.Installments = MaxInstallments + 1 }, "installments", ErrInvalidInstallments},
		"zero date":        {func(in *ExpenseInput) { in.Date = Date{} }, "date", ErrInvalidDate},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validExpense()
			tc.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestInputDescriptionUnbounded(t *testing.T) {
	long := strings.Repeat("x", 5000)

	exp := validExpense()
	exp.Description = long
	assert.NoError(t, exp.Validate())

	inc := IncomeInput{Date: NewDate(2024, time.January, 5), Category: "Salary", Type: IncomeFixed, Amount: decimal.NewFromInt(10), Description: long}
	assert.NoError(t, inc.Validate())
}

func TestExpenseInputCardOnlyRequiredForCredit(t *testing.T) {
	in := validExpense()
	in.Method = PaymentPIX
	in.Card = ""
	assert.NoError(t, in.Validate())
}

func TestExpenseInputNormalizeDropsCardForNonCredit(t *testing.T) {
	in := validExpense()
	in.Method = " Debit "
	in.Category = " Food "
	out := in.Normalize()
	assert.Equal(t, PaymentDebit, out.Method)
	assert.Equal(t, "Food", out.Category)
	assert.Empty(t, out.Card)

	assert.Equal(t, "Nubank", validExpense().Normalize().Card)
}

func TestIncomeInputValidate(t *testing.T) {
	in := IncomeInput{
		Date:     NewDate(2024, time.January, 1),
		Category: "Salary",
		Type:     "Fixa",
		Amount:   decimal.NewFromInt(5000),
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, IncomeFixed, in.Normalize().Type)

	in.Type = "Other"
	assert.ErrorIs(t, in.Validate(), ErrInvalidIncomeType)

	in.Type = IncomeVariable
	in.Amount = decimal.Zero
	assert.ErrorIs(t, in.Validate(), ErrInvalidAmount)
}

func TestDataFormatErrorMessage(t *testing.T) {
	err := error(&DataFormatError{Kind: KindExpense, Line: 4, Column: "Amount", Value: "abc", Err: errors.New("bad")})
	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), `"abc"`)
	assert.True(t, IsDataFormat(err))

	hdr := &DataFormatError{Kind: KindIncome, Column: "Date", Err: errors.New("missing column")}
	assert.NotContains(t, hdr.Error(), "line")
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Len(t, id, IDLength)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 95)
}
