package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxInstallments bounds the installment count accepted on submission.
const MaxInstallments = 120

const (
	KindIncome        Kind = "income"
	KindExpense       Kind = "expense"
	KindCategory      Kind = "category"
	KindPaymentMethod Kind = "payment_method"
	KindCard          Kind = "card"

	IncomeFixed    IncomeType = "Fixed"
	IncomeVariable IncomeType = "Variable"

	CategoryIncome  CategoryType = "Income"
	CategoryExpense CategoryType = "Expense"

	PaymentPIX    PaymentMethod = "PIX"
	PaymentCash   PaymentMethod = "Cash"
	PaymentDebit  PaymentMethod = "Debit"
	PaymentCredit PaymentMethod = "Credit"
)

type (
	// Kind names one of the five tables kept in the store.
	Kind string

	IncomeType    string
	CategoryType  string
	PaymentMethod string

	// Income is one row of the income table.
	Income struct {
		ID          string
		Date        Date
		Category    string
		Type        IncomeType
		Amount      decimal.Decimal
		Description string
	}

	// Expense is one installment of a logical expense. Expenses created
	// together share GroupID and carry their 1-based Index out of Count.
	Expense struct {
		ID          string
		Date        Date
		Category    string
		Method      PaymentMethod
		Card        string
		Amount      decimal.Decimal
		Count       int
		Index       int
		GroupID     string
		Description string
	}

	Category struct {
		Type CategoryType
		Name string
	}

	// Entry is the view of a transaction the aggregation functions need.
	Entry interface {
		EntryDate() Date
		EntryCategory() string
		EntryAmount() decimal.Decimal
	}
)

// Kinds lists every table kind in schema order.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense, KindCategory, KindPaymentMethod, KindCard}
}

func (k Kind) String() string { return string(k) }

// IsTransaction reports whether rows of this kind are income or expense records.
func (k Kind) IsTransaction() bool {
	return k == KindIncome || k == KindExpense
}

func (i Income) EntryDate() Date               { return i.Date }
func (i Income) EntryCategory() string         { return i.Category }
func (i Income) EntryAmount() decimal.Decimal  { return i.Amount }
func (e Expense) EntryDate() Date              { return e.Date }
func (e Expense) EntryCategory() string        { return e.Category }
func (e Expense) EntryAmount() decimal.Decimal { return e.Amount }

// IsCredit reports whether the expense was paid by credit card.
func (e Expense) IsCredit() bool { return e.Method.IsCredit() }

// ParseIncomeType maps a stored or submitted value onto the enumeration.
// Portuguese labels written by older sheets are accepted.
func ParseIncomeType(s string) (IncomeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixa", "fixo":
		return IncomeFixed, true
	case "variable", "variável", "variavel":
		return IncomeVariable, true
	}
	return IncomeType(strings.TrimSpace(s)), false
}

// ParseCategoryType maps a stored value onto the enumeration.
func ParseCategoryType(s string) (CategoryType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita":
		return CategoryIncome, true
	case "expense", "despesa":
		return CategoryExpense, true
	}
	return CategoryType(strings.TrimSpace(s)), false
}

// IsCredit matches the Credit method, including the Portuguese label.
func (p PaymentMethod) IsCredit() bool {
	switch strings.ToLower(strings.TrimSpace(string(p))) {
	case "credit", "crédito", "credito":
		return true
	}
	return false
}

func (p PaymentMethod) String() string { return string(p) }

// DefaultPaymentMethods is used when the payment method table is empty.
func DefaultPaymentMethods() []string {
	return []string{string(PaymentPIX), string(PaymentCash), string(PaymentDebit), string(PaymentCredit)}
}

// DefaultIncomeCategories seeds a fresh workbook.
func DefaultIncomeCategories() []string {
	return []string{"Salary", "Freelance"}
}

// DefaultExpenseCategories seeds a fresh workbook.
func DefaultExpenseCategories() []string {
	return []string{"Food", "Transport", "Housing"}
}

// DefaultCards is used when the card table is empty.
func DefaultCards() []string {
	return []string{"Nubank", "Inter", "Other"}
}
