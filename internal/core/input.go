package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// IncomeInput is a user submission for a new income record.
	IncomeInput struct {
		Date        Date
		Category    string
		Type        IncomeType
		Amount      decimal.Decimal
		Description string
	}

	// ExpenseInput is a user submission for a new expense, before it is
	// split into installments. Amount is the total across all installments.
	ExpenseInput struct {
		Date         Date
		Category     string
		Method       PaymentMethod
		Card         string
		Amount       decimal.Decimal
		Installments int
		Description  string
	}
)

func (in IncomeInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if _, ok := ParseIncomeType(string(in.Type)); !ok {
		return invalid("type", ErrInvalidIncomeType)
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}

func (in ExpenseInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if strings.TrimSpace(string(in.Method)) == "" {
		return invalid("payment_method", ErrEmptyPaymentMethod)
	}
	if in.Method.IsCredit() && strings.TrimSpace(in.Card) == "" {
		return invalid("card", ErrCardRequired)
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", ErrInvalidAmount)
	}
	if in.Installments < 1 || in.Installments > MaxInstallments {
		return invalid("installments", ErrInvalidInstallments)
	}
	return nil
}

// Normalize trims free-text fields and canonicalizes the income type.
func (in IncomeInput) Normalize() IncomeInput {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if t, ok := ParseIncomeType(string(in.Type)); ok {
		in.Type = t
	}
	return in
}

// Normalize trims free-text fields. The card is dropped unless the
// expense is paid by credit.
func (in ExpenseInput) Normalize() ExpenseInput {
	in.Category = strings.TrimSpace(in.Category)
	in.Method = PaymentMethod(strings.TrimSpace(string(in.Method)))
	in.Card = strings.TrimSpace(in.Card)
	in.Description = strings.TrimSpace(in.Description)
	if !in.Method.IsCredit() {
		in.Card = ""
	}
	return in
}
