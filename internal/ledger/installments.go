package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// InstallmentSpacing is the number of days between consecutive installments.
// It approximates a month and does not follow calendar month ends.
const InstallmentSpacing = 30

// GenerateInstallments splits one expense into count installments.
//
// Installment i is dated date + 30×(i−1) days and carries
// round(total/count, 2); the rounding remainder is not redistributed.
// Every installment gets its own ID and all share one group ID, both drawn
// from newID. A nil newID uses core.NewID. Count below 1 yields no records.
func GenerateInstallments(
	date core.Date,
	category string,
	method core.PaymentMethod,
	card string,
	total decimal.Decimal,
	count int,
	description string,
	newID func() string,
) []core.Expense {
	if count < 1 {
		return nil
	}
	if newID == nil {
		newID = core.NewID
	}
	amount := InstallmentAmount(total, count)
	group := newID()

	out := make([]core.Expense, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, core.Expense{
			ID:          newID(),
			Date:        date.AddDays(InstallmentSpacing * (i - 1)),
			Category:    category,
			Method:      method,
			Card:        card,
			Amount:      amount,
			Count:       count,
			Index:       i,
			GroupID:     group,
			Description: fmt.Sprintf("%s - Installment %d/%d", description, i, count),
		})
	}
	return out
}

// InstallmentAmount is the value of each installment, rounded half away
// from zero to cents.
func InstallmentAmount(total decimal.Decimal, count int) decimal.Decimal {
	if count < 1 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}
