package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// entryFlags are shared by income add and expense add.
type entryFlags struct {
	date        string
	category    string
	amount      string
	description string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 1234.56 or 1.234,56")
	cmd.Flags().StringVar(&f.description, "description", "", "free-text description")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *entryFlags) parse() (core.Date, error) {
	if f.date == "" {
		return core.Today(), nil
	}
	d, err := core.ParseDate(f.date)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	return d, nil
}

func incomeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage income records",
	}
	cmd.AddCommand(incomeAddCmd(opts))
	return cmd
}

func incomeAddCmd(opts *rootOptions) *cobra.Command {
	var (
		flags      entryFlags
		incomeType string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := flags.parse()
			if err != nil {
				return err
			}
			amount, err := core.ParsePositiveAmount(flags.amount)
			if err != nil {
				return &core.ValidationError{Field: "amount", Err: err}
			}

			income, err := opts.app.Transactions.RecordIncome(cmd.Context(), core.IncomeInput{
				Date:        date,
				Category:    flags.category,
				Type:        core.IncomeType(incomeType),
				Amount:      amount,
				Description: flags.description,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded income %s: %s %s on %s\n",
				income.ID, income.Category, core.FormatBRL(income.Amount), income.Date)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&incomeType, "type", string(core.IncomeFixed), "income type (Fixed or Variable)")
	return cmd
}

func expenseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expense records",
	}
	cmd.AddCommand(expenseAddCmd(opts))
	return cmd
}

func expenseAddCmd(opts *rootOptions) *cobra.Command {
	var (
		flags        entryFlags
		method       string
		card         string
		installments int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense, split into installments when asked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := flags.parse()
			if err != nil {
				return err
			}
			amount, err := core.ParsePositiveAmount(flags.amount)
			if err != nil {
				return &core.ValidationError{Field: "amount", Err: err}
			}

			records, err := opts.app.Transactions.RecordExpense(cmd.Context(), core.ExpenseInput{
				Date:         date,
				Category:     flags.category,
				Method:       core.PaymentMethod(method),
				Card:         card,
				Amount:       amount,
				Installments: installments,
				Description:  flags.description,
			})

			var partial *services.PartialWriteError
			if err != nil && !errors.As(err, &partial) {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tINSTALLMENT\tAMOUNT")
				for _, e := range records {
					fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", e.ID, e.Date, e.Index, e.Count, core.FormatBRL(e.Amount))
				}
				if flushErr := w.Flush(); flushErr != nil {
					return flushErr
				}
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&method, "method", string(core.PaymentPIX), "payment method")
	cmd.Flags().StringVar(&card, "card", "", "card, required for Credit")
	cmd.Flags().IntVar(&installments, "installments", 1, "number of installments")
	return cmd
}
