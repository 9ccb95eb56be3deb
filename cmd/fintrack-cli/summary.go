package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the totals of a month and the monthly evolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ym := core.CurrentYearMonth()
			if month != "" {
				parsed, err := core.ParseYearMonth(month)
				if err != nil {
					return err
				}
				ym = parsed
			}

			d, err := opts.app.Queries.Dashboard(cmd.Context(), ym)
			if err != nil {
				return fmt.Errorf("failed to build summary: %w", err)
			}
			return writeSummary(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to summarize as YYYY-MM (default: current month)")
	return cmd
}

func writeSummary(out io.Writer, d ledger.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%s\t\n", d.Month.Label())
	fmt.Fprintf(w, "Income\t%s\t\n", core.FormatBRL(d.Current.Income))
	fmt.Fprintf(w, "Expense\t%s\t\n", core.FormatBRL(d.Current.Expense))
	fmt.Fprintf(w, "Balance\t%s\t\n", core.FormatBRL(d.Current.Balance))
	fmt.Fprintf(w, "Credit (all time)\t%s\t\n", core.FormatBRL(d.TotalCredit))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(d.Monthly) == 0 {
		_, err := fmt.Fprintln(out, "\nNo transactions recorded.")
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Month\tIncome\tExpense\tBalance\t")
	for _, m := range d.Monthly {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m.Month,
			core.FormatBRL(m.Income), core.FormatBRL(m.Expense), core.FormatBRL(m.Balance))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return writeShares(out, "Expense by category", d.ExpenseByCategory)
}

func writeShares(out io.Writer, title string, shares []ledger.Share) error {
	if len(shares) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, sh := range shares {
		fmt.Fprintf(w, "  %s\t%s\n", sh.Name, core.FormatBRL(sh.Amount))
	}
	return w.Flush()
}
