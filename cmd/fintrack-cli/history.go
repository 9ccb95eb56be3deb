package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded income and expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			showIncome := kind == "" || kind == string(core.KindIncome)
			showExpense := kind == "" || kind == string(core.KindExpense)
			if !showIncome && !showExpense {
				return fmt.Errorf("invalid --kind %q: must be income or expense", kind)
			}

			h, err := opts.app.Queries.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if showIncome {
				fmt.Fprintln(w, "DATE\tCATEGORY\tTYPE\tAMOUNT\tDESCRIPTION")
				for _, in := range h.Incomes {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", in.Date, in.Category, in.Type, core.FormatBRL(in.Amount), in.Description)
				}
				fmt.Fprintf(w, "\tTotal\t\t%s\t\n", core.FormatBRL(h.TotalIncome))
			}
			if showIncome && showExpense {
				fmt.Fprintln(w)
			}
			if showExpense {
				fmt.Fprintln(w, "DATE\tCATEGORY\tMETHOD\tCARD\tAMOUNT\tINSTALLMENT\tDESCRIPTION")
				for _, e := range h.Expenses {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
						e.Date, e.Category, e.Method, e.Card, core.FormatBRL(e.Amount), e.Index, e.Count, e.Description)
				}
				fmt.Fprintf(w, "\tTotal\t\t\t%s\t\t\n", core.FormatBRL(h.TotalExpense))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only show income or expense")
	return cmd
}

func referenceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "List categories, payment methods and cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := opts.app.Queries.Reference(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load reference data: %w", err)
			}
			for _, warn := range ref.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warn)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, row := range []struct {
				name   string
				values []string
			}{
				{"Income categories", ref.IncomeCategories},
				{"Expense categories", ref.ExpenseCategories},
				{"Payment methods", ref.PaymentMethods},
				{"Cards", ref.Cards},
			} {
				fmt.Fprintf(w, "%s\t%d\n", row.name, len(row.values))
				for _, v := range row.values {
					fmt.Fprintf(w, "  %s\t\n", v)
				}
			}
			return w.Flush()
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full history to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := opts.app.Queries.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			var buf bytes.Buffer
			if err := export.WriteHistoryXLSX(&buf, h.Incomes, h.Expenses); err != nil {
				return fmt.Errorf("failed to build workbook: %w", err)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d income and %d expense rows to %s\n",
				len(h.Incomes), len(h.Expenses), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "fintrack.xlsx", "output file")
	return cmd
}
