// Command sheets-init prepares a spreadsheet for the sheets backend: it
// creates the five tabs, writes their header rows and, with --seed, fills
// empty reference tabs with defaults. Existing rows are left alone.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/store/google"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		seed    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "sheets-init",
		Short:        "Create the worksheet tabs and header rows fintrack expects",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg := config.Load()
			// Only the sheets settings matter here, whatever DATA_BACKEND says.
			cfg.DataBackend = config.BackendSheets
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := cli.SetupLoggerTo(os.Stderr, cfg.LogLevel).WithComponent(log.ComponentSheets)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := google.Open(ctx, google.Config{
				SpreadsheetID:   cfg.GoogleSpreadsheetID,
				Sheets:          cfg.SheetNames(),
				CredentialsJSON: []byte(cfg.GoogleServiceAccountJSON),
				CredentialsFile: cfg.GoogleServiceAccountFile,
				Logger:          logger.Slog(),
			})
			if err != nil {
				return fmt.Errorf("open spreadsheet: %w", err)
			}
			defer client.Close()

			report, err := client.EnsureSchema(ctx, seed)
			if err != nil {
				return fmt.Errorf("prepare spreadsheet: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Spreadsheet %s is ready.\n", cfg.GoogleSpreadsheetID)
			printList(out, "Created tabs", report.Created)
			printList(out, "Wrote headers", report.HeadersWritten)
			printList(out, "Seeded", report.Seeded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "fill empty reference tabs with default rows")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall API timeout")
	return cmd
}

func printList(out interface{ Write([]byte) (int, error) }, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(out, "%s: none\n", label)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, strings.Join(items, ", "))
}
