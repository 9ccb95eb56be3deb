package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

// opener builds the App a command runs against.
type opener func(ctx context.Context, logLevel string) (*cli.App, error)

type rootOptions struct {
	logLevel string
	open     opener
	app      *cli.App
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:   "fintrack-cli",
		Short: "Record and inspect personal finances from the terminal",
		Long: `fintrack-cli reads and writes the same income and expense tables as the
fintrack dashboard. The backend is chosen with DATA_BACKEND, as for the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.open(cmd.Context(), opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize backend: %w", err)
			}
			opts.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	root.AddCommand(summaryCmd(opts))
	root.AddCommand(incomeCmd(opts))
	root.AddCommand(expenseCmd(opts))
	root.AddCommand(historyCmd(opts))
	root.AddCommand(referenceCmd(opts))
	root.AddCommand(exportCmd(opts))
	return root
}

// openFromEnv loads .env and the environment. Logs go to stderr so command
// output stays clean.
func openFromEnv(ctx context.Context, logLevel string) (*cli.App, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := cli.SetupLoggerTo(os.Stderr, logLevel)
	return cli.Bootstrap(ctx, cfg, logger, cli.Options{Source: "fintrack-cli"})
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(openFromEnv).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
