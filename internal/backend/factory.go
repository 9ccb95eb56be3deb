package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store/google"
	"fintrack/internal/store/memory"
	"fintrack/internal/store/sqlite"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLite:
		return f.createSQLite(config)
	case Sheets:
		return f.createSheets(ctx, config)
	case Memory:
		return f.createMemory(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLite(config Config) (*Result, error) {
	repo, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite backend: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Type:       SQLite,
		Table:      repo,
		Pinger:     repo,
		SheetNames: kindNames(),
		Cleanup:    repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.Open(ctx, google.Config{
		SpreadsheetID:   config.SpreadsheetID,
		Sheets:          config.SheetNames,
		CredentialsJSON: []byte(config.CredentialsJSON),
		CredentialsFile: config.CredentialsFile,
		Logger:          f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
	}

	names := make(map[core.Kind]string, len(core.Kinds()))
	for _, k := range core.Kinds() {
		names[k] = cli.SheetName(k)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.SpreadsheetID)

	return &Result{
		Type:       Sheets,
		Table:      cli,
		Pinger:     cli,
		SheetNames: names,
		Cleanup:    cli.Close,
	}, nil
}

func (f *DefaultFactory) createMemory(config Config) (*Result, error) {
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	st := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &Result{
		Type:       Memory,
		Table:      st,
		SheetNames: kindNames(),
	}, nil
}

// kindNames names each table after its kind, for backends without tabs.
func kindNames() map[core.Kind]string {
	names := make(map[core.Kind]string, len(core.Kinds()))
	for _, k := range core.Kinds() {
		names[k] = k.String()
	}
	return names
}
