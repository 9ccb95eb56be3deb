package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:              "sheets",
		GoogleSpreadsheetID:      "abc",
		GoogleServiceAccountJSON: "{}",
		GoogleIncomeSheet:        "Entradas",
		GoogleExpenseSheet:       "Saídas",
		GoogleCategorySheet:      "Categorias",
		GooglePaymentMethodSheet: "Pagamentos",
		GoogleCardSheet:          "Cartões",
	}

	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, Sheets, cfg.Type)
	assert.Equal(t, "abc", cfg.SpreadsheetID)
	assert.Equal(t, "Saídas", cfg.SheetNames[core.KindExpense])
	assert.NoError(t, cfg.Validate())

	_, err = FromAppConfig(&config.Config{DataBackend: "csv"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: Memory}.Validate())
	assert.Error(t, Config{Type: "csv"}.Validate())
	assert.Error(t, Config{Type: SQLite}.Validate())
	assert.Error(t, Config{Type: Sheets, SpreadsheetID: "abc"}.Validate())
	assert.Error(t, Config{Type: Sheets, CredentialsJSON: "{}"}.Validate())
}

func TestCreateMemory(t *testing.T) {
	res, err := quietFactory().Create(context.Background(), Config{Type: Memory, DataDir: t.TempDir()})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, Memory, res.Type)
	assert.Nil(t, res.Pinger)
	assert.Equal(t, "card", res.SheetNames[core.KindCard])

	methods, err := store.NewAdapter(res.Table).PaymentMethods(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, methods)
}

func TestCreateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "fintrack.db")
	res, err := quietFactory().Create(context.Background(), Config{Type: SQLite, SQLiteDBPath: path})
	require.NoError(t, err)
	defer res.Close()

	require.NotNil(t, res.Pinger)
	assert.NoError(t, res.Pinger.Ping(context.Background()))

	incomes, err := store.NewAdapter(res.Table).Incomes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, incomes)
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	_, err := quietFactory().Create(context.Background(), Config{Type: Sheets})
	assert.Error(t, err)
}

func TestResultCloseWithoutCleanup(t *testing.T) {
	var r *Result
	assert.NoError(t, r.Close())
	assert.NoError(t, (&Result{}).Close())
}

func TestTypes(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, typ.IsValid(), typ.String())
	}
}
