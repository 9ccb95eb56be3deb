// Package sqlite is a Table backend on a local SQLite file. Each kind is a
// table whose text columns mirror the sheet columns, read back in insertion
// order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

type table struct {
	name    string
	columns []string
}

// tables maps each kind to its SQL table, columns in schema order.
var tables = map[core.Kind]table{
	core.KindIncome: {"income", []string{"id", "date", "category", "income_type", "amount", "description"}},
	core.KindExpense: {"expense", []string{
		"id", "date", "category", "payment_method", "card", "amount",
		"installment_count", "installment_index", "group_id", "description",
	}},
	core.KindCategory:      {"category", []string{"type", "category_name"}},
	core.KindPaymentMethod: {"payment_method", []string{"payment_method_name"}},
	core.KindCard:          {"card", []string{"card_name"}},
}

type Repository struct {
	db *sql.DB
}

var _ store.Table = (*Repository)(nil)

// Open creates the database file if needed and applies migrations.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReadRows returns the canonical header followed by every row in insertion
// order. An empty table still yields its header.
func (r *Repository) ReadRows(ctx context.Context, kind core.Kind) ([][]string, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", kind)
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY row_id", strings.Join(t.columns, ", "), t.name)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	out := [][]string{store.SchemaFor(kind).Headers()}
	for rows.Next() {
		vals := make([]sql.NullString, len(t.columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return out, nil
}

// AppendRow inserts one row, rendering every value as text.
func (r *Repository) AppendRow(ctx context.Context, kind core.Kind, row []any) error {
	t, ok := tables[kind]
	if !ok {
		return fmt.Errorf("unknown table %q", kind)
	}
	if len(row) != len(t.columns) {
		return fmt.Errorf("insert %s: got %d values for %d columns", t.name, len(row), len(t.columns))
	}
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = fmt.Sprint(v)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(row)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), placeholders)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	slog.DebugContext(ctx, "Row saved to SQLite", "table", t.name)
	return nil
}
