// Package backend opens the table store selected by DATA_BACKEND.
package backend

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Pinger checks that a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is an opened backend. Pinger is nil for the memory backend.
type Result struct {
	Type       Type
	Table      store.Table
	Pinger     Pinger
	SheetNames map[core.Kind]string
	Cleanup    CleanupFunc
}

// Close runs Cleanup if one is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds what every backend needs to open.
type Config struct {
	Type Type

	// Memory
	DataDir string

	// SQLite
	SQLiteDBPath string

	// Google Sheets
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	SheetNames      map[core.Kind]string
}

type Type string

const (
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Sheets, Memory:
		return true
	default:
		return false
	}
}
