// Package memory is a process-local Table backend used for development and
// tests. Nothing survives a restart.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Seed lists the reference data a fresh store starts with.
type Seed struct {
	IncomeCategories  []string
	ExpenseCategories []string
	PaymentMethods    []string
	Cards             []string
}

type Store struct {
	mu     sync.Mutex
	tables map[core.Kind][][]string
}

var _ store.Table = (*Store)(nil)

// New returns a store holding the canonical header of every table plus the
// seeded reference rows.
func New(seed Seed) *Store {
	s := &Store{tables: make(map[core.Kind][][]string)}
	for _, k := range core.Kinds() {
		s.tables[k] = [][]string{store.SchemaFor(k).Headers()}
	}
	for _, name := range dedupe(seed.IncomeCategories) {
		s.put(core.KindCategory, string(core.CategoryIncome), name)
	}
	for _, name := range dedupe(seed.ExpenseCategories) {
		s.put(core.KindCategory, string(core.CategoryExpense), name)
	}
	for _, name := range dedupe(seed.PaymentMethods) {
		s.put(core.KindPaymentMethod, name)
	}
	for _, name := range dedupe(seed.Cards) {
		s.put(core.KindCard, name)
	}
	return s
}

// NewFromFiles seeds reference tables from text files in base, one value
// per line. Missing files fall back to built-in defaults.
func NewFromFiles(base string) *Store {
	seed := Seed{
		IncomeCategories:  readLines(filepath.Join(base, "seed_income_categories.txt")),
		ExpenseCategories: readLines(filepath.Join(base, "seed_expense_categories.txt")),
		PaymentMethods:    readLines(filepath.Join(base, "seed_payment_methods.txt")),
		Cards:             readLines(filepath.Join(base, "seed_cards.txt")),
	}
	if len(seed.IncomeCategories) == 0 {
		seed.IncomeCategories = core.DefaultIncomeCategories()
	}
	if len(seed.ExpenseCategories) == 0 {
		seed.ExpenseCategories = core.DefaultExpenseCategories()
	}
	if len(seed.PaymentMethods) == 0 {
		seed.PaymentMethods = core.DefaultPaymentMethods()
	}
	if len(seed.Cards) == 0 {
		seed.Cards = core.DefaultCards()
	}
	return New(seed)
}

// ReadRows returns a copy of the table, header first.
func (s *Store) ReadRows(_ context.Context, kind core.Kind) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", kind)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// AppendRow stores the row as its string rendering.
func (s *Store) AppendRow(_ context.Context, kind core.Kind, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[kind]; !ok {
		return fmt.Errorf("unknown table %q", kind)
	}
	s.tables[kind] = append(s.tables[kind], toStrings(row))
	return nil
}

// Len returns the number of data rows in kind.
func (s *Store) Len(kind core.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[kind]) - 1
}

func (s *Store) put(kind core.Kind, cols ...string) {
	s.tables[kind] = append(s.tables[kind], cols)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, preserving input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
