// Package services records transactions and assembles the read models shown
// by the dashboard and the CLI.
package services

import (
	"context"
	"fmt"
	"io"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Publisher announces appended rows to other processes.
type Publisher interface {
	PublishStoreChanged(ctx context.Context, kind string, rows int, source string) error
}

// PartialWriteError reports an expense whose installments were only partly
// appended. Written rows stay in the store.
type PartialWriteError struct {
	GroupID string
	Written int
	Total   int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("append installments of group %s: wrote %d of %d: %v", e.GroupID, e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// TransactionService validates submissions and writes them through the store.
type TransactionService struct {
	store     store.Store
	publisher Publisher
	source    string
	newID     func() string
	logger    *log.Logger
	events    *log.StructuredLogger
}

type Option func(*TransactionService)

// WithSource names the process in published change events.
func WithSource(source string) Option {
	return func(s *TransactionService) { s.source = source }
}

// WithIDGenerator replaces core.NewID.
func WithIDGenerator(newID func() string) Option {
	return func(s *TransactionService) { s.newID = newID }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *TransactionService) { s.logger = logger }
}

// NewTransactionService builds a service over st. publisher may be nil, in
// which case change events are skipped.
func NewTransactionService(st store.Store, publisher Publisher, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:     st,
		publisher: publisher,
		source:    "fintrack",
		newID:     core.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// RecordIncome validates in and appends it as a single row.
func (s *TransactionService) RecordIncome(ctx context.Context, in core.IncomeInput) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	rec := core.Income{
		ID:          s.newID(),
		Date:        in.Date,
		Category:    in.Category,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
	}
	if err := s.store.AppendIncome(ctx, rec); err != nil {
		s.events.LogError(ctx, "Failed to append income", err, log.ComponentStore, log.OpCreate,
			log.NewFields().WithTransaction(string(core.KindIncome), rec.Category, rec.Amount.StringFixed(2)))
		return core.Income{}, fmt.Errorf("append income: %w", err)
	}

	s.events.LogTransactionRecorded(ctx, string(core.KindIncome), rec.Category, rec.Amount.StringFixed(2), 1, "")
	s.publish(ctx, core.KindIncome, 1)
	return rec, nil
}

// RecordExpense validates in, splits it into installments and appends them
// in order. A failure partway returns the installments already written
// together with a *PartialWriteError.
func (s *TransactionService) RecordExpense(ctx context.Context, in core.ExpenseInput) ([]core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	records := ledger.GenerateInstallments(in.Date, in.Category, in.Method, in.Card, in.Amount, in.Installments, in.Description, s.newID)
	for i, rec := range records {
		if err := s.store.AppendExpense(ctx, rec); err != nil {
			s.events.LogError(ctx, "Failed to append installment", err, log.ComponentStore, log.OpCreate,
				log.NewFields().
					WithTransaction(string(core.KindExpense), rec.Category, rec.Amount.StringFixed(2)).
					WithInstallments(rec.Count, rec.GroupID))
			if i > 0 {
				s.publish(ctx, core.KindExpense, i)
			}
			return records[:i], &PartialWriteError{GroupID: rec.GroupID, Written: i, Total: len(records), Err: err}
		}
	}

	first := records[0]
	s.events.LogTransactionRecorded(ctx, string(core.KindExpense), first.Category, in.Amount.StringFixed(2), len(records), first.GroupID)
	s.publish(ctx, core.KindExpense, len(records))
	return records, nil
}

func (s *TransactionService) publish(ctx context.Context, kind core.Kind, rows int) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping change event", log.FieldKind, kind)
		return
	}
	if err := s.publisher.PublishStoreChanged(ctx, string(kind), rows, s.source); err != nil {
		// The rows are in the store; other processes catch up on TTL expiry.
		s.logger.WarnContext(ctx, "Failed to publish change event", log.FieldKind, kind, log.FieldError, err)
	}
}

// Close releases the publisher and the store when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
