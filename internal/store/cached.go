package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const (
	DefaultTransactionsTTL = 60 * time.Second
	DefaultReferenceTTL    = 300 * time.Second
)

const snapshotKey = "all"

// CacheConfig sets the lifetime of cached reads.
type CacheConfig struct {
	TransactionsTTL time.Duration
	ReferenceTTL    time.Duration
	Now             func() time.Time
	Logger          *slog.Logger
}

// Cached is a read-through decorator over a Store. Income and expense reads
// live for TransactionsTTL, reference lists for ReferenceTTL. Every
// successful append drops every cached read.
type Cached struct {
	next   Store
	logger *slog.Logger
	// mu orders fills against invalidations. gen changes on every
	// invalidation; loads started under an older gen are not cached.
	mu  sync.Mutex
	gen uint64

	incomes    *cache.LRUCache[[]core.Income]
	expenses   *cache.LRUCache[[]core.Expense]
	categories *cache.LRUCache[[]core.Category]
	methods    *cache.LRUCache[[]string]
	cards      *cache.LRUCache[[]string]
}

var (
	_ Store       = (*Cached)(nil)
	_ Invalidator = (*Cached)(nil)
)

func NewCached(next Store, cfg CacheConfig) *Cached {
	if cfg.TransactionsTTL <= 0 {
		cfg.TransactionsTTL = DefaultTransactionsTTL
	}
	if cfg.ReferenceTTL <= 0 {
		cfg.ReferenceTTL = DefaultReferenceTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	var opts []cache.Option
	if cfg.Now != nil {
		opts = append(opts, cache.WithClock(cfg.Now))
	}
	return &Cached{
		next:       next,
		logger:     cfg.Logger,
		incomes:    cache.NewLRUCache[[]core.Income](1, cfg.TransactionsTTL, opts...),
		expenses:   cache.NewLRUCache[[]core.Expense](1, cfg.TransactionsTTL, opts...),
		categories: cache.NewLRUCache[[]core.Category](1, cfg.ReferenceTTL, opts...),
		methods:    cache.NewLRUCache[[]string](1, cfg.ReferenceTTL, opts...),
		cards:      cache.NewLRUCache[[]string](1, cfg.ReferenceTTL, opts...),
	}
}

// Cleaners exposes the underlying caches to a cache.Manager.
func (c *Cached) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{c.incomes, c.expenses, c.categories, c.methods, c.cards}
}

func (c *Cached) Incomes(ctx context.Context) ([]core.Income, error) {
	return readThrough(ctx, c, core.KindIncome, c.incomes, c.next.Incomes)
}

func (c *Cached) Expenses(ctx context.Context) ([]core.Expense, error) {
	return readThrough(ctx, c, core.KindExpense, c.expenses, c.next.Expenses)
}

func (c *Cached) Categories(ctx context.Context) ([]core.Category, error) {
	return readThrough(ctx, c, core.KindCategory, c.categories, c.next.Categories)
}

func (c *Cached) PaymentMethods(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c, core.KindPaymentMethod, c.methods, c.next.PaymentMethods)
}

func (c *Cached) Cards(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c, core.KindCard, c.cards, c.next.Cards)
}

func (c *Cached) AppendIncome(ctx context.Context, in core.Income) error {
	if err := c.next.AppendIncome(ctx, in); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

func (c *Cached) AppendExpense(ctx context.Context, e core.Expense) error {
	if err := c.next.AppendExpense(ctx, e); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops every cached read.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.gen++
	n := c.incomes.Clear() + c.expenses.Clear() + c.categories.Clear() + c.methods.Clear() + c.cards.Clear()
	c.mu.Unlock()
	c.logger.Debug("Store cache invalidated", "entries", n)
}

func readThrough[T any](ctx context.Context, c *Cached, kind core.Kind, lru *cache.LRUCache[[]T], load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := lru.Get(snapshotKey); ok {
		return clone(v), nil
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	stale := c.gen != gen
	if !stale {
		lru.Set(snapshotKey, v)
	}
	c.mu.Unlock()
	if stale {
		return clone(v), nil
	}
	c.logger.DebugContext(ctx, "Store cache filled", "kind", kind, "rows", len(v), "ttl", lru.TTL())
	return clone(v), nil
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
