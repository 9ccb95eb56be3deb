// Package cli holds the process bootstrap shared by cmd/fintrack,
// cmd/fintrack-cli and cmd/sheets-init.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// SetupLogger builds the stdout text logger at level and makes it the
// default.
func SetupLogger(level string) *log.Logger {
	return SetupLoggerTo(os.Stdout, level)
}

// SetupLoggerTo is SetupLogger writing to w.
func SetupLoggerTo(w io.Writer, level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: log.ParseLevel(level)}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads and validates the environment.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig exits the process when the configuration is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// Options selects the optional parts of an App.
type Options struct {
	// Cache wraps the store in a TTL cache.
	Cache bool
	// Source tags published change events.
	Source string
}

// App is an opened backend with the services over it.
type App struct {
	Config       *config.Config
	Logger       *log.Logger
	Backend      *backend.Result
	Store        store.Store
	Cached       *store.Cached
	Publisher    *amqp.Client
	Transactions *services.TransactionService
	Queries      *services.QueryService
}

// Bootstrap opens the configured backend and wires the services. AMQP is
// optional: a broker that cannot be reached is logged and skipped.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).Create(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger, Backend: res}

	var st store.Store = store.NewAdapter(res.Table)
	if opts.Cache {
		app.Cached = store.NewCached(st, store.CacheConfig{
			TransactionsTTL: cfg.TransactionsCacheTTL,
			ReferenceTTL:    cfg.ReferenceCacheTTL,
			Logger:          logger.WithComponent(log.ComponentCache).Slog(),
		})
		st = app.Cached
	}
	app.Store = st

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger.WithComponent(log.ComponentAMQP).Slog())
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events",
				log.FieldError, err.Error())
		} else {
			app.Publisher = client
			publisher = client
		}
	}

	source := opts.Source
	if source == "" {
		source = "fintrack"
	}
	app.Transactions = services.NewTransactionService(st, publisher,
		services.WithSource(source),
		services.WithLogger(logger))
	app.Queries = services.NewQueryService(st)

	logger.Info("Backend ready",
		log.FieldBackend, res.Type.String(),
		"cache", opts.Cache,
		"amqp", app.Publisher != nil)
	return app, nil
}

// Close releases the publisher and then the backend.
func (a *App) Close() error {
	return errors.Join(a.Transactions.Close(), a.Backend.Close())
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM after
// running cleanup within timeout. done is closed once cleanup has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// Fatal logs err and exits.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, fmt.Sprint(err))
	os.Exit(1)
}
