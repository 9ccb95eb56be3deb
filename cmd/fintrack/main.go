package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

const cacheSweepInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel)

	app, err := cli.Bootstrap(context.Background(), cfg, logger, cli.Options{Cache: true, Source: "fintrack"})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	caches.Register(app.Cached.Cleaners()...)
	caches.StartCleanup(cacheSweepInterval)

	srvCfg := apphttp.Config{
		Addr:       cfg.Addr(),
		Backend:    app.Backend.Type.String(),
		SheetNames: app.Backend.SheetNames,
		Logger:     logger,
	}
	if app.Backend.Pinger != nil {
		srvCfg.Ready = app.Backend.Pinger
	}
	srv, err := apphttp.NewServer(srvCfg, app.Transactions, app.Queries)
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		if err := app.Close(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err.Error())
		}
	})

	// Rows appended by other processes drop this server's cache.
	if cfg.AMQPURL != "" {
		go func() {
			err := amqp.Subscribe(ctx, cfg.AMQPURL, cfg.AMQPExchange, logger.WithComponent(log.ComponentAMQP).Slog(),
				func(msg *amqp.StoreChangedMessage) error {
					app.Cached.Invalidate()
					logger.Debug("Cache invalidated by change event",
						log.FieldKind, msg.Kind,
						log.FieldRows, msg.Rows)
					return nil
				})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change event subscription stopped", log.FieldError, err.Error())
			}
		}()
	}

	logger.Info("Starting fintrack server",
		"addr", cfg.Addr(),
		log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
