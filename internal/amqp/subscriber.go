package amqp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const maxBackoff = 30 * time.Second

// Subscribe keeps a consumer of store changes running until ctx is done,
// redialing with exponential backoff when the broker connection drops.
func Subscribe(ctx context.Context, url, exchangeName string, logger *slog.Logger, handler func(*StoreChangedMessage) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	attempt := 0
	for {
		client, err := NewClient(url, exchangeName, logger)
		if err == nil {
			attempt = 0
			err = client.ConsumeStoreChanged(ctx, handler)
			client.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		logger.WarnContext(ctx, "AMQP connection lost, retrying", "error", err, "attempt", attempt+1, "wait", wait)
		attempt++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// exponentialBackoff doubles from one second and caps at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "dial", "channel closed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
