package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentStore)

	l.Info("loaded", FieldRows, 3)
	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "rows=3")

	buf.Reset()
	l.WithComponent(ComponentCache).Warn("cleared")
	assert.Contains(t, buf.String(), "component=cache")
	assert.NotContains(t, buf.String(), "component=store")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentApp)

	var got *Logger
	h := Middleware(l.With(FieldRequestID, "req-1"))(ComponentMiddleware(ComponentHTTP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("handled")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, ComponentHTTP, got.Component())
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "component=http")
}

func TestStatusLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, statusLevel(204))
	assert.Equal(t, slog.LevelWarn, statusLevel(429))
	assert.Equal(t, slog.LevelError, statusLevel(503))
}

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentApp))

	sl.LogTransactionRecorded(context.Background(), "expense", "Food", "100.00", 3, "ab12cd34")
	assert.Contains(t, buf.String(), "installments=3")
	assert.Contains(t, buf.String(), "group_id=ab12cd34")

	buf.Reset()
	sl.LogError(context.Background(), "append failed", errors.New("boom"), ComponentSheets, OpAppend, nil)
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "operation=append")

	buf.Reset()
	r := httptest.NewRequest(http.MethodPost, "/expense", nil)
	sl.LogHTTPEnd(context.Background(), r, 422, 5, "127.0.0.1")
	assert.Contains(t, buf.String(), "level=WARN")
}
