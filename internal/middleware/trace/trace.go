// Package trace tags each request with an ID and logs its outcome.
package trace

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
)

// HeaderRequestID carries the request ID. An incoming value is reused when it
// looks sane, and the ID is always echoed back so a user can quote it.
const HeaderRequestID = "X-Request-ID"

const maxIncomingID = 64

type requestIDKey struct{}

type Middleware struct {
	extractIP func(*http.Request) string
	requests  atomic.Int64
	totalUs   atomic.Int64
}

type Metrics struct {
	TotalRequests       int64
	AverageResponseTime time.Duration
}

func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP}
}

// Middleware scopes the context logger to the request ID and logs
// completion with status and duration.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var clientIP string
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		id := incomingID(r.Header.Get(HeaderRequestID))
		if id == "" {
			id = GenerateRequestID()
		}
		logger := log.FromContext(r.Context()).With(log.FieldRequestID, id)
		ctx := log.NewContext(context.WithValue(r.Context(), requestIDKey{}, id), logger)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, id)

		logger.DebugContext(ctx, "HTTP request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		m.requests.Add(1)
		m.totalUs.Add(elapsed.Microseconds())

		log.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, sw.status, elapsed.Milliseconds(), clientIP)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID returns "req_" followed by the first 16 hex digits of a
// random UUID.
func GenerateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// incomingID accepts short IDs made of letters, digits, '-' and '_'.
func incomingID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxIncomingID {
		return ""
	}
	for _, c := range v {
		ok := c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			return ""
		}
	}
	return v
}

// GetRequestID returns the ID stored by Middleware, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (m *Middleware) GetMetrics() Metrics {
	n := m.requests.Load()
	var avg time.Duration
	if n > 0 {
		avg = time.Duration(m.totalUs.Load()/n) * time.Microsecond
	}
	return Metrics{TotalRequests: n, AverageResponseTime: avg}
}
