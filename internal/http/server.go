// Package http serves the finance dashboard: overview, entry forms,
// history with export, and settings.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Recorder writes new transactions.
type Recorder interface {
	RecordIncome(ctx context.Context, in core.IncomeInput) (core.Income, error)
	RecordExpense(ctx context.Context, in core.ExpenseInput) ([]core.Expense, error)
}

// Queries builds the read models.
type Queries interface {
	Reference(ctx context.Context) (services.Reference, error)
	Dashboard(ctx context.Context, ym core.YearMonth) (ledger.Dashboard, error)
	History(ctx context.Context) (services.History, error)
	ClearCache() bool
}

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr string
	// Backend names the store shown on the settings page.
	Backend string
	// SheetNames maps each table to the worksheet or table holding it.
	SheetNames map[core.Kind]string
	// Ready is consulted by /readyz when set.
	Ready     Pinger
	RateLimit ratelimit.Config
	Logger    *log.Logger
	Now       func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	recorder  Recorder
	queries   Queries
	ready     Pinger
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware

	backend    string
	sheetNames map[core.Kind]string
	now        func() time.Time
	started    time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, rec Recorder, q Queries) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.DefaultConfig())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig()
	}

	t, err := appweb.ParseTemplates(templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		templates:  t,
		recorder:   rec,
		queries:    q,
		ready:      cfg.Ready,
		logger:     cfg.Logger.WithComponent(log.ComponentHTTP),
		limiter:    ratelimit.NewLimiter(cfg.RateLimit),
		detector:   security.NewDetector(),
		backend:    cfg.Backend,
		sheetNames: cfg.SheetNames,
		now:        cfg.Now,
		started:    cfg.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /income/new", s.handleIncomeForm)
	mux.HandleFunc("POST /income", s.handleCreateIncome)
	mux.HandleFunc("GET /expense/new", s.handleExpenseForm)
	mux.HandleFunc("POST /expense", s.handleCreateExpense)
	mux.HandleFunc("GET /ui/installment-preview", s.handleInstallmentPreview)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /history/export.xlsx", s.handleHistoryExport)
	mux.HandleFunc("GET /settings", s.handleSettings)
	mux.HandleFunc("POST /settings/cache/clear", s.handleClearCache)

	s.Handler = s.middleware(mux)
	return s, nil
}

func (s *Server) middleware(next http.Handler) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(next)

	h := headers.Middleware(limited)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	h = log.ComponentMiddleware(log.ComponentHTTP)(h)
	return log.Middleware(s.logger)(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many submissions. Try again in a minute.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes a named template into a buffer first so a failure can
// still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Template execution failed", err,
			log.ComponentTemplate, log.OpRender, log.LogFields{"template": name})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
