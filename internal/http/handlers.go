package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

const readyTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok", "store": "not_configured"}
	status, code := "ready", http.StatusOK

	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				log.FieldBackend, s.backend,
				log.FieldError, err.Error())
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	NewHTMXResponse().Status(code).BodyJSON(map[string]any{
		"status":    status,
		"backend":   s.backend,
		"checks":    checks,
		"timestamp": s.now().Format(time.RFC3339),
	}).Write(w)
}

type tableView struct {
	Kind    core.Kind
	Sheet   string
	Columns []string
}

type settingsView struct {
	page
	Backend string
	Ref     services.Reference
	Tables  []tableView
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ref, err := s.queries.Reference(r.Context())
	if err != nil {
		s.loadFailed(w, r, "reference data", err)
		return
	}

	tables := make([]tableView, 0, len(core.Kinds()))
	for _, kind := range core.Kinds() {
		sheet := s.sheetNames[kind]
		if sheet == "" {
			sheet = kind.String()
		}
		tables = append(tables, tableView{
			Kind:    kind,
			Sheet:   sheet,
			Columns: store.SchemaFor(kind).Headers(),
		})
	}

	s.render(w, r, "settings_page", settingsView{
		page:    page{Title: "Settings", Active: "settings", Warnings: warningsOf(ref.Warnings)},
		Backend: s.backend,
		Ref:     ref,
		Tables:  tables,
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if !s.queries.ClearCache() {
		NewHTMXResponse().BodyHTML(notice("info", "No cache is configured")).Write(w)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentCache).InfoContext(r.Context(), "Cache cleared from settings",
		log.FieldOperation, log.OpInvalidate)
	NewHTMXResponse().
		TriggerCacheCleared().
		TriggerSuccessNotification("Cache cleared").
		BodyHTML(notice("success", "Cache cleared")).
		Write(w)
}

// loadFailed answers a page whose data could not be read.
func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, what string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Failed to load "+what, err,
		log.ComponentStore, log.OpRead, nil)
	InternalServerError("Could not load " + what + ". Check the store and try again.").Write(w)
}
