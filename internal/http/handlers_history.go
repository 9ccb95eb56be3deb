package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

type historyView struct {
	page
	Incomes      []core.Income
	Expenses     []core.Expense
	TotalIncome  string
	TotalExpense string
	TotalCredit  string
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.queries.History(r.Context())
	if err != nil {
		s.loadFailed(w, r, "history", err)
		return
	}
	s.render(w, r, "history_page", historyView{
		page:         page{Title: "History", Active: "history"},
		Incomes:      h.Incomes,
		Expenses:     h.Expenses,
		TotalIncome:  core.FormatBRL(h.TotalIncome),
		TotalExpense: core.FormatBRL(h.TotalExpense),
		TotalCredit:  core.FormatBRL(h.TotalCredit),
	})
}

// handleHistoryExport streams every record as a workbook named after today.
func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	h, err := s.queries.History(r.Context())
	if err != nil {
		s.loadFailed(w, r, "history", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteHistoryXLSX(&buf, h.Incomes, h.Expenses); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Failed to build workbook", err,
			log.ComponentExport, log.OpExport, nil)
		InternalServerError("Could not build the export").Write(w)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "History exported",
		log.FieldOperation, log.OpExport,
		log.FieldRows, len(h.Incomes)+len(h.Expenses))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fintrack-%s.xlsx"`, s.today()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
