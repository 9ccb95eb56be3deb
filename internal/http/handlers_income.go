package http

import (
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type formView struct {
	page
	Today           string
	Ref             services.Reference
	MaxInstallments int
}

func (s *Server) formPage(w http.ResponseWriter, r *http.Request, name, title, active string) {
	ref, err := s.queries.Reference(r.Context())
	if err != nil {
		s.loadFailed(w, r, "reference data", err)
		return
	}
	s.render(w, r, name, formView{
		page:            page{Title: title, Active: active, Warnings: warningsOf(ref.Warnings)},
		Today:           s.today().String(),
		Ref:             ref,
		MaxInstallments: core.MaxInstallments,
	})
}

func (s *Server) handleIncomeForm(w http.ResponseWriter, r *http.Request) {
	s.formPage(w, r, "income_page", "New income", "income")
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Could not read the submitted form").Write(w)
		return
	}

	in, err := parseIncomeInput(parser, s.today())
	if err != nil {
		s.recordFailed(w, r, core.KindIncome, err)
		return
	}

	income, err := s.recorder.RecordIncome(r.Context(), in)
	if err != nil {
		s.recordFailed(w, r, core.KindIncome, err)
		return
	}

	msg := fmt.Sprintf("Income of %s saved", core.FormatBRL(income.Amount))
	NewHTMXResponse().
		TriggerTransactionCreated(core.KindIncome, income.Date.YearMonth()).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(notice("success", msg)).
		Write(w)
}

// recordFailed maps a failed submission to a response: 422 for rejected
// input, 500 for store failures. The service has already logged store errors.
func (s *Server) recordFailed(w http.ResponseWriter, r *http.Request, kind core.Kind, err error) {
	if core.IsValidation(err) {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Submission rejected",
			log.FieldKind, kind.String(),
			log.FieldError, err.Error())
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	var partial *services.PartialWriteError
	if errors.As(err, &partial) {
		InternalServerError(fmt.Sprintf(
			"Saved %d of %d installments before the store failed. Check the sheet before retrying.",
			partial.Written, partial.Total)).
			Write(w)
		return
	}

	InternalServerError("Error saving " + kind.String() + ". Try again later.").Write(w)
}
