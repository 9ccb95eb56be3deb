package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func (s *Server) handleExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.formPage(w, r, "expense_page", "New expense", "expense")
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Could not read the submitted form").Write(w)
		return
	}

	in, err := parseExpenseInput(parser, s.today())
	if err != nil {
		s.recordFailed(w, r, core.KindExpense, err)
		return
	}

	records, err := s.recorder.RecordExpense(r.Context(), in)
	if err != nil {
		s.recordFailed(w, r, core.KindExpense, err)
		return
	}

	msg := fmt.Sprintf("Expense of %s saved", core.FormatBRL(in.Amount))
	if len(records) > 1 {
		msg = fmt.Sprintf("Expense of %s saved in %d installments of %s",
			core.FormatBRL(in.Amount), len(records), core.FormatBRL(records[0].Amount))
	}

	NewHTMXResponse().
		TriggerTransactionCreated(core.KindExpense, records[0].Date.YearMonth()).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(notice("success", msg)).
		Write(w)
}

type installmentPreview struct {
	Valid  bool
	Count  int
	Amount string
}

// handleInstallmentPreview renders the per-installment amount while the
// expense form is being filled. Incomplete input renders nothing.
func (s *Server) handleInstallmentPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var preview installmentPreview

	amount, errAmount := parseAmountField(q.Get("amount"))
	count, errCount := parseInstallmentsField(q.Get("installments"))
	if errAmount == nil && errCount == nil && count > 1 {
		preview = installmentPreview{
			Valid:  true,
			Count:  count,
			Amount: core.FormatBRL(ledger.InstallmentAmount(amount, count)),
		}
	}

	s.render(w, r, "installment_preview", preview)
}
