package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"finvision/internal/core"
	"finvision/internal/ledger"
	"finvision/internal/log"
	"finvision/internal/services"
)

// pageData feeds the page and every partial, so the partials render the
// same inside the page and on their own.
type pageData struct {
	services.Dashboard
	Query         services.Query
	Types         []core.Type
	AllCategories []core.Category
	SortKeys      []core.SortKey
	Today         string
}

type summaryJSON struct {
	Income       float64 `json:"income"`
	Expense      float64 `json:"expense"`
	Balance      float64 `json:"balance"`
	Transactions int     `json:"transactions"`
	Notice       string  `json:"notice,omitempty"`
}

type categoryJSON struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type monthJSON struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().Text("ok").Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		NewHTMXResponse().Status(http.StatusServiceUnavailable).Text("not ready").Write(w)
		return
	}
	NewHTMXResponse().Text("ready").Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	data, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	s.render(w, r, "index.html", data)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	data, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	s.render(w, r, "metrics", data)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	data, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	s.render(w, r, "transactions", data)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Parse body error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	tx, err := s.svc.Submit(ctx, parser.TransactionInput())
	switch {
	case errors.Is(err, services.ErrSaveFailed):
		log.FromContext(ctx).ErrorContext(ctx, "Failed to save transaction", log.FieldError, err)
		InternalServerError("Failed to save transaction").
			TriggerErrorNotification("Failed to save transaction").
			Write(w)
		return
	case err != nil:
		UnprocessableEntityError("Please fill all fields correctly: " + err.Error()).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerTransactionCreated(tx.Date.String()).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added successfully!").
		BodyHTML(`<div class="success">Transaction added successfully! ` +
			template.HTMLEscapeString(string(tx.Type)) + ` · ` +
			template.HTMLEscapeString(string(tx.Category)) + ` · ` +
			template.HTMLEscapeString(formatDollars(tx.Signed())) + ` · ` +
			template.HTMLEscapeString(tx.Description) + `</div>`).
		Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	totals := core.Summarize(snap.Ledger)
	JSONResponse(summaryJSON{
		Income:       totals.Income.Units(),
		Expense:      totals.Expense.Units(),
		Balance:      totals.Balance.Units(),
		Transactions: snap.Ledger.Len(),
		Notice:       snap.Notice,
	}).Write(w)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	out := []categoryJSON{}
	for _, c := range core.ByCategory(snap.Ledger) {
		out = append(out, categoryJSON{Category: string(c.Category), Amount: c.Amount.Units()})
	}
	JSONResponse(out).Write(w)
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	out := []monthJSON{}
	for _, m := range core.ByMonth(snap.Ledger) {
		out = append(out, monthJSON{Month: m.Label, Amount: m.Amount.Units()})
	}
	JSONResponse(out).Write(w)
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (ledger.Snapshot, bool) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load ledger", log.FieldError, err)
		InternalServerError("Failed to load transactions").Write(w)
		return ledger.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) loadPage(w http.ResponseWriter, r *http.Request) (pageData, bool) {
	q := ParseQuery(r.URL.Query())
	dash, err := s.svc.Dashboard(r.Context(), q)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build dashboard", log.FieldError, err)
		InternalServerError("Failed to load transactions").Write(w)
		return pageData{}, false
	}
	return pageData{
		Dashboard:     dash,
		Query:         q,
		Types:         core.Types(),
		AllCategories: core.Categories(),
		SortKeys: []core.SortKey{
			core.SortDate, core.SortType, core.SortCategory, core.SortAmount, core.SortDescription,
		},
		Today: core.Today().String(),
	}, true
}

// render executes into a buffer first so a failing template never sends a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldOperation, log.OpRender, log.FieldError, err)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}
