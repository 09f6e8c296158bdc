package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	reporthttp "github.com/MrJamesThe3rd/finviz/internal/http/report"
	"github.com/MrJamesThe3rd/finviz/internal/http/request"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type Handler struct {
	svc     *transaction.Service
	reports *report.Service
}

func NewHandler(svc *transaction.Service, reports *report.Service) *Handler {
	return &Handler{
		svc:     svc,
		reports: reports,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/category/{category}/monthly-breakdown", h.monthlyBreakdown)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.replace)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type transactionRequest struct {
	Amount      *float64 `json:"amount" validate:"required"`
	Date        string   `json:"date" validate:"required,txdate"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
}

func (req transactionRequest) params() transaction.CreateParams {
	date, _ := transaction.ParseDate(req.Date)

	return transaction.CreateParams{
		Amount:      *req.Amount,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
	}
}

type updateTransactionRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty" validate:"omitempty,txdate"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := request.TransactionFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) monthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	months, err := h.reports.MonthlyBreakdown(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(reporthttp.MonthResponses(months)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// replace overwrites every field of the transaction.
func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := req.params()
	h.applyUpdate(w, r, id, transaction.UpdateParams{
		Amount:      &p.Amount,
		Date:        &p.Date,
		Description: &p.Description,
		Category:    &p.Category,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := transaction.UpdateParams{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}

	if req.Date != nil {
		date, _ := transaction.ParseDate(*req.Date)
		params.Date = &date
	}

	h.applyUpdate(w, r, id, params)
}

func (h *Handler) applyUpdate(w http.ResponseWriter, r *http.Request, id uuid.UUID, params transaction.UpdateParams) {
	tx, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, transaction.ErrNotFound) {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	slog.Error("transaction request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
