package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finviz/internal/charts"
	"github.com/MrJamesThe3rd/finviz/internal/http/request"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type Handler struct {
	svc           *report.Service
	defaultRecent int
}

// NewHandler serves reports; defaultRecent is used when the request has no
// recent parameter.
func NewHandler(svc *report.Service, defaultRecent int) *Handler {
	return &Handler{
		svc:           svc,
		defaultRecent: defaultRecent,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/monthly-breakdown/{category}", h.monthlyBreakdown)
	r.Get("/charts/{kind}.png", h.chart)
}

// parseQuery reads the transaction filter and the optional recent count.
func (h *Handler) parseQuery(r *http.Request) (transaction.ListFilter, int, error) {
	filter, err := request.TransactionFilter(r)
	if err != nil {
		return filter, 0, err
	}

	recent := h.defaultRecent

	if s := r.URL.Query().Get("recent"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, 0, errors.New("recent must be a non-negative integer")
		}

		recent = n
	}

	return filter, recent, nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, recent, err := h.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.svc.Summary(r.Context(), filter, recent)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSummaryResponse(s)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) monthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.MonthlyBreakdown(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(MonthResponses(months)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// chart answers 204 when there is nothing to draw.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	filter, _, err := h.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.svc.Summary(r.Context(), filter, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	img, err := charts.Render(charts.Kind(chi.URLParam(r, "kind")), s)
	switch {
	case errors.Is(err, charts.ErrUnknownKind):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, charts.ErrNoData):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")

	if _, err := w.Write(img); err != nil {
		slog.Error("failed to write chart", "error", err)
	}
}
