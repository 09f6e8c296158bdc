package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finviz/internal/report"
)

type categoryResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthResponse is one entry of a monthly series. Series are encoded as
// arrays in chronological order.
type MonthResponse struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type recentResponse struct {
	ID          uuid.UUID `json:"id"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

type comparisonResponse struct {
	Category     string  `json:"category"`
	BudgetAmount float64 `json:"budget_amount"`
	ActualAmount float64 `json:"actual_amount"`
	Month        string  `json:"month"`
}

type overspendResponse struct {
	Category      string  `json:"category"`
	OverageAmount float64 `json:"overage_amount"`
}

type malformedResponse struct {
	Kind   report.Kind `json:"kind"`
	ID     uuid.UUID   `json:"id"`
	Index  int         `json:"index"`
	Reason string      `json:"reason"`
}

type summaryResponse struct {
	TotalExpenses  float64              `json:"total_expenses"`
	Count          int                  `json:"count"`
	Categories     []categoryResponse   `json:"category_breakdown"`
	Months         []MonthResponse      `json:"monthly_totals"`
	Recent         []recentResponse     `json:"most_recent"`
	BudgetVsActual []comparisonResponse `json:"budget_vs_actual"`
	Overspending   []overspendResponse  `json:"overspending"`
	Insights       []string             `json:"insights"`
	Malformed      []malformedResponse  `json:"malformed,omitempty"`
}

func MonthResponses(months []report.MonthTotal) []MonthResponse {
	resp := make([]MonthResponse, len(months))
	for i, m := range months {
		resp[i] = MonthResponse{Month: m.Label, Amount: m.Amount}
	}

	return resp
}

func toSummaryResponse(s *report.Summary) summaryResponse {
	resp := summaryResponse{
		TotalExpenses:  s.Total,
		Count:          s.Count,
		Categories:     make([]categoryResponse, len(s.Categories)),
		Months:         MonthResponses(s.Months),
		Recent:         make([]recentResponse, len(s.Recent)),
		BudgetVsActual: make([]comparisonResponse, len(s.BudgetVsActual)),
		Overspending:   make([]overspendResponse, len(s.Overspending)),
		Insights:       make([]string, len(s.Overspending)),
	}

	for i, c := range s.Categories {
		resp.Categories[i] = categoryResponse{Category: c.Category, Amount: c.Amount}
	}

	for i, tx := range s.Recent {
		resp.Recent[i] = recentResponse{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Date:        tx.Date.Format(time.DateOnly),
			Description: tx.Description,
			Category:    tx.Category,
		}
	}

	for i, b := range s.BudgetVsActual {
		resp.BudgetVsActual[i] = comparisonResponse{
			Category:     b.Category,
			BudgetAmount: b.BudgetAmount,
			ActualAmount: b.ActualAmount,
			Month:        b.Month,
		}
	}

	for i, o := range s.Overspending {
		resp.Overspending[i] = overspendResponse{Category: o.Category, OverageAmount: o.OverageAmount}
		resp.Insights[i] = o.Insight()
	}

	for _, m := range s.Malformed {
		resp.Malformed = append(resp.Malformed, malformedResponse{
			Kind:   m.Kind,
			ID:     m.ID,
			Index:  m.Index,
			Reason: m.Reason,
		})
	}

	return resp
}
