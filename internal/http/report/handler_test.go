package report_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	reporthttp "github.com/MrJamesThe3rd/finviz/internal/http/report"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func jan(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func newRouter(t *testing.T) (http.Handler, *transaction.MockRepository, *budget.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	svc := report.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	r := chi.NewRouter()
	reporthttp.NewHandler(svc, 2).Routes(r)

	return r, txRepo, budgetRepo
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func sample() []*transaction.Transaction {
	return []*transaction.Transaction{
		{ID: uuid.New(), Amount: 300, Date: jan(10), Description: "Groceries", Category: "Food"},
		{ID: uuid.New(), Amount: 250, Date: jan(20), Description: "Dinner", Category: "Food"},
		{ID: uuid.New(), Amount: 1000, Date: jan(1), Description: "Rent", Category: "Rent"},
		{ID: uuid.New(), Amount: math.Inf(1), Date: jan(2), Description: "Broken", Category: "Food"},
	}
}

func TestHandler_Summary(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return(sample(), nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return([]*budget.Budget{
		{ID: uuid.New(), Category: "Food", Amount: 500, Month: "2024-01"},
	}, nil)

	rec := get(h, "/summary")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		TotalExpenses float64 `json:"total_expenses"`
		Count         int     `json:"count"`
		Recent        []struct {
			Description string `json:"description"`
		} `json:"most_recent"`
		Overspending []struct {
			Category      string  `json:"category"`
			OverageAmount float64 `json:"overage_amount"`
		} `json:"overspending"`
		Insights  []string `json:"insights"`
		Malformed []struct {
			Reason string `json:"reason"`
		} `json:"malformed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 1550.0, got.TotalExpenses)
	assert.Equal(t, 3, got.Count)
	require.Len(t, got.Recent, 2)
	assert.Equal(t, "Dinner", got.Recent[0].Description)
	require.Len(t, got.Overspending, 1)
	assert.Equal(t, 50.0, got.Overspending[0].OverageAmount)
	assert.Equal(t, []string{"Overspending in Food: 50.00 over budget."}, got.Insights)
	require.Len(t, got.Malformed, 1)
	assert.Equal(t, report.ReasonNonFiniteAmount, got.Malformed[0].Reason)
}

func TestHandler_Summary_BadQuery(t *testing.T) {
	tests := []string{"/summary?recent=-1", "/summary?recent=x", "/summary?start_date=nope"}

	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			h, _, _ := newRouter(t)
			assert.Equal(t, http.StatusBadRequest, get(h, target).Code)
		})
	}
}

func TestHandler_MonthlyBreakdown(t *testing.T) {
	h, txRepo, _ := newRouter(t)

	rent := "Rent"
	txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{Category: &rent}).Return([]*transaction.Transaction{
		{ID: uuid.New(), Amount: 1000, Date: jan(1), Category: "Rent"},
		{ID: uuid.New(), Amount: 950, Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Category: "Rent"},
	}, nil)

	rec := get(h, "/monthly-breakdown/Rent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"month":"December 2023","amount":950},{"month":"January 2024","amount":1000}]`, rec.Body.String())
}

func TestHandler_Chart(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(sample(), nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	rec := get(h, "/charts/categories.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHandler_Chart_NoData(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	assert.Equal(t, http.StatusNoContent, get(h, "/charts/budgets.png").Code)
}

func TestHandler_Chart_UnknownKind(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	assert.Equal(t, http.StatusNotFound, get(h, "/charts/radar.png").Code)
}
