package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/export"
	exporthttp "github.com/MrJamesThe3rd/finviz/internal/http/export"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func newRouter(t *testing.T) (http.Handler, *transaction.MockRepository, *budget.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	svc := export.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	r := chi.NewRouter()
	exporthttp.NewHandler(svc).Routes(r)

	return r, txRepo, budgetRepo
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))

	return rec
}

func TestHandler_Download(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txRepo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{StartDate: &start}).
		Return([]*transaction.Transaction{
			{ID: uuid.New(), Amount: 42, Date: start, Description: "Internet", Category: "Utilities"},
		}, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	rec := post(h, "/download", `{"start_date": "2024-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.ElementsMatch(t, []string{"transactions.csv", "summary.txt", "categories.png", "monthly.png"}, names)
}

func TestHandler_Metadata(t *testing.T) {
	h, txRepo, budgetRepo := newRouter(t)

	txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return(nil, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	rec := post(h, "/", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Files   []string `json:"files"`
		Summary string   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"transactions.csv", "summary.txt"}, got.Files)
	assert.Contains(t, got.Summary, "Total expenses: 0.00 (0 transactions)")
}

func TestHandler_BadDate(t *testing.T) {
	h, _, _ := newRouter(t)

	rec := post(h, "/download", `{"end_date": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
