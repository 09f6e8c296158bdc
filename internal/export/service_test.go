package export_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/export"
	"github.com/MrJamesThe3rd/finviz/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func fixtures() []*transaction.Transaction {
	jan := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	return []*transaction.Transaction{
		{ID: uuid.New(), Amount: 300, Date: jan(10), Description: "Groceries", Category: "Food"},
		{ID: uuid.New(), Amount: 250, Date: jan(20), Description: "Dinner, downtown", Category: "Food"},
		{ID: uuid.New(), Amount: 1000, Date: jan(1), Description: "Rent", Category: "Rent"},
	}
}

func TestService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	txs := fixtures()
	txRepo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return(txs, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return([]*budget.Budget{
		{ID: uuid.New(), Category: "Food", Amount: 500, Month: "2024-01"},
	}, nil)

	svc := export.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	dir := t.TempDir()

	bundle, err := svc.Export(context.Background(), transaction.ListFilter{}, dir)
	require.NoError(t, err)

	names := make([]string, 0, len(bundle.Files))
	for _, f := range bundle.Files {
		names = append(names, filepath.Base(f))
	}

	assert.Equal(t, []string{
		export.TransactionsFile,
		export.SummaryFile,
		"categories.png",
		"monthly.png",
		"budgets.png",
	}, names)

	f, err := os.Open(filepath.Join(dir, export.TransactionsFile))
	require.NoError(t, err)
	defer f.Close()

	roundTrip, err := csvfile.NewParser().Parse(f)
	require.NoError(t, err)
	require.Len(t, roundTrip, len(txs))

	for i, p := range roundTrip {
		assert.Equal(t, txs[i].ImportKey(), p.ImportKey())
	}

	summary, err := os.ReadFile(filepath.Join(dir, export.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Total expenses: 1550.00 (3 transactions)")
	assert.Contains(t, string(summary), "Overspending in Food: 50.00 over budget.")
}

func TestService_Export_NoCharts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)
	budgetRepo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	svc := export.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	bundle, err := svc.Export(context.Background(), transaction.ListFilter{}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, bundle.Files, 2)
}

func TestService_Export_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	txRepo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	svc := export.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	_, err := svc.Export(context.Background(), transaction.ListFilter{}, t.TempDir())
	assert.Error(t, err)
}

func TestSummaryText(t *testing.T) {
	txs := fixtures()
	txs = append(txs, &transaction.Transaction{ID: uuid.New(), Amount: math.NaN(), Date: txs[0].Date, Category: "Food"})

	body := export.SummaryText(report.Summarize(txs, nil, 2))

	expectedSubstrings := []string{
		"* Food | 550.00",
		"* Rent | 1000.00",
		"* Jan 2024 | 1550.00",
		"No budget exceeded.",
		"* 2024-01-20 | Dinner, downtown | Food | 250.00",
		"1 malformed records were left out.",
	}

	for _, sub := range expectedSubstrings {
		assert.True(t, strings.Contains(body, sub), "expected body to contain %q", sub)
	}
}
