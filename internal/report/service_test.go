package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func newService(ctrl *gomock.Controller) (*report.Service, *transaction.MockRepository, *budget.MockRepository) {
	txRepo := transaction.NewMockRepository(ctrl)
	budgetRepo := budget.NewMockRepository(ctrl)

	svc := report.NewService(transaction.NewService(txRepo), budget.NewService(budgetRepo))

	return svc, txRepo, budgetRepo
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, txRepo, budgetRepo := newService(ctrl)

	txRepo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{}).
		Return([]*transaction.Transaction{
			tx(300, day(2024, 1, 10), "Food"),
			tx(250, day(2024, 1, 20), "Food"),
			tx(1000, day(2024, 1, 1), "Rent"),
		}, nil)
	budgetRepo.EXPECT().
		ListBudgets(gomock.Any()).
		Return([]*budget.Budget{{Category: "Food", Amount: 500, Month: "2024-01"}}, nil)

	got, err := svc.Summary(context.Background(), transaction.ListFilter{}, report.DefaultRecent)
	require.NoError(t, err)
	assert.Equal(t, 1550.0, got.Total)
	assert.Len(t, got.Recent, 3)
	assert.Equal(t, []report.Overspend{{Category: "Food", OverageAmount: 50}}, got.Overspending)
}

func TestService_Summary_FilteredBudgets(t *testing.T) {
	food := "Food"
	feb := day(2024, 2, 1)

	tests := []struct {
		name          string
		filter        transaction.ListFilter
		filteredTxs   []*transaction.Transaction
		wantTotal     float64
		wantActuals   map[string]float64
		wantOverspent []report.Overspend
	}{
		{
			name:        "Category",
			filter:      transaction.ListFilter{Category: &food},
			filteredTxs: []*transaction.Transaction{tx(550, day(2024, 1, 10), "Food")},
			wantTotal:   550,
			wantActuals: map[string]float64{"Food": 550, "Rent": 1200},
			wantOverspent: []report.Overspend{
				{Category: "Food", OverageAmount: 50},
				{Category: "Rent", OverageAmount: 200},
			},
		},
		{
			name:        "StartDate",
			filter:      transaction.ListFilter{StartDate: &feb},
			filteredTxs: []*transaction.Transaction{tx(200, day(2024, 2, 1), "Rent")},
			wantTotal:   200,
			wantActuals: map[string]float64{"Food": 550, "Rent": 1200},
			wantOverspent: []report.Overspend{
				{Category: "Food", OverageAmount: 50},
				{Category: "Rent", OverageAmount: 200},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, txRepo, budgetRepo := newService(ctrl)

			txRepo.EXPECT().ListTransactions(gomock.Any(), tt.filter).Return(tt.filteredTxs, nil)
			txRepo.EXPECT().
				ListTransactions(gomock.Any(), transaction.ListFilter{}).
				Return([]*transaction.Transaction{
					tx(550, day(2024, 1, 10), "Food"),
					tx(1000, day(2024, 1, 1), "Rent"),
					tx(200, day(2024, 2, 1), "Rent"),
				}, nil)
			budgetRepo.EXPECT().
				ListBudgets(gomock.Any()).
				Return([]*budget.Budget{
					{Category: "Food", Amount: 500, Month: "2024-01"},
					{Category: "Rent", Amount: 1000, Month: "2024-01"},
				}, nil)

			got, err := svc.Summary(context.Background(), tt.filter, report.DefaultRecent)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, got.Total)

			actuals := make(map[string]float64, len(got.BudgetVsActual))
			for _, row := range got.BudgetVsActual {
				actuals[row.Category] = row.ActualAmount
			}

			assert.Equal(t, tt.wantActuals, actuals)
			assert.Equal(t, tt.wantOverspent, got.Overspending)
		})
	}
}

func TestService_Summary_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(tx *transaction.MockRepository, b *budget.MockRepository)
	}{
		{
			name: "TransactionsFail",
			setupMock: func(tx *transaction.MockRepository, b *budget.MockRepository) {
				tx.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
				b.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil).AnyTimes()
			},
		},
		{
			name: "BudgetsFail",
			setupMock: func(tx *transaction.MockRepository, b *budget.MockRepository) {
				tx.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
				b.EXPECT().ListBudgets(gomock.Any()).Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, txRepo, budgetRepo := newService(ctrl)
			tt.setupMock(txRepo, budgetRepo)

			got, err := svc.Summary(context.Background(), transaction.ListFilter{}, report.DefaultRecent)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestService_MonthlyBreakdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, txRepo, _ := newService(ctrl)

	food := "Food"
	txRepo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{Category: &food}).
		Return([]*transaction.Transaction{
			tx(10, day(2024, 1, 15), "Food"),
			tx(7, day(2024, 1, 31), "Food"),
		}, nil)

	got, err := svc.MonthlyBreakdown(context.Background(), "Food")
	require.NoError(t, err)
	assert.Equal(t, []report.MonthTotal{
		{Year: 2024, Month: time.January, Label: "January 2024", Amount: 17},
	}, got)
}
