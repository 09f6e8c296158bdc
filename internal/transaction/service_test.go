package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					Amount:      12.5,
					Date:        time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC),
					Description: "Groceries",
					Category:    "Food",
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					Amount: 5,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.args.params.Category, got.Category)
		})
	}
}

func TestService_List(t *testing.T) {
	food := "Food"

	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "ByCategory",
			args: args{filter: transaction.ListFilter{Category: &food}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{Category: &food}).
					Return([]*transaction.Transaction{{ID: uuid.New(), Category: food}}, nil)
			},
			wantLen: 1,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:          id,
			Amount:      10,
			Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Description: "Bus",
			Category:    "Transport",
		}
	}

	t.Run("AppliesOnlySetFields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		amount := 42.0
		category := "Entertainment"

		got, err := transaction.NewService(repo).Update(context.Background(), id, transaction.UpdateParams{
			Amount:   &amount,
			Category: &category,
		})
		require.NoError(t, err)
		assert.Equal(t, 42.0, got.Amount)
		assert.Equal(t, "Entertainment", got.Category)
		assert.Equal(t, "Bus", got.Description)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)

		_, err := transaction.NewService(repo).Update(context.Background(), id, transaction.UpdateParams{})
		assert.ErrorIs(t, err, transaction.ErrNotFound)
	})
}

func TestService_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(transaction.ErrNotFound)

	err := transaction.NewService(repo).Delete(context.Background(), id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      3.2,
			Description: "Coffee",
			Category:    "Food",
			Date:        date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      3.2,
			Description: "Coffee",
			Category:    "Food",
			Date:        jan15,
		},
		{
			Amount:      900,
			Description: "January rent",
			Category:    "Rent",
			Date:        jan20,
		},
	}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      3.2,
		Description: "Coffee",
		Category:    "Food",
		Date:        jan15,
	}

	repo.EXPECT().BeginImport(gomock.Any(), jan15, jan20).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	require.Len(t, result.New, 1)
	assert.Equal(t, "January rent", result.New[0].Description)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_EditedExisting(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		existing *transaction.Transaction
	}{
		{
			name: "ReviewedCategory",
			existing: &transaction.Transaction{
				ID:             uuid.New(),
				Amount:         12.5,
				Date:           jan15,
				Description:    "LIDL 123",
				RawDescription: "LIDL 123",
				Category:       "Food",
			},
		},
		{
			name: "RenamedDescription",
			existing: &transaction.Transaction{
				ID:             uuid.New(),
				Amount:         12.5,
				Date:           jan15,
				Description:    "Weekly groceries",
				RawDescription: "LIDL 123",
				Category:       "Food",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			itx := transaction.NewMockImportTx(ctrl)

			params := []transaction.CreateParams{
				{
					Amount:         12.5,
					Date:           jan15,
					Description:    "LIDL 123",
					RawDescription: "LIDL 123",
					Category:       "Uncategorized",
				},
			}

			repo.EXPECT().BeginImport(gomock.Any(), jan15, jan15).Return(itx, nil)
			itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{tt.existing}, nil)
			itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Times(0)
			itx.EXPECT().Rollback().Return(nil)

			result, err := transaction.NewService(repo).ImportBatch(context.Background(), params)
			require.NoError(t, err)
			assert.Empty(t, result.Imported)
			assert.Empty(t, result.New)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, tt.existing, result.Conflicts[0].Existing)
		})
	}
}

func TestImportKey_IgnoresEditableFields(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stored := &transaction.Transaction{
		Amount:         12.5,
		Date:           date,
		Description:    "Weekly groceries",
		RawDescription: "LIDL 123",
		Category:       "Food",
	}
	incoming := transaction.CreateParams{Amount: 12.5, Date: date, Description: "LIDL 123", Category: "Uncategorized"}

	assert.Equal(t, stored.ImportKey(), incoming.ImportKey())

	incoming.Amount = 12.6
	assert.NotEqual(t, stored.ImportKey(), incoming.ImportKey())
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      3.2,
			Description: "Coffee",
			Category:    "Food",
			Date:        date,
		},
	}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 3.2, txs[0].Amount)
	assert.Equal(t, "Food", txs[0].Category)
}
