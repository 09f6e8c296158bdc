package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/matching"
)

const splitCSV = `Date,Description,Debit,Credit
2024-02-03,UBER TRIP,18.40,
2024-02-04,NETFLIX.COM,9.99,
2024-02-05,MYSTERY SHOP,5.00,
`

func TestService_Import_SuggestsCategories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().FindMatch(gomock.Any(), "UBER TRIP").Return("Transport", nil)
	repo.EXPECT().FindMatch(gomock.Any(), "NETFLIX.COM").Return("", errors.New("db error"))
	repo.EXPECT().FindMatch(gomock.Any(), "MYSTERY SHOP").Return("", nil)

	svc := importer.NewService(matching.NewService(repo))

	got, err := svc.Import(context.Background(), strings.NewReader(splitCSV))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Transport", got[0].Category)
	assert.Equal(t, importer.FallbackCategory, got[1].Category)
	assert.Equal(t, importer.FallbackCategory, got[2].Category)
}

func TestService_Import_KeepsFileCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	svc := importer.NewService(matching.NewService(repo))

	got, err := svc.Import(context.Background(), strings.NewReader("Date,Description,Category,Amount\n2024-01-15,Groceries,Food,30\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Food", got[0].Category)
}

func TestService_Import_ParseError(t *testing.T) {
	svc := importer.NewService(nil)

	_, err := svc.Import(context.Background(), strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}
