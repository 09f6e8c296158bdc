package importcsv_test

import (
	"bytes"
	"mime/multipart"
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

	"github.com/MrJamesThe3rd/finviz/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

const fileContent = `Date,Description,Category,Amount
2024-01-15,Coffee,Food,3.20
2024-01-20,January rent,Rent,900
`

func newRouter(t *testing.T) (http.Handler, *transaction.MockRepository, *transaction.MockImportTx) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)

	r := chi.NewRouter()
	importcsv.NewHandler(importer.NewService(nil), transaction.NewService(repo)).Routes(r)

	return r, repo, itx
}

func upload(t *testing.T, h http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("file", "transactions.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Import_Created(t *testing.T) {
	h, repo, itx := newRouter(t)

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Len(2)).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(2)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := upload(t, h, fileContent)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"imported":2`)
	assert.Contains(t, rec.Body.String(), `"uncategorized":0`)
}

func TestHandler_Import_Conflict(t *testing.T) {
	h, repo, itx := newRouter(t)

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      3.2,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Coffee",
		Category:    "Food",
	}

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := upload(t, h, fileContent)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"description":"January rent"`)
	assert.Contains(t, rec.Body.String(), existing.ID.String())
}

func TestHandler_Import_BadFile(t *testing.T) {
	h, _, _ := newRouter(t)

	rec := upload(t, h, "nothing,useful\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expectSave bool
		wantStatus int
	}{
		{
			name:       "Created",
			body:       `{"params": [{"amount": 900, "date": "2024-01-20", "description": "January rent", "category": "Rent"}]}`,
			expectSave: true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Empty",
			body:       `{"params": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidRow",
			body:       `{"params": [{"amount": 900, "date": "2024-01-20", "description": "January rent"}]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, itx := newRouter(t)

			if tt.expectSave {
				repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
				itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/confirm", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}
