package transaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func TestParseDate(t *testing.T) {
	type testCase struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}

	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []testCase{
		{name: "DateOnly", in: "2024-01-15", want: jan15},
		{name: "RFC3339", in: "2024-01-15T18:30:00Z", want: jan15},
		{name: "DayMonthYear", in: "15/01/2024", want: jan15},
		{name: "Padded", in: "  2024-01-15 ", want: jan15},
		{name: "Empty", in: "", wantErr: true},
		{name: "MonthDayYear", in: "01/15/2024", wantErr: true},
		{name: "Garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
