package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("transaction not found")

// DefaultCategories is the set offered by the input forms. Storage and
// reporting accept any category string.
var DefaultCategories = []string{"Food", "Rent", "Entertainment", "Transport", "Utilities"}

// Transaction represents a single recorded expense. RawDescription keeps the
// description as first recorded and is never updated.
type Transaction struct {
	ID             uuid.UUID
	Amount         float64
	Date           time.Time
	Description    string
	RawDescription string
	Category       string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// dateLayouts are tried in order by ParseDate. The last one is the
// day/month/year format used by the entry forms.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"02/01/2006",
}

// ParseDate parses a calendar date and truncates it to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD, RFC 3339 or DD/MM/YYYY", s)
}
