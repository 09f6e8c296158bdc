package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MonthLayout = "2006-01"

var (
	ErrNotFound     = errors.New("budget not found")
	ErrInvalidMonth = errors.New("invalid month: expected YYYY-MM")
)

// Budget is a spending ceiling for one category in one month. The month is
// informational: actual spend is matched on category alone.
type Budget struct {
	ID        uuid.UUID
	Category  string
	Amount    float64
	Month     string
	CreatedAt time.Time
}
