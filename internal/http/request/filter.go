package request

import (
	"net/http"

	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// TransactionFilter reads the category, start_date and end_date query
// parameters. Dates accept the formats of transaction.ParseDate.
func TransactionFilter(r *http.Request) (transaction.ListFilter, error) {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := transaction.ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := transaction.ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.EndDate = new(t)
	}

	return filter, nil
}
