package report

import (
	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// Summary bundles every dashboard aggregate computed over one snapshot.
type Summary struct {
	Total          float64
	Count          int
	Categories     []CategoryTotal
	Months         []MonthTotal
	Recent         []*transaction.Transaction
	BudgetVsActual []BudgetComparison
	Overspending   []Overspend
	Malformed      []MalformedRecord
}

// Summarize computes all aggregates at once. Each malformed record is
// reported a single time.
func Summarize(txs []*transaction.Transaction, budgets []*budget.Budget, recent int) *Summary {
	valid, bad := validTransactions(txs)
	okBudgets, badBudgets := validBudgets(budgets)
	rows := compare(valid, okBudgets)

	return &Summary{
		Total:          total(valid),
		Count:          len(valid),
		Categories:     categoryTotals(valid),
		Months:         monthTotals(valid, shortLabel),
		Recent:         mostRecent(valid, recent),
		BudgetVsActual: rows,
		Overspending:   overspending(rows),
		Malformed:      append(bad, badBudgets...),
	}
}
