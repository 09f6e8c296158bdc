// Package report derives summaries from transactions and budgets: totals,
// per-category and per-month sums, the most recent entries and budget
// comparisons.
//
// Every aggregate is a pure function over its inputs. Inputs are never
// reordered or modified and no result shares memory with them. Records that
// cannot be aggregated (a non-finite amount or a missing date) are left out of
// the numbers and returned as MalformedRecord values next to the result.
package report

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// Kind names the record type a MalformedRecord refers to.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindBudget      Kind = "budget"
)

const (
	ReasonNilRecord       = "missing record"
	ReasonNonFiniteAmount = "amount is not a finite number"
	ReasonMissingDate     = "date is missing"
)

// MalformedRecord identifies an input record that was skipped. Index is the
// record's position in the slice passed to the aggregate.
type MalformedRecord struct {
	Kind   Kind
	ID     uuid.UUID
	Index  int
	Reason string
}

func (m MalformedRecord) String() string {
	return fmt.Sprintf("%s #%d (%s): %s", m.Kind, m.Index, m.ID, m.Reason)
}

type CategoryTotal struct {
	Category string
	Amount   float64
}

type MonthTotal struct {
	Year   int
	Month  time.Month
	Label  string
	Amount float64
}

type BudgetComparison struct {
	Category     string
	BudgetAmount float64
	ActualAmount float64
	// Month is carried over from the budget for display. It does not limit
	// which transactions count towards ActualAmount.
	Month string
}

type Overspend struct {
	Category      string
	OverageAmount float64
}

// Insight phrases the overspend for display.
func (o Overspend) Insight() string {
	return fmt.Sprintf("Overspending in %s: %.2f over budget.", o.Category, o.OverageAmount)
}

// TotalExpenses sums the amount of every well-formed transaction.
func TotalExpenses(txs []*transaction.Transaction) (float64, []MalformedRecord) {
	valid, bad := validTransactions(txs)
	return total(valid), bad
}

// CategoryBreakdown sums amounts per category. Categories are compared as
// exact strings and appear in order of first occurrence.
func CategoryBreakdown(txs []*transaction.Transaction) ([]CategoryTotal, []MalformedRecord) {
	valid, bad := validTransactions(txs)
	return categoryTotals(valid), bad
}

// Totals converts a breakdown into a category to amount map.
func Totals(breakdown []CategoryTotal) map[string]float64 {
	m := make(map[string]float64, len(breakdown))
	for _, c := range breakdown {
		m[c.Category] = c.Amount
	}

	return m
}

// MonthlyBreakdown sums the amounts of one category per calendar month,
// labelled like "January 2024". Months are returned in chronological order.
func MonthlyBreakdown(txs []*transaction.Transaction, category string) ([]MonthTotal, []MalformedRecord) {
	var (
		matching []*transaction.Transaction
		bad      []MalformedRecord
	)

	for i, tx := range txs {
		if tx != nil && tx.Category != category {
			continue
		}

		if m, ok := checkTransaction(i, tx); !ok {
			bad = append(bad, m)
			continue
		}

		matching = append(matching, tx)
	}

	return monthTotals(matching, longLabel), bad
}

// MonthlyTotals sums all amounts per calendar month, labelled like "Jan 2024".
func MonthlyTotals(txs []*transaction.Transaction) ([]MonthTotal, []MalformedRecord) {
	valid, bad := validTransactions(txs)
	return monthTotals(valid, shortLabel), bad
}

// MostRecent returns copies of the n latest transactions, newest first.
// Transactions sharing a date keep their input order.
func MostRecent(txs []*transaction.Transaction, n int) ([]*transaction.Transaction, []MalformedRecord) {
	valid, bad := validTransactions(txs)
	return mostRecent(valid, n), bad
}

// BudgetVsActual pairs each budget with the spend of its category. Spend is
// taken over every transaction of the category regardless of the budget's
// month. Rows follow budget order.
func BudgetVsActual(txs []*transaction.Transaction, budgets []*budget.Budget) ([]BudgetComparison, []MalformedRecord) {
	valid, bad := validTransactions(txs)
	okBudgets, badBudgets := validBudgets(budgets)

	return compare(valid, okBudgets), append(bad, badBudgets...)
}

// OverspendingReport lists the budgets whose actual spend is strictly above
// the budgeted amount, with the difference.
func OverspendingReport(txs []*transaction.Transaction, budgets []*budget.Budget) ([]Overspend, []MalformedRecord) {
	rows, bad := BudgetVsActual(txs, budgets)
	return overspending(rows), bad
}

func checkTransaction(i int, tx *transaction.Transaction) (MalformedRecord, bool) {
	m := MalformedRecord{Kind: KindTransaction, Index: i}

	switch {
	case tx == nil:
		m.Reason = ReasonNilRecord
	case math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0):
		m.ID = tx.ID
		m.Reason = ReasonNonFiniteAmount
	case tx.Date.IsZero():
		m.ID = tx.ID
		m.Reason = ReasonMissingDate
	default:
		return MalformedRecord{}, true
	}

	return m, false
}

func validTransactions(txs []*transaction.Transaction) ([]*transaction.Transaction, []MalformedRecord) {
	valid := make([]*transaction.Transaction, 0, len(txs))

	var bad []MalformedRecord

	for i, tx := range txs {
		if m, ok := checkTransaction(i, tx); !ok {
			bad = append(bad, m)
			continue
		}

		valid = append(valid, tx)
	}

	return valid, bad
}

func validBudgets(budgets []*budget.Budget) ([]*budget.Budget, []MalformedRecord) {
	valid := make([]*budget.Budget, 0, len(budgets))

	var bad []MalformedRecord

	for i, b := range budgets {
		switch {
		case b == nil:
			bad = append(bad, MalformedRecord{Kind: KindBudget, Index: i, Reason: ReasonNilRecord})
		case math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0):
			bad = append(bad, MalformedRecord{Kind: KindBudget, ID: b.ID, Index: i, Reason: ReasonNonFiniteAmount})
		default:
			valid = append(valid, b)
		}
	}

	return valid, bad
}

func total(txs []*transaction.Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		sum += tx.Amount
	}

	return sum
}

func categoryTotals(txs []*transaction.Transaction) []CategoryTotal {
	out := []CategoryTotal{}
	index := make(map[string]int)

	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}

		out[i].Amount += tx.Amount
	}

	return out
}

type monthKey struct {
	year  int
	month time.Month
}

func longLabel(k monthKey) string {
	return fmt.Sprintf("%s %d", k.month, k.year)
}

func shortLabel(k monthKey) string {
	return fmt.Sprintf("%.3s %d", k.month, k.year)
}

func monthTotals(txs []*transaction.Transaction, label func(monthKey) string) []MonthTotal {
	sums := make(map[monthKey]float64)

	var keys []monthKey

	for _, tx := range txs {
		k := monthKey{year: tx.Date.Year(), month: tx.Date.Month()}
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}

		sums[k] += tx.Amount
	}

	slices.SortFunc(keys, func(a, b monthKey) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}

		return cmp.Compare(a.month, b.month)
	})

	out := make([]MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthTotal{
			Year:   k.year,
			Month:  k.month,
			Label:  label(k),
			Amount: sums[k],
		})
	}

	return out
}

func mostRecent(txs []*transaction.Transaction, n int) []*transaction.Transaction {
	if n <= 0 {
		return []*transaction.Transaction{}
	}

	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b *transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	sorted = sorted[:min(n, len(sorted))]

	out := make([]*transaction.Transaction, len(sorted))
	for i, tx := range sorted {
		c := *tx
		if tx.UpdatedAt != nil {
			c.UpdatedAt = new(*tx.UpdatedAt)
		}

		out[i] = &c
	}

	return out
}

func compare(txs []*transaction.Transaction, budgets []*budget.Budget) []BudgetComparison {
	actual := Totals(categoryTotals(txs))

	out := make([]BudgetComparison, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetComparison{
			Category:     b.Category,
			BudgetAmount: b.Amount,
			ActualAmount: actual[b.Category],
			Month:        b.Month,
		})
	}

	return out
}

func overspending(rows []BudgetComparison) []Overspend {
	out := []Overspend{}

	for _, r := range rows {
		if r.ActualAmount <= r.BudgetAmount {
			continue
		}

		out = append(out, Overspend{
			Category:      r.Category,
			OverageAmount: r.ActualAmount - r.BudgetAmount,
		})
	}

	return out
}
