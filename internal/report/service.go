package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

// DefaultRecent is the number of recent transactions shown when the caller
// does not ask for a specific count.
const DefaultRecent = 5

// Service loads a snapshot of transactions and budgets and runs the
// aggregates over it.
type Service struct {
	transactions *transaction.Service
	budgets      *budget.Service
}

func NewService(transactions *transaction.Service, budgets *budget.Service) *Service {
	return &Service{
		transactions: transactions,
		budgets:      budgets,
	}
}

// Summary computes the dashboard over the transactions matching filter and
// every budget. Budget rows always compare against every transaction, so a
// filter narrows the totals without hiding spend from other budgets. The
// lists are fetched concurrently.
func (s *Service) Summary(ctx context.Context, filter transaction.ListFilter, recent int) (*Summary, error) {
	var (
		txs     []*transaction.Transaction
		all     []*transaction.Transaction
		budgets []*budget.Budget
	)

	filtered := filter != transaction.ListFilter{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		txs, err = s.transactions.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		return nil
	})

	if filtered {
		g.Go(func() error {
			var err error

			all, err = s.transactions.List(gctx, transaction.ListFilter{})
			if err != nil {
				return fmt.Errorf("listing all transactions: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		var err error

		budgets, err = s.budgets.List(gctx)
		if err != nil {
			return fmt.Errorf("listing budgets: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summarize(txs, budgets, recent)
	logMalformed(ctx, "summary", summary.Malformed)

	if filtered {
		valid, bad := validTransactions(all)
		okBudgets, _ := validBudgets(budgets)

		summary.BudgetVsActual = compare(valid, okBudgets)
		summary.Overspending = overspending(summary.BudgetVsActual)
		logMalformed(ctx, "budget actuals", bad)
	}

	return summary, nil
}

// MonthlyBreakdown returns the per-month spend of a single category.
func (s *Service) MonthlyBreakdown(ctx context.Context, category string) ([]MonthTotal, error) {
	txs, err := s.transactions.List(ctx, transaction.ListFilter{Category: &category})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	months, bad := MonthlyBreakdown(txs, category)
	logMalformed(ctx, "monthly breakdown", bad)

	return months, nil
}

func logMalformed(ctx context.Context, op string, bad []MalformedRecord) {
	for _, m := range bad {
		slog.WarnContext(ctx, "skipping malformed record",
			"op", op,
			"kind", m.Kind,
			"id", m.ID,
			"index", m.Index,
			"reason", m.Reason,
		)
	}
}
