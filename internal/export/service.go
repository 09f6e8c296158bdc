package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/charts"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

const (
	TransactionsFile = "transactions.csv"
	SummaryFile      = "summary.txt"
)

// Bundle lists the files written by an export along with the summary they
// were built from.
type Bundle struct {
	Summary *report.Summary
	Files   []string
}

// Service writes report bundles.
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

// Export writes the transactions matching filter as CSV, a plain text summary
// and one PNG per chart kind into outputDir. Charts without data are skipped.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter, outputDir string) (*Bundle, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	budgets, err := s.budgets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	bundle := &Bundle{Summary: report.Summarize(txs, budgets, report.DefaultRecent)}

	path := filepath.Join(outputDir, TransactionsFile)
	if err := writeTransactions(path, txs); err != nil {
		return nil, fmt.Errorf("writing transactions: %w", err)
	}

	bundle.Files = append(bundle.Files, path)

	path = filepath.Join(outputDir, SummaryFile)
	if err := os.WriteFile(path, []byte(SummaryText(bundle.Summary)), 0o644); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	bundle.Files = append(bundle.Files, path)

	for _, kind := range charts.Kinds {
		img, err := charts.Render(kind, bundle.Summary)
		if errors.Is(err, charts.ErrNoData) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("rendering %s chart: %w", kind, err)
		}

		path := filepath.Join(outputDir, string(kind)+".png")
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s chart: %w", kind, err)
		}

		bundle.Files = append(bundle.Files, path)
	}

	return bundle, nil
}

// writeTransactions uses the column layout the CSV importer reads back.
func writeTransactions(path string, txs []*transaction.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Description", "Category", "Amount"}); err != nil {
		return err
	}

	for _, tx := range txs {
		if err := w.Write([]string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			tx.Category,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return f.Close()
}

// SummaryText renders a summary as a plain text report.
func SummaryText(s *report.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total expenses: %.2f (%d transactions)\n", s.Total, s.Count)

	sb.WriteString("\nBy category\n")

	for _, c := range s.Categories {
		fmt.Fprintf(&sb, "* %s | %.2f\n", c.Category, c.Amount)
	}

	sb.WriteString("\nBy month\n")

	for _, m := range s.Months {
		fmt.Fprintf(&sb, "* %s | %.2f\n", m.Label, m.Amount)
	}

	sb.WriteString("\nBudget vs actual\n")

	for _, b := range s.BudgetVsActual {
		fmt.Fprintf(&sb, "* %s (%s) | budget %.2f | actual %.2f\n", b.Category, b.Month, b.BudgetAmount, b.ActualAmount)
	}

	sb.WriteString("\nSpending insights\n")

	if len(s.Overspending) == 0 {
		sb.WriteString("No budget exceeded.\n")
	}

	for _, o := range s.Overspending {
		sb.WriteString(o.Insight() + "\n")
	}

	sb.WriteString("\nMost recent\n")

	for _, tx := range s.Recent {
		fmt.Fprintf(&sb, "* %s | %s | %s | %.2f\n", tx.Date.Format(time.DateOnly), tx.Description, tx.Category, tx.Amount)
	}

	if len(s.Malformed) > 0 {
		fmt.Fprintf(&sb, "\n%d malformed records were left out.\n", len(s.Malformed))
	}

	return sb.String()
}
