// Package charts renders report aggregates as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MrJamesThe3rd/finviz/internal/report"
)

var (
	ErrNoData      = errors.New("no data to chart")
	ErrUnknownKind = errors.New("unknown chart kind")
)

type Kind string

const (
	KindCategories Kind = "categories"
	KindMonthly    Kind = "monthly"
	KindBudgets    Kind = "budgets"
)

var Kinds = []Kind{KindCategories, KindMonthly, KindBudgets}

var (
	colorBudget = drawing.ColorFromHex("4e79a7")
	colorActual = drawing.ColorFromHex("59a14f")
	colorOver   = drawing.ColorFromHex("e15759")
)

var background = chart.Style{
	Padding: chart.Box{
		Top:    40,
		Left:   20,
		Right:  20,
		Bottom: 20,
	},
	FillColor: chart.ColorWhite,
}

func amountFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}

	return ""
}

// Render draws the chart of the given kind from a summary.
func Render(kind Kind, s *report.Summary) ([]byte, error) {
	switch kind {
	case KindCategories:
		return CategoryPie(s.Categories)
	case KindMonthly:
		return MonthlyBars(s.Months)
	case KindBudgets:
		return BudgetBars(s.BudgetVsActual)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// CategoryPie draws the share of each category. Categories with a zero or
// negative total cannot be drawn as slices and are left out.
func CategoryPie(totals []report.CategoryTotal) ([]byte, error) {
	var (
		values []chart.Value
		sum    float64
	)

	for _, c := range totals {
		if c.Amount > 0 {
			sum += c.Amount
		}
	}

	for _, c := range totals {
		if c.Amount <= 0 {
			continue
		}

		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f (%.1f%%)", c.Category, c.Amount, c.Amount/sum*100),
			Value: c.Amount,
		})
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:      "Spending by category",
		Width:      800,
		Height:     800,
		Values:     values,
		Background: background,
	}

	buf := new(bytes.Buffer)
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("rendering category pie: %w", err)
	}

	return buf.Bytes(), nil
}

// MonthlyBars draws one bar per month in the order given.
func MonthlyBars(months []report.MonthTotal) ([]byte, error) {
	bars := make([]chart.Value, 0, len(months))
	for _, m := range months {
		bars = append(bars, chart.Value{
			Label: m.Label,
			Value: m.Amount,
			Style: chart.Style{
				StrokeColor: colorActual,
				FillColor:   colorActual,
			},
		})
	}

	if allZero(bars) {
		return nil, ErrNoData
	}

	return renderBars("Monthly expenses", bars)
}

// BudgetBars draws a budget bar next to the actual spend of each budget. An
// actual bar over its budget is highlighted.
func BudgetBars(rows []report.BudgetComparison) ([]byte, error) {
	bars := make([]chart.Value, 0, 2*len(rows))
	for _, r := range rows {
		actualColor := colorActual
		if r.ActualAmount > r.BudgetAmount {
			actualColor = colorOver
		}

		bars = append(bars,
			chart.Value{
				Label: r.Category + " budget",
				Value: r.BudgetAmount,
				Style: chart.Style{StrokeColor: colorBudget, FillColor: colorBudget},
			},
			chart.Value{
				Label: r.Category + " actual",
				Value: r.ActualAmount,
				Style: chart.Style{StrokeColor: actualColor, FillColor: actualColor},
			},
		)
	}

	if allZero(bars) {
		return nil, ErrNoData
	}

	return renderBars("Budget vs actual", bars)
}

func renderBars(title string, bars []chart.Value) ([]byte, error) {
	graph := chart.BarChart{
		Title:      title,
		Width:      max(600, 90*len(bars)),
		Height:     500,
		BarWidth:   50,
		Background: background,
		YAxis: chart.YAxis{
			ValueFormatter: amountFormatter,
			Range:          valueRange(bars),
		},
		Bars: bars,
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", title, err)
	}

	return buf.Bytes(), nil
}

// valueRange spans every bar and zero. go-chart refuses to render a range
// whose ends are equal.
func valueRange(bars []chart.Value) *chart.ContinuousRange {
	var lo, hi float64
	for _, b := range bars {
		lo = min(lo, b.Value)
		hi = max(hi, b.Value)
	}

	if lo == hi {
		hi = lo + 1
	}

	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func allZero(values []chart.Value) bool {
	for _, v := range values {
		if v.Value != 0 {
			return false
		}
	}

	return true
}
