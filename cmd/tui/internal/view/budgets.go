package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateAdd
	budgetStateConfirmDelete
	budgetStateConfirmReset
)

type BudgetModel struct {
	CommonModel
	budgetService *budget.Service
	reportService *report.Service

	state   budgetState
	table   table.Model
	budgets []*budget.Budget
	actual  map[string]float64
	form    *huh.Form

	loading bool
	status  string
	err     error

	formCategory string
	formAmount   string
	formMonth    string
}

func NewBudgetModel(budgetSvc *budget.Service, reportSvc *report.Service) BudgetModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Month", Width: 9},
			{Title: "Category", Width: 16},
			{Title: "Budget", Width: 12},
			{Title: "Actual", Width: 12},
			{Title: "Status", Width: 22},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BudgetModel{
		budgetService: budgetSvc,
		reportService: reportSvc,
		table:         t,
		loading:       true,
	}
}

func (m BudgetModel) Title() string { return "Budgets" }

func (m BudgetModel) ShortHelp() string {
	switch m.state {
	case budgetStateAdd:
		return "Navigate form | Esc: cancel"
	case budgetStateConfirmDelete, budgetStateConfirmReset:
		return "y: confirm | n: cancel"
	}

	return "Esc: back | a: add | x: delete | R: reset all | r: refresh"
}

func (m BudgetModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.budgets = msg.budgets
			m.actual = msg.actual
			m.refreshTable()
		}

		return m, nil

	case budgetChangedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()
	}

	switch m.state {
	case budgetStateBrowse:
		return m.updateBrowse(msg)
	case budgetStateAdd:
		return m.updateAdd(msg)
	case budgetStateConfirmDelete, budgetStateConfirmReset:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m BudgetModel) selected() *budget.Budget {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.budgets) {
		return nil
	}

	return m.budgets[idx]
}

func (m BudgetModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			if m.selected() != nil {
				m.state = budgetStateConfirmDelete
			}

			return m, nil
		case "R":
			if len(m.budgets) > 0 {
				m.state = budgetStateConfirmReset
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		if m.state == budgetStateConfirmReset {
			return m, m.resetCmd()
		}

		return m, m.deleteCmd()
	case "n", "esc":
		m.state = budgetStateBrowse
	}

	return m, nil
}

func (m BudgetModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formCategory = transaction.DefaultCategories[0]
	m.formAmount = ""
	m.formMonth = time.Now().Format(budget.MonthLayout)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions("")...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("amount").
				Title("Monthly Limit").
				Placeholder("0.00").
				Value(&m.formAmount).
				Validate(validateAmount),

			huh.NewInput().
				Key("month").
				Title("Month").
				Placeholder("YYYY-MM").
				Value(&m.formMonth).
				Validate(func(s string) error {
					if _, err := time.Parse(budget.MonthLayout, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = budgetStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m BudgetModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.budgets) == 0 {
		content = "No budgets yet. Press a to add one."
	}

	switch m.state {
	case budgetStateAdd:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render("New Budget\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	case budgetStateConfirmDelete:
		if b := m.selected(); b != nil {
			content += "\n" + errorStyle.Render(fmt.Sprintf("Delete %s budget for %s? (y/n)", b.Category, b.Month))
		}
	case budgetStateConfirmReset:
		content += "\n" + errorStyle.Render(fmt.Sprintf("Delete all %d budgets? (y/n)", len(m.budgets)))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.budgets))

	for _, b := range m.budgets {
		actual := m.actual[b.Category]

		status := "OK"
		if actual > b.Amount {
			status = "Over by " + FormatAmount(actual-b.Amount)
		}

		rows = append(rows, table.Row{
			b.Month,
			b.Category,
			FormatAmount(b.Amount),
			FormatAmount(actual),
			status,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBudgetsMsg struct {
	budgets []*budget.Budget
	actual  map[string]float64
	err     error
}

func (m BudgetModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		budgets, err := m.budgetService.List(ctx)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		s, err := m.reportService.Summary(ctx, transaction.ListFilter{}, 0)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		return loadBudgetsMsg{budgets: budgets, actual: report.Totals(s.Categories)}
	}
}

type budgetChangedMsg struct {
	status string
	err    error
}

func (m BudgetModel) createCmd() tea.Cmd {
	category := m.form.GetString("category")
	month := strings.TrimSpace(m.form.GetString("month"))

	amount, err := strconv.ParseFloat(strings.TrimSpace(m.form.GetString("amount")), 64)
	if err != nil {
		return func() tea.Msg { return budgetChangedMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.budgetService.Create(ctx, budget.CreateParams{
			Category: category,
			Amount:   amount,
			Month:    month,
		})

		return budgetChangedMsg{status: fmt.Sprintf("Added %s budget.", category), err: err}
	}
}

func (m BudgetModel) deleteCmd() tea.Cmd {
	b := m.selected()
	if b == nil {
		return nil
	}

	id := b.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetChangedMsg{status: "Deleted.", err: m.budgetService.Delete(ctx, id)}
	}
}

func (m BudgetModel) resetCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.budgetService.Reset(ctx)

		return budgetChangedMsg{status: fmt.Sprintf("Deleted %d budgets.", n), err: err}
	}
}
