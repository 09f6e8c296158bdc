package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateConfirmDelete
)

type ListModel struct {
	CommonModel
	txService     *transaction.Service
	reportService *report.Service

	state listState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form

	categoryFilterIdx int
	dateFilterIdx     int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string

	// Monthly breakdown of the category under the cursor, toggled with m.
	breakdownCategory string
	breakdown         []report.MonthTotal

	formDesc     string
	formCategory string
	formAmount   string
	formDate     string
}

func NewListModel(txSvc *transaction.Service, reportSvc *report.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Category", Width: 16},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return ListModel{
		txService:     txSvc,
		reportService: reportSvc,
		table:         t,
		loading:       true,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "y: delete | n: keep"
	}

	return "Esc: back | e: edit | x: delete | m: monthly | c: category | d: date | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.breakdown = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case breakdownMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.breakdownCategory = msg.category
		m.breakdown = msg.months

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	case listStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			if m.selected() != nil {
				m.state = listStateConfirmDelete
			}

			return m, nil
		case "m":
			if m.breakdown != nil {
				m.breakdown = nil
				return m, nil
			}

			if tx := m.selected(); tx != nil {
				return m, m.breakdownCmd(tx.Category)
			}

			return m, nil
		case "c":
			m.categoryFilterIdx = (m.categoryFilterIdx + 1) % (len(transaction.DefaultCategories) + 1)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter()

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.deleteCmd()
	case "n", "esc":
		m.state = listStateBrowse
	}

	return m, nil
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formDesc = tx.Description
	m.formCategory = tx.Category
	m.formAmount = strconv.FormatFloat(tx.Amount, 'f', 2, 64)
	m.formDate = FormatDate(tx.Date)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("date").
				Title("Date").
				Value(&m.formDate).
				Validate(validateDate),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc).
				Validate(validateDescription),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions(tx.Category)...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(validateAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	categoryLabel := "All"
	if m.categoryFilterIdx > 0 {
		categoryLabel = transaction.DefaultCategories[m.categoryFilterIdx-1]
	}

	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [c] Category: %s | [d] Date: %s",
		activeStyle(categoryLabel),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if panel := m.panelView(); panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.state == listStateConfirmDelete {
		if tx := m.selected(); tx != nil {
			content += "\n" + errorStyle.Render(fmt.Sprintf(
				"Delete %s %s %q? (y/n)", FormatDate(tx.Date), FormatAmount(tx.Amount), tx.Description))
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ListModel) panelView() string {
	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(48)

	if m.state == listStateEdit && m.form != nil {
		return panel.Render("Edit Transaction\n\n" + m.form.View())
	}

	if m.breakdown == nil {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Monthly Breakdown: %s\n\n", m.breakdownCategory)

	if len(m.breakdown) == 0 {
		sb.WriteString("No spending recorded.")
	}

	for _, mt := range m.breakdown {
		fmt.Fprintf(&sb, "%-18s %12s\n", mt.Label, FormatAmount(mt.Amount))
	}

	return panel.Render(sb.String())
}

func (m *ListModel) applyFilter() {
	m.filter.Category = nil
	if m.categoryFilterIdx > 0 {
		m.filter.Category = new(transaction.DefaultCategories[m.categoryFilterIdx-1])
	}

	now := time.Now()

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		m.filter.StartDate = new(s)
		m.filter.EndDate = new(s.AddDate(0, 1, 0).Add(-time.Nanosecond))
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		m.filter.StartDate = new(s)
		m.filter.EndDate = new(s.AddDate(0, 1, 0).Add(-time.Nanosecond))
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			tx.Category,
			FormatAmount(tx.Amount),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	params, err := paramsFromForm(m.form)
	if err != nil {
		return func() tea.Msg { return listSaveMsg{err: err} }
	}

	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.Update(ctx, id, transaction.UpdateParams{
			Amount:      &params.Amount,
			Date:        &params.Date,
			Description: &params.Description,
			Category:    &params.Category,
		})

		return listSaveMsg{status: "Saved.", err: err}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listSaveMsg{status: "Deleted.", err: m.txService.Delete(ctx, id)}
	}
}

type breakdownMsg struct {
	category string
	months   []report.MonthTotal
	err      error
}

func (m ListModel) breakdownCmd(category string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		months, err := m.reportService.MonthlyBreakdown(ctx, category)

		return breakdownMsg{category: category, months: months, err: err}
	}
}
