package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/report"
)

type dashboardState int

const (
	dashboardStateTimeframe dashboardState = iota
	dashboardStateLoading
	dashboardStateReady
)

// DashboardModel shows the spending summary for a chosen timeframe.
type DashboardModel struct {
	CommonModel
	reportService *report.Service
	recent        int

	state           dashboardState
	timeframePicker TimeframePicker
	selection       TimeframeSelectedMsg

	summary *report.Summary
	err     error
}

func NewDashboardModel(svc *report.Service, recent int) DashboardModel {
	return DashboardModel{
		reportService:   svc,
		recent:          recent,
		timeframePicker: NewTimeframePicker(TimeframeAll),
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashboardStateReady {
		return "Esc: back | t: timeframe | r: refresh"
	}

	return "Esc: back | Enter: select"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.state = dashboardStateLoading

		return m, m.loadCmd()

	case summaryMsg:
		m.state = dashboardStateReady
		m.summary, m.err = msg.summary, msg.err

		return m, nil

	case tea.KeyMsg:
		if m.state == dashboardStateReady {
			switch msg.String() {
			case "esc":
				return m, Back
			case "t":
				m.timeframePicker.Reset()
				m.state = dashboardStateTimeframe

				return m, nil
			case "r":
				m.state = dashboardStateLoading
				return m, m.loadCmd()
			}

			return m, nil
		}

		if m.state == dashboardStateTimeframe && msg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	if m.state != dashboardStateTimeframe {
		return m, nil
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case dashboardStateTimeframe:
		return style.Render(m.timeframePicker.View())
	case dashboardStateLoading:
		return style.Render("Loading summary...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.totalsView(),
		"",
		m.categoriesView(),
		"",
		m.monthsView(),
	)

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.recentView(),
		"",
		m.insightsView(),
	)

	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(44).Render(left),
		right,
	))
}

func (m DashboardModel) totalsView() string {
	s := m.summary

	out := fmt.Sprintf("%s\n%s  (%d transactions, %s)",
		headingStyle.Render("Total Expenses"),
		activeStyle(FormatAmount(s.Total)),
		s.Count,
		m.selection.Label(),
	)

	if len(s.Malformed) > 0 {
		out += "\n" + errorStyle.Render(fmt.Sprintf("%d malformed records skipped", len(s.Malformed)))
	}

	return out
}

func (m DashboardModel) categoriesView() string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render("By Category") + "\n")

	if len(m.summary.Categories) == 0 {
		sb.WriteString("No transactions.")
	}

	for _, c := range m.summary.Categories {
		fmt.Fprintf(&sb, "%-20s %12s\n", c.Category, FormatAmount(c.Amount))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m DashboardModel) monthsView() string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render("By Month") + "\n")

	for _, mt := range m.summary.Months {
		fmt.Fprintf(&sb, "%-20s %12s\n", mt.Label, FormatAmount(mt.Amount))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m DashboardModel) recentView() string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render("Most Recent") + "\n")

	for _, tx := range m.summary.Recent {
		fmt.Fprintf(&sb, "%s  %10s  %-14s %s\n",
			FormatDate(tx.Date), FormatAmount(tx.Amount), tx.Category, tx.Description)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m DashboardModel) insightsView() string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render("Spending Insights") + "\n")

	if len(m.summary.Overspending) == 0 {
		return sb.String() + successStyle.Render("All categories within budget.")
	}

	for _, o := range m.summary.Overspending {
		sb.WriteString(errorStyle.Render(o.Insight()) + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

type summaryMsg struct {
	summary *report.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	filter := m.selection.Filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.reportService.Summary(ctx, filter, m.recent)

		return summaryMsg{summary: s, err: err}
	}
}
