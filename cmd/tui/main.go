package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finviz/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finviz/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finviz/internal/budget/store"
	"github.com/MrJamesThe3rd/finviz/internal/config"
	"github.com/MrJamesThe3rd/finviz/internal/database"
	"github.com/MrJamesThe3rd/finviz/internal/export"
	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finviz/internal/matching/store"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finviz/internal/transaction/store"
)

type services struct {
	tx       *transaction.Service
	budget   *budget.Service
	matching *matching.Service
	importer *importer.Service
	report   *report.Service
	export   *export.Service
}

type model struct {
	svc         services
	recent      int
	currentView View
	active      view.View
}

type View int

const (
	ViewMenu View = iota
	ViewDashboard
	ViewList
	ViewEntry
	ViewBudgets
	ViewImport
	ViewReview
	ViewExport
)

var menu = []struct {
	key   string
	view  View
	title string
}{
	{"1", ViewDashboard, "Dashboard"},
	{"2", ViewList, "Transactions"},
	{"3", ViewEntry, "Add Transaction"},
	{"4", ViewBudgets, "Budgets"},
	{"5", ViewImport, "Import CSV"},
	{"6", ViewReview, "Review Uncategorized"},
	{"7", ViewExport, "Export Report"},
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))
	budgetSvc := budget.NewService(budgetStore.New(db))
	matchSvc := matching.NewService(matchingStore.New(db))

	return model{
		svc: services{
			tx:       txSvc,
			budget:   budgetSvc,
			matching: matchSvc,
			importer: importer.NewService(matchSvc),
			report:   report.NewService(txSvc, budgetSvc),
			export:   export.NewService(txSvc, budgetSvc),
		},
		recent:      cfg.Report.RecentLimit,
		currentView: ViewMenu,
	}
}

// open builds a fresh screen so every visit starts from reloaded data.
func (m model) open(v View) view.View {
	switch v {
	case ViewDashboard:
		return view.NewDashboardModel(m.svc.report, m.recent)
	case ViewList:
		return view.NewListModel(m.svc.tx, m.svc.report)
	case ViewEntry:
		return view.NewEntryModel(m.svc.tx, m.svc.matching)
	case ViewBudgets:
		return view.NewBudgetModel(m.svc.budget, m.svc.report)
	case ViewImport:
		return view.NewImportModel(m.svc.tx, m.svc.importer)
	case ViewReview:
		return view.NewReviewModel(m.svc.tx, m.svc.matching)
	case ViewExport:
		return view.NewExportModel(m.svc.export)
	}

	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			if msg.String() == "q" {
				return m, tea.Quit
			}

			for _, item := range menu {
				if msg.String() == item.key {
					m.currentView = item.view
					m.active = m.open(item.view)

					return m, m.active.Init()
				}
			}

			return m, nil
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		return m.menuView()
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, m.active.View(), help)
}

func (m model) menuView() string {
	s := "Finviz\n\n"

	for _, item := range menu {
		s += item.key + ". " + item.title + "\n"
	}

	return lipgloss.NewStyle().Padding(2).Render(s + "\nq. Quit")
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
