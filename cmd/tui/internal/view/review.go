package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/matching"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

type reviewState int

const (
	reviewStateTimeframe reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks through imported transactions that no rule could
// categorize. Each answer is saved on the transaction and learned as a rule
// for its description.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state           reviewState
	timeframePicker TimeframePicker

	queue      []*transaction.Transaction
	currentTx  *transaction.Transaction
	totalCount int

	categoryInput textinput.Model
	learn         bool

	status  string
	loading bool
}

func NewReviewModel(txSvc *transaction.Service, matchSvc *matching.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Category"
	ti.Width = 30
	ti.ShowSuggestions = true
	ti.SetSuggestions(transaction.DefaultCategories)

	return ReviewModel{
		txService:       txSvc,
		matchingService: matchSvc,
		timeframePicker: NewTimeframePicker(TimeframeAll),
		categoryInput:   ti,
		learn:           true,
	}
}

func (m ReviewModel) Title() string { return "Review Uncategorized" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: save & next | Tab: complete | ctrl+l: toggle rule | ctrl+s: skip | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadCmd(msg.Filter())

	case loadUncategorizedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.status = "Nothing to review."
			return m, nil
		}

		m.nextTx()

		return m, textinput.Blink

	case reviewSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.nextTx()

		return m, textinput.Blink

	case tea.KeyMsg:
		if m.state == reviewStateTimeframe {
			if msg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
				return m, Back
			}

			break
		}

		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "ctrl+l":
			m.learn = !m.learn
			return m, nil
		case "ctrl+s":
			m.nextTx()
			return m, nil
		case "enter":
			category := strings.TrimSpace(m.categoryInput.Value())
			if m.currentTx == nil || category == "" {
				return m, nil
			}

			return m, m.saveCmd(m.currentTx, category, m.learn)
		}
	}

	if m.state == reviewStateTimeframe {
		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)

	return m, cmd
}

func (m *ReviewModel) nextTx() {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.status = "All done!"
		m.categoryInput.Blur()
		m.categoryInput.SetValue("")

		return
	}

	m.currentTx, m.queue = m.queue[0], m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	ctx, cancel := DbCtx()
	defer cancel()

	suggestion, _ := m.matchingService.Suggest(ctx, m.currentTx.Description)

	m.categoryInput.SetValue(suggestion)
	m.categoryInput.CursorEnd()
	m.categoryInput.Focus()
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.state == reviewStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return style.Render("Loading transactions...")
	}

	if m.currentTx == nil {
		return style.Render(m.status + "\n\n(Esc to go back)")
	}

	learn := "[ ]"
	if m.learn {
		learn = "[x]"
	}

	info := fmt.Sprintf(
		"Date:        %s\nAmount:      %s\nDescription: %s\n",
		FormatDate(m.currentTx.Date),
		FormatAmount(m.currentTx.Amount),
		m.currentTx.Description,
	)

	return style.Render(fmt.Sprintf(
		"%s\n\n%s\nCategory:\n%s\n\n%s Remember for this description",
		m.status, info, m.categoryInput.View(), learn,
	))
}

type loadUncategorizedMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ReviewModel) loadCmd(filter transaction.ListFilter) tea.Cmd {
	filter.Category = new(importer.FallbackCategory)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadUncategorizedMsg{txs: txs, err: err}
	}
}

type reviewSavedMsg struct {
	err error
}

func (m ReviewModel) saveCmd(tx *transaction.Transaction, category string, learn bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if learn {
			if _, err := m.matchingService.Learn(ctx, tx.Description, category); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		_, err := m.txService.Update(ctx, tx.ID, transaction.UpdateParams{Category: &category})

		return reviewSavedMsg{err: err}
	}
}
