package view

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/matching"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

func validateDate(s string) error {
	if _, err := transaction.ParseDate(strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD or DD/MM/YYYY")
	}

	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("description cannot be empty")
	}

	return nil
}

func validateAmount(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("amount must be a number")
	}

	if v <= 0 {
		return errors.New("amount must be positive")
	}

	return nil
}

// categoryOptions lists the default categories plus current when it is not
// one of them, so editing never silently changes a custom category.
func categoryOptions(current string) []huh.Option[string] {
	categories := slices.Clone(transaction.DefaultCategories)
	if current != "" && !slices.Contains(categories, current) {
		categories = append(categories, current)
	}

	return huh.NewOptions(categories...)
}

func formParams(date, desc, category, amount string) (transaction.CreateParams, error) {
	d, err := transaction.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return transaction.CreateParams{}, err
	}

	a, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("parsing amount: %w", err)
	}

	return transaction.CreateParams{
		Amount:      a,
		Date:        d,
		Description: strings.TrimSpace(desc),
		Category:    category,
	}, nil
}

// paramsFromForm reads the bound fields back through the form, since the
// model holding the bindings may be a stale copy.
func paramsFromForm(f *huh.Form) (transaction.CreateParams, error) {
	return formParams(
		f.GetString("date"),
		f.GetString("description"),
		f.GetString("category"),
		f.GetString("amount"),
	)
}

// EntryModel records a single expense.
type EntryModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	form   *huh.Form
	status string
	err    error
	saved  bool

	formDate     string
	formDesc     string
	formCategory string
	formAmount   string
}

func NewEntryModel(txSvc *transaction.Service, matchSvc *matching.Service) EntryModel {
	m := EntryModel{
		txService:       txSvc,
		matchingService: matchSvc,
	}
	m.reset()

	return m
}

func (m *EntryModel) reset() {
	m.formDate = FormatDate(time.Now())
	m.formDesc = ""
	m.formCategory = transaction.DefaultCategories[0]
	m.formAmount = ""
	m.saved = false

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
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return m.suggestedOptions()
				}, &m.formDesc).
				Value(&m.formCategory),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&m.formAmount).
				Validate(validateAmount),
		),
	).WithWidth(50).WithShowHelp(false)
}

// suggestedOptions moves the category suggested for the description to the
// top of the list.
func (m *EntryModel) suggestedOptions() []huh.Option[string] {
	ctx, cancel := DbCtx()
	defer cancel()

	suggestion, _ := m.matchingService.Suggest(ctx, m.formDesc)
	if suggestion == "" {
		return categoryOptions("")
	}

	m.formCategory = suggestion

	categories := []string{suggestion}
	for _, c := range transaction.DefaultCategories {
		if c != suggestion {
			categories = append(categories, c)
		}
	}

	return huh.NewOptions(categories...)
}

func (m EntryModel) Title() string { return "Add Transaction" }

func (m EntryModel) ShortHelp() string {
	if m.saved {
		return "Enter: add another | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m EntryModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entrySavedMsg:
		m.saved = true
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Added %s %s (%s).",
				FormatAmount(msg.tx.Amount), msg.tx.Description, msg.tx.Category)
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.saved {
			if msg.Type == tea.KeyEnter {
				m.reset()
				m.err = nil
				m.status = ""

				return m, m.form.Init()
			}

			return m, nil
		}
	}

	if m.saved {
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

func (m EntryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if !m.saved {
		return style.Render("New Transaction\n\n" + m.form.View())
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Enter to retry, Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Enter to add another, Esc to go back)")
}

type entrySavedMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m EntryModel) createCmd() tea.Cmd {
	params, err := paramsFromForm(m.form)
	if err != nil {
		return func() tea.Msg { return entrySavedMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Create(ctx, params)

		return entrySavedMsg{tx: tx, err: err}
	}
}
