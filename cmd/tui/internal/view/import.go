package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStatePick importState = iota
	importStatePreview
	importStateSaving
	importStateConflicts
	importStateDone
)

// ImportModel reads a CSV statement, previews what it holds and stores it.
// Rows that already exist are listed so the user can pick which to keep.
type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	file       string

	parsed    []transaction.CreateParams
	fresh     []transaction.CreateParams
	conflicts []transaction.Conflict
	keep      map[int]bool
	picker    list.Model

	stored int
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		filePicker:    fp,
		keep:          make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Enter: import | Esc: pick another file"
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	case importStateDone:
		return "Esc: import another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) restart() (ImportModel, tea.Cmd) {
	m.state = importStatePick
	m.parsed, m.fresh, m.conflicts = nil, nil, nil
	m.keep = make(map[int]bool)
	m.stored = 0
	m.err = nil

	return m, m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case parsedMsg:
		m.state = importStatePreview
		m.parsed, m.err = msg.params, msg.err

		return m, nil

	case batchMsg:
		m.err = msg.err
		if msg.err != nil || len(msg.result.Conflicts) == 0 {
			m.state = importStateDone
			if msg.result != nil {
				m.stored = len(msg.result.Imported)
			}

			return m, nil
		}

		m.state = importStateConflicts
		m.fresh = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.keep = make(map[int]bool)
		m.picker = newConflictList(m.conflicts, m.keep)

		return m, nil

	case storedMsg:
		m.state = importStateDone
		m.stored, m.err = msg.count, msg.err

		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.state != importStatePick {
		return m, nil
	}

	return m.updatePicker(msg)
}

func (m ImportModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePick:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		return m.updatePicker(msg)

	case importStatePreview:
		switch msg.Type {
		case tea.KeyEsc:
			return m.restart()
		case tea.KeyEnter:
			if m.err != nil || len(m.parsed) == 0 {
				return m, nil
			}

			m.state = importStateSaving

			return m, m.batchCmd(m.parsed)
		}

	case importStateConflicts:
		switch msg.String() {
		case "esc":
			return m.restart()
		case " ":
			idx := m.picker.Index()
			m.keep[idx] = !m.keep[idx]
		case "a", "n":
			for i := range m.conflicts {
				m.keep[i] = msg.String() == "a"
			}
		case "enter":
			m.state = importStateSaving
			return m, m.storeCmd()
		default:
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)

			return m, cmd
		}

	case importStateDone:
		if msg.Type == tea.KeyEsc {
			return m.restart()
		}
	}

	return m, nil
}

func (m ImportModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.file = path
		m.state = importStateSaving

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case importStatePick:
		return style.Render("Select a CSV statement to import:\n\n" + m.filePicker.View())
	case importStatePreview:
		return style.Render(m.previewView())
	case importStateSaving:
		return style.Render("Working on " + filepath.Base(m.file) + "...")
	case importStateConflicts:
		return style.Render(m.picker.View())
	case importStateDone:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		msg := fmt.Sprintf("Imported %d transactions.", m.stored)
		if n := countUncategorized(m.parsed); n > 0 {
			msg += fmt.Sprintf("\n%d need a category: see Review Uncategorized.", n)
		}

		return style.Render(successStyle.Render(msg))
	}

	return ""
}

func (m ImportModel) previewView() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not read %s: %v", filepath.Base(m.file), m.err))
	}

	if len(m.parsed) == 0 {
		return "No transactions found in " + filepath.Base(m.file) + "."
	}

	txs := make([]*transaction.Transaction, 0, len(m.parsed))
	for _, p := range m.parsed {
		txs = append(txs, &transaction.Transaction{
			Amount:      p.Amount,
			Date:        p.Date,
			Description: p.Description,
			Category:    p.Category,
		})
	}

	total, _ := report.TotalExpenses(txs)
	breakdown, _ := report.CategoryBreakdown(txs)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n%d rows, total %s\n\n",
		headingStyle.Render(filepath.Base(m.file)), len(m.parsed), FormatAmount(total))

	for _, c := range breakdown {
		fmt.Fprintf(&sb, "%-20s %12s\n", c.Category, FormatAmount(c.Amount))
	}

	return sb.String()
}

func countUncategorized(params []transaction.CreateParams) int {
	n := 0

	for _, p := range params {
		if p.Category == importer.FallbackCategory {
			n++
		}
	}

	return n
}

// Messages

type parsedMsg struct {
	params []transaction.CreateParams
	err    error
}

type batchMsg struct {
	result *transaction.ImportResult
	err    error
}

type storedMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := m.importService.Import(ctx, f)

		return parsedMsg{params: params, err: err}
	}
}

func (m ImportModel) batchCmd(params []transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.txService.ImportBatch(ctx, params)

		return batchMsg{result: result, err: err}
	}
}

func (m ImportModel) storeCmd() tea.Cmd {
	params := append([]transaction.CreateParams(nil), m.fresh...)

	for i, c := range m.conflicts {
		if m.keep[i] {
			params = append(params, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, params)

		return storedMsg{count: len(txs), err: err}
	}
}

// Conflict list

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) Title() string       { return i.conflict.Incoming.Description }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Description }

func newConflictList(conflicts []transaction.Conflict, keep map[int]bool) list.Model {
	items := make([]list.Item, len(conflicts))
	for i, c := range conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	l := list.New(items, conflictDelegate{keep: keep}, 80, 20)
	l.Title = "Possible duplicates: select the rows to import anyway"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// conflictDelegate shares the keep map with the model, so toggles show up
// without rebuilding the list.
type conflictDelegate struct {
	keep map[int]bool
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.keep[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = activeStyle("> ")
	}

	in, ex := item.conflict.Incoming, item.conflict.Existing

	fmt.Fprintf(w, "%s%s %s  %10s  %s [%s]\n", cursor, checkbox,
		FormatDate(in.Date), FormatAmount(in.Amount), in.Description, in.Category)
	fmt.Fprintf(w, "      stored: %s  %10s  %s [%s]", FormatDate(ex.Date), FormatAmount(ex.Amount), ex.Description, ex.Category)
}
