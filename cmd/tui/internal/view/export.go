package view

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finviz/internal/export"
)

const (
	exportTimeout    = 2 * time.Minute
	defaultExportDir = "./exports"
)

type exportStep int

const (
	exportStepTimeframe exportStep = iota
	exportStepDirectory
	exportStepRunning
	exportStepDone
)

// ExportModel writes a report bundle for a chosen timeframe to disk.
type ExportModel struct {
	CommonModel
	exportService *export.Service

	step      exportStep
	timeframe TimeframePicker
	selection TimeframeSelectedMsg
	form      *huh.Form
	dir       string
	spinner   spinner.Model

	bundle *export.Bundle
	err    error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService: svc,
		timeframe:     NewTimeframePicker(TimeframeThisMonth),
		dir:           defaultExportDir,
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Report" }

func (m ExportModel) ShortHelp() string {
	switch m.step {
	case exportStepRunning:
		return "Exporting..."
	case exportStepDone:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.step = exportStepDirectory
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Key("dir").
					Title("Output directory").
					Description("Created when missing. Existing report files are overwritten.").
					Placeholder(defaultExportDir).
					Value(&m.dir),
			),
		).WithWidth(60).WithShowHelp(false)

		return m, m.form.Init()

	case exportDoneMsg:
		m.step = exportStepDone
		m.bundle, m.err = msg.bundle, msg.err

		return m, nil

	case spinner.TickMsg:
		if m.step != exportStepRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.step {
	case exportStepTimeframe:
		if isKey && keyMsg.Type == tea.KeyEsc && m.timeframe.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframe, cmd = m.timeframe.Update(msg)

		return m, cmd

	case exportStepDirectory:
		if isKey && keyMsg.Type == tea.KeyEsc {
			m.step = exportStepTimeframe
			m.timeframe.Reset()

			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.step = exportStepRunning

		return m, tea.Batch(m.spinner.Tick, m.exportCmd(m.form.GetString("dir")))

	case exportStepDone:
		if isKey && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case exportStepTimeframe:
		return style.Render(m.timeframe.View())
	case exportStepDirectory:
		return style.Render(fmt.Sprintf("Exporting %s\n\n%s", m.selection.Label(), m.form.View()))
	case exportStepRunning:
		return style.Render(m.spinner.View() + " Writing transactions, summary and charts...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	files := make([]string, 0, len(m.bundle.Files))
	for _, f := range m.bundle.Files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}

		files = append(files, "  "+f)
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Bold(true).Render("Export complete"),
		"",
		strings.Join(files, "\n"),
		"",
		export.SummaryText(m.bundle.Summary),
	))
}

type exportDoneMsg struct {
	bundle *export.Bundle
	err    error
}

func (m ExportModel) exportCmd(dir string) tea.Cmd {
	filter := m.selection.Filter()

	if strings.TrimSpace(dir) == "" {
		dir = defaultExportDir
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		bundle, err := m.exportService.Export(ctx, filter, dir)

		return exportDoneMsg{bundle: bundle, err: err}
	}
}
