package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dailyhill/internal/ingest"
)

type ingestMode int

const (
	ingestModeSelectAction ingestMode = iota
	ingestModeInput
	ingestModeProcessing
	ingestModeComplete
)

type ingestAction int

const (
	ingestActionFile ingestAction = iota
	ingestActionRecategorize
)

var ingestActionLabels = []string{
	"Ingest a Daily Hill export",
	"Recategorize stored rows",
}

type Ingest struct {
	ingester *ingest.Ingester
	width    int
	height   int

	mode         ingestMode
	actionCursor int
	action       ingestAction
	input        textinput.Model
	result       *ingest.IngestResult
	recat        *ingest.RecategorizeResult
	err          error
}

func NewIngest(ingester *ingest.Ingester) *Ingest {
	ti := textinput.New()
	ti.Placeholder = "/path/to/daily_hill.csv"
	ti.CharLimit = 512
	ti.Width = 60

	return &Ingest{
		ingester: ingester,
		input:    ti,
	}
}

func (p *Ingest) SetSize(width, height int) {
	p.width = width
	p.height = height
}

type ingestCompleteMsg struct {
	result *ingest.IngestResult
	recat  *ingest.RecategorizeResult
	err    error
}

func (p *Ingest) Init() tea.Cmd {
	p.mode = ingestModeSelectAction
	p.err = nil
	p.result = nil
	p.recat = nil
	return nil
}

func (p *Ingest) runIngest(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := p.ingester.IngestFile(context.Background(), path)
		return ingestCompleteMsg{result: res, err: err}
	}
}

func (p *Ingest) runRecategorize() tea.Msg {
	res, err := p.ingester.Recategorize(context.Background())
	return ingestCompleteMsg{recat: res, err: err}
}

func (p *Ingest) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ingestCompleteMsg:
		p.err = msg.err
		p.result = msg.result
		p.recat = msg.recat
		p.mode = ingestModeComplete
		return nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.mode == ingestModeInput {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	return nil
}

func (p *Ingest) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch p.mode {
	case ingestModeSelectAction:
		return p.handleActionKey(msg)
	case ingestModeInput:
		return p.handleInputKey(msg)
	case ingestModeComplete:
		return p.handleCompleteKey(msg)
	}
	return nil
}

func (p *Ingest) handleActionKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if p.actionCursor > 0 {
			p.actionCursor--
		}
	case "down", "j":
		if p.actionCursor < len(ingestActionLabels)-1 {
			p.actionCursor++
		}
	case "enter":
		p.action = ingestAction(p.actionCursor)
		if p.action == ingestActionRecategorize {
			p.mode = ingestModeProcessing
			return p.runRecategorize
		}
		p.mode = ingestModeInput
		p.input.SetValue("")
		return p.input.Focus()
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (p *Ingest) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(p.input.Value())
		if path == "" {
			return nil
		}
		p.input.Blur()
		p.mode = ingestModeProcessing
		return p.runIngest(path)

	case "esc":
		p.input.Blur()
		p.mode = ingestModeSelectAction
		return nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *Ingest) handleCompleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if p.err != nil {
			return p.Init()
		}
		return Navigate("dashboard")
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (p *Ingest) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("INGEST"))
	b.WriteString("\n\n")

	switch p.mode {
	case ingestModeSelectAction:
		return p.viewSelectAction(&b)
	case ingestModeInput:
		b.WriteString("Export file:\n")
		b.WriteString(p.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Ingest  [esc] Cancel"))
	case ingestModeProcessing:
		b.WriteString("Working...\n")
	case ingestModeComplete:
		return p.viewComplete(&b)
	}

	return b.String()
}

func (p *Ingest) viewSelectAction(b *strings.Builder) string {
	for i, label := range ingestActionLabels {
		cursor := "  "
		style := NormalStyle
		if i == p.actionCursor {
			cursor = "> "
			style = SelectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s", cursor, label)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[enter] Select  [q] Back"))
	return b.String()
}

func (p *Ingest) viewComplete(b *strings.Builder) string {
	if p.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", p.err)))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Try again  [q] Back"))
		return b.String()
	}

	b.WriteString(SuccessStyle.Render("Done!"))
	b.WriteString("\n\n")

	if r := p.result; r != nil {
		b.WriteString(fmt.Sprintf("File: %s\n", DimStyle.Render(r.Path)))
		b.WriteString(fmt.Sprintf("Rows read: %d\n", r.RowsRead))
		b.WriteString(fmt.Sprintf("Inserted: %s\n", SuccessStyle.Render(fmt.Sprintf("%d", r.Inserted))))
		b.WriteString(fmt.Sprintf("Already present: %d\n", r.Skipped))
		b.WriteString(fmt.Sprintf("Total stored: %d\n\n", r.Total))
	}
	if r := p.recat; r != nil {
		b.WriteString(fmt.Sprintf("Scanned %d rows, updated %d\n\n", r.Scanned, r.Updated))
	}

	b.WriteString(HelpStyle.Render("[enter] Done"))
	return b.String()
}
