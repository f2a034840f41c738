package screens

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dailyhill/internal/config"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/report"
	"github.com/emilianohg/dailyhill/internal/repository"
)

type Summary struct {
	db     *sql.DB
	cfg    *config.Config
	width  int
	height int

	filter  repository.SummaryFilter
	options *repository.FilterOptions
	rows    []models.SummaryRow
	seq     int
	pivot   bool
	cursor  int
	loading bool
	err     error
	message string
}

func NewSummary(db *sql.DB, cfg *config.Config) *Summary {
	return &Summary{
		db:  db,
		cfg: cfg,
	}
}

func (s *Summary) SetSize(width, height int) {
	s.width = width
	s.height = height
}

type summaryDataMsg struct {
	seq     int
	rows    []models.SummaryRow
	options *repository.FilterOptions
	err     error
}

func (s *Summary) Init() tea.Cmd {
	s.message = ""
	return s.reload()
}

func (s *Summary) reload() tea.Cmd {
	s.loading = true
	s.seq++
	return loadSummary(s.db, s.seq, s.filter)
}

func loadSummary(db *sql.DB, seq int, filter repository.SummaryFilter) tea.Cmd {
	return func() tea.Msg {
		repo := repository.NewBookingRepo(db)

		options, err := repo.FilterOptions()
		if err != nil {
			return summaryDataMsg{seq: seq, err: err}
		}

		rows, err := repo.Summary(filter)
		if err != nil {
			return summaryDataMsg{seq: seq, err: err}
		}

		return summaryDataMsg{seq: seq, rows: rows, options: options}
	}
}

func (s *Summary) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case summaryDataMsg:
		if msg.seq != s.seq {
			return nil
		}
		s.loading = false
		s.err = msg.err
		s.rows = msg.rows
		s.options = msg.options
		if s.cursor >= s.rowCount() {
			s.cursor = max(0, s.rowCount()-1)
		}
		return nil

	case exportDoneMsg:
		if msg.err != nil {
			s.err = msg.err
		} else {
			s.message = fmt.Sprintf("Exported to %s", msg.path)
		}
		return nil

	case RefreshMsg:
		return s.Init()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return nil
}

func (s *Summary) rowCount() int {
	if s.pivot {
		return len(report.NewPivot(s.rows).Rows)
	}
	return len(s.rows)
}

func (s *Summary) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < s.rowCount()-1 {
			s.cursor++
		}
	case "w":
		s.filter.Week = s.nextWeek()
		return s.reload()
	case "a":
		s.filter.AgeBand = models.AgeBand(cycle(string(s.filter.AgeBand), s.optionList(func(o *repository.FilterOptions) []string { return o.AgeBands })))
		return s.reload()
	case "l":
		s.filter.Level = models.Level(cycle(string(s.filter.Level), s.optionList(func(o *repository.FilterOptions) []string { return o.Levels })))
		return s.reload()
	case "g":
		s.filter.TaskCategory = models.TaskCategory(cycle(string(s.filter.TaskCategory), s.optionList(func(o *repository.FilterOptions) []string { return o.TaskCategories })))
		return s.reload()
	case "t":
		s.filter.TeachingOnly = !s.filter.TeachingOnly
		return s.reload()
	case "p":
		s.pivot = !s.pivot
		s.cursor = 0
	case "x":
		s.filter = repository.SummaryFilter{}
		return s.reload()
	case "enter":
		if name := s.selectedInstructor(); name != "" {
			return NavigateWithInstructor("browse", name)
		}
	case "e":
		return s.export()
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (s *Summary) optionList(get func(*repository.FilterOptions) []string) []string {
	if s.options == nil {
		return nil
	}
	return get(s.options)
}

// cycle steps through "" (all) followed by each option.
func cycle(current string, options []string) string {
	if current == "" {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	}
	for i, o := range options {
		if o == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return ""
}

func (s *Summary) nextWeek() *int {
	if s.options == nil || len(s.options.Weeks) == 0 {
		return nil
	}
	weeks := s.options.Weeks
	if s.filter.Week == nil {
		return &weeks[0]
	}
	for i, w := range weeks {
		if w == *s.filter.Week && i+1 < len(weeks) {
			return &weeks[i+1]
		}
	}
	return nil
}

func (s *Summary) selectedInstructor() string {
	if s.pivot {
		rows := report.NewPivot(s.rows).Rows
		if s.cursor < len(rows) {
			return rows[s.cursor].Instructor
		}
		return ""
	}
	if s.cursor < len(s.rows) {
		return s.rows[s.cursor].Instructor
	}
	return ""
}

func (s *Summary) export() tea.Cmd {
	rows := s.rows
	if s.pivot {
		p := report.NewPivot(rows)
		return exportCSV(s.cfg.ReportsOutput, "pivot", func(w io.Writer) error {
			return report.WritePivot(w, p)
		})
	}
	return exportCSV(s.cfg.ReportsOutput, "summary", func(w io.Writer) error {
		return report.WriteSummary(w, rows)
	})
}

func (s *Summary) filterLine() string {
	label := func(v string) string {
		if v == "" {
			return "All"
		}
		return v
	}
	week := "All"
	if s.filter.Week != nil {
		week = fmt.Sprintf("%d", *s.filter.Week)
	}
	teaching := "no"
	if s.filter.TeachingOnly {
		teaching = "yes"
	}
	return fmt.Sprintf("Week: %s  Age band: %s  Level: %s  Category: %s  Teaching only: %s",
		week,
		label(string(s.filter.AgeBand)),
		label(string(s.filter.Level)),
		label(string(s.filter.TaskCategory)),
		teaching,
	)
}

func (s *Summary) View() string {
	var b strings.Builder

	title := "SUMMARY"
	if s.pivot {
		title = "SUMMARY (instructor x level)"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if s.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", s.err)))
		b.WriteString("\n\n")
		s.err = nil
	}

	if s.message != "" {
		b.WriteString(SuccessStyle.Render(s.message))
		b.WriteString("\n\n")
	}

	b.WriteString(DimStyle.Render(s.filterLine()))
	b.WriteString("\n\n")

	if len(s.rows) == 0 {
		b.WriteString(DimStyle.Render("No rows match these filters."))
		b.WriteString("\n\n")
	} else if s.pivot {
		s.viewPivot(&b)
	} else {
		start, end := listWindow(len(s.rows), s.cursor, s.height-12)
		for i := start; i < end; i++ {
			row := s.rows[i]
			cursor := "  "
			style := NormalStyle
			if i == s.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			b.WriteString(style.Render(fmt.Sprintf("%s%-20s %-7s %-14s %6s",
				cursor, row.Instructor, row.AgeBand, row.Level, report.FormatCount(row.Count))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[w] Week  [a] Age band  [l] Level  [g] Category  [t] Teaching only  [x] Clear  [p] Pivot  [e] Export  [enter] Rows  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (s *Summary) viewPivot(b *strings.Builder) {
	p := report.NewPivot(s.rows)

	header := fmt.Sprintf("  %-20s", "Instructor")
	for _, l := range p.Levels {
		header += fmt.Sprintf(" %6.6s", l)
	}
	b.WriteString(DimStyle.Render(header))
	b.WriteString("\n")

	start, end := listWindow(len(p.Rows), s.cursor, s.height-13)
	for i := start; i < end; i++ {
		row := p.Rows[i]
		cursor := "  "
		style := NormalStyle
		if i == s.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		line := fmt.Sprintf("%s%-20s", cursor, row.Instructor)
		for _, c := range row.Counts {
			line += fmt.Sprintf(" %6s", report.FormatCount(c))
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
