package screens

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dailyhill/internal/config"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/report"
	"github.com/emilianohg/dailyhill/internal/repository"
)

const dateInputLayout = "2006-01-02"

type streaksMode int

const (
	streaksModeList streaksMode = iota
	streaksModeDetails
	streaksModeWindow
)

type Streaks struct {
	db     *sql.DB
	cfg    *config.Config
	width  int
	height int

	opts    report.StreakOptions
	report  *report.StreakReport
	seq     int
	cursor  int
	mode    streaksMode
	input   textinput.Model
	loading bool
	err     error
	message string
}

func NewStreaks(db *sql.DB, cfg *config.Config) *Streaks {
	ti := textinput.New()
	ti.Placeholder = "2025-06-01..2025-06-30"
	ti.CharLimit = 22
	ti.Width = 30

	return &Streaks{
		db:    db,
		cfg:   cfg,
		input: ti,
		opts: report.StreakOptions{
			MinLen:  cfg.MinStreak,
			Workers: cfg.WorkerCount(),
		},
	}
}

func (s *Streaks) SetSize(width, height int) {
	s.width = width
	s.height = height
}

type streaksDataMsg struct {
	seq    int
	opts   report.StreakOptions
	report *report.StreakReport
	err    error
}

func (s *Streaks) Init() tea.Cmd {
	s.mode = streaksModeList
	s.message = ""
	return s.reload()
}

// reload snapshots the options so a reply built from older settings can be
// told apart and dropped.
func (s *Streaks) reload() tea.Cmd {
	s.loading = true
	s.seq++
	return loadStreaks(s.db, s.seq, s.opts)
}

func loadStreaks(db *sql.DB, seq int, opts report.StreakOptions) tea.Cmd {
	return func() tea.Msg {
		bookings := repository.NewBookingRepo(db)

		if opts.From.IsZero() || opts.To.IsZero() {
			from, to, err := report.DefaultWindow(bookings)
			if err != nil {
				return streaksDataMsg{seq: seq, err: err}
			}
			opts.From, opts.To = from, to
		}

		r, err := report.BuildStreaks(context.Background(), bookings, opts)
		return streaksDataMsg{seq: seq, opts: opts, report: r, err: err}
	}
}

func (s *Streaks) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case streaksDataMsg:
		if msg.seq != s.seq {
			return nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.opts = msg.opts
			s.report = msg.report
			if s.cursor >= len(s.report.Risks) {
				s.cursor = max(0, len(s.report.Risks)-1)
			}
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

	if s.mode == streaksModeWindow {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}

	return nil
}

func (s *Streaks) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch s.mode {
	case streaksModeList:
		return s.handleListKey(msg)
	case streaksModeDetails:
		switch msg.String() {
		case "e":
			return s.exportDetails()
		case "enter", "esc", "q":
			s.mode = streaksModeList
		}
		return nil
	case streaksModeWindow:
		return s.handleWindowKey(msg)
	}
	return nil
}

func (s *Streaks) risks() []models.Risk {
	if s.report == nil {
		return nil
	}
	return s.report.Risks
}

func (s *Streaks) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.risks())-1 {
			s.cursor++
		}
	case "+", "=":
		s.opts.MinLen++
		return s.reload()
	case "-":
		if s.opts.MinLen > 1 {
			s.opts.MinLen--
			return s.reload()
		}
	case "c":
		s.opts.CurrentOnly = !s.opts.CurrentOnly
		return s.reload()
	case "w":
		s.mode = streaksModeWindow
		s.input.SetValue(fmt.Sprintf("%s..%s", s.opts.From.Format(dateInputLayout), s.opts.To.Format(dateInputLayout)))
		return s.input.Focus()
	case "enter":
		if len(s.risks()) > 0 {
			s.mode = streaksModeDetails
		}
	case "i":
		if len(s.risks()) > 0 {
			return NavigateWithInstructor("browse", s.risks()[s.cursor].Instructor)
		}
	case "e":
		return s.exportRisks()
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (s *Streaks) handleWindowKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		from, to, err := parseWindow(s.input.Value())
		if err != nil {
			s.err = err
			return nil
		}
		s.opts.From, s.opts.To = from, to
		s.input.Blur()
		s.mode = streaksModeList
		return s.reload()

	case "esc":
		s.input.Blur()
		s.mode = streaksModeList
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// parseWindow reads "FROM..TO" with both dates as YYYY-MM-DD.
func parseWindow(v string) (time.Time, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(v), "..", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected FROM..TO, got %q", v)
	}
	from, err := time.Parse(dateInputLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := time.Parse(dateInputLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, report.ErrInvalidRange
	}
	return from, to, nil
}

func (s *Streaks) exportRisks() tea.Cmd {
	risks := s.risks()
	return exportCSV(s.cfg.ReportsOutput, "streaks", func(w io.Writer) error {
		return report.WriteRisks(w, risks)
	})
}

// exportDetails writes the dominant days of the streak being viewed.
func (s *Streaks) exportDetails() tea.Cmd {
	if s.report == nil || s.cursor >= len(s.report.Risks) {
		return nil
	}
	days := s.report.Details(s.report.Risks[s.cursor])
	return exportCSV(s.cfg.ReportsOutput, "streak_days", func(w io.Writer) error {
		return report.WriteDays(w, days)
	})
}

func (s *Streaks) View() string {
	var b strings.Builder

	title := "STREAK FLAGS"
	if s.opts.CurrentOnly {
		title = "STREAK FLAGS (current only)"
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

	if s.mode == streaksModeWindow {
		b.WriteString("Date window (FROM..TO):\n")
		b.WriteString(s.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Apply  [esc] Cancel"))
		return b.String()
	}

	if s.report == nil {
		b.WriteString(HelpStyle.Render("[q] Back"))
		return b.String()
	}

	if s.mode == streaksModeDetails && len(s.report.Risks) > 0 {
		return s.viewDetails(&b)
	}

	r := s.report
	b.WriteString(BoxStyle.Render(fmt.Sprintf(
		"Window: %s to %s   Min length: %d\nTotal streaks: %d   Longest: %d   Avg length: %.1f",
		r.From.Format(dateInputLayout), r.To.Format(dateInputLayout), r.MinLen,
		r.Total, r.Longest, r.Avg,
	)))
	b.WriteString("\n\n")

	if len(r.Risks) == 0 {
		b.WriteString(SuccessStyle.Render("No streaks found for these settings."))
		b.WriteString("\n\n")
	} else {
		start, end := listWindow(len(r.Risks), s.cursor, s.height-14)
		for i := start; i < end; i++ {
			risk := r.Risks[i]
			cursor := "  "
			style := NormalStyle
			if i == s.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			line := fmt.Sprintf("%s%-20s %-14s %-7s %2d days  %s..%s",
				cursor,
				risk.Instructor,
				risk.Level,
				risk.AgeBand,
				risk.StreakLen,
				risk.StartDate.Format("Jan 02"),
				risk.EndDate.Format("Jan 02"),
			)
			b.WriteString(style.Render(line))
			b.WriteString(" ")
			b.WriteString(SeverityStyle(risk.Severity).Render(risk.Severity))
			if risk.DaysSinceEnd > 0 {
				b.WriteString(DimStyle.Render(fmt.Sprintf(" (%dd ago)", risk.DaysSinceEnd)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[enter] Details  [i] Instructor rows  [+/-] Min length  [c] Current only  [w] Window  [e] Export  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (s *Streaks) viewDetails(b *strings.Builder) string {
	risk := s.report.Risks[s.cursor]

	b.WriteString(fmt.Sprintf("%s: %s / %s, %d consecutive days\n\n",
		SelectedStyle.Render(risk.Instructor), risk.Level, risk.AgeBand, risk.StreakLen))

	for _, d := range s.report.Details(risk) {
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			d.Date.Format("Mon Jan 02"),
			d.Level,
			DimStyle.Render(string(d.AgeBand)),
		))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[e] Export days  [enter/esc] Back"))
	return b.String()
}
