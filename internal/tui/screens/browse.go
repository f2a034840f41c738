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

const browseLimit = 200

type Browse struct {
	db     *sql.DB
	cfg    *config.Config
	width  int
	height int

	instructor string
	bookings   []models.Booking
	history    []models.Booking // every row of the filtered instructor
	profile    *report.InstructorProfile
	showAll    bool
	breakdown  bool
	seq        int
	cursor     int
	loading    bool
	err        error
	message    string
}

func NewBrowse(db *sql.DB, cfg *config.Config) *Browse {
	return &Browse{
		db:  db,
		cfg: cfg,
	}
}

func (r *Browse) SetSize(width, height int) {
	r.width = width
	r.height = height
}

// SetInstructorFilter limits the list to one instructor; empty shows everyone.
func (r *Browse) SetInstructorFilter(instructor string) {
	r.instructor = instructor
	r.cursor = 0
	r.breakdown = false
}

type browseDataMsg struct {
	seq      int
	bookings []models.Booking
	history  []models.Booking
	err      error
}

func (r *Browse) Init() tea.Cmd {
	r.message = ""
	r.loading = true
	r.seq++
	return loadBrowse(r.db, r.seq, r.instructor)
}

func loadBrowse(db *sql.DB, seq int, instructor string) tea.Cmd {
	return func() tea.Msg {
		repo := repository.NewBookingRepo(db)
		bookings, err := repo.Recent(instructor, browseLimit)
		if err != nil || instructor == "" {
			return browseDataMsg{seq: seq, bookings: bookings, err: err}
		}

		from, to, err := report.DefaultWindow(repo)
		if err != nil {
			return browseDataMsg{seq: seq, err: err}
		}
		history, err := repo.ListByInstructor(instructor, from, to)
		if err != nil {
			return browseDataMsg{seq: seq, err: err}
		}
		return browseDataMsg{seq: seq, bookings: bookings, history: history}
	}
}

func (r *Browse) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case browseDataMsg:
		if msg.seq != r.seq {
			return nil
		}
		r.loading = false
		r.err = msg.err
		r.bookings = msg.bookings
		r.history = msg.history
		r.profile = nil
		if r.instructor != "" {
			r.profile = report.NewInstructorProfile(r.instructor, r.history, r.showAll)
		}
		if r.cursor >= len(r.bookings) {
			r.cursor = max(0, len(r.bookings)-1)
		}
		return nil

	case exportDoneMsg:
		if msg.err != nil {
			r.err = msg.err
		} else {
			r.message = fmt.Sprintf("Exported to %s", msg.path)
		}
		return nil

	case RefreshMsg:
		return r.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if r.cursor > 0 {
				r.cursor--
			}
		case "down", "j":
			if r.cursor < len(r.bookings)-1 {
				r.cursor++
			}
		case "f":
			if r.instructor != "" {
				r.SetInstructorFilter("")
				return r.Init()
			}
			if len(r.bookings) > 0 {
				r.SetInstructorFilter(r.bookings[r.cursor].Instructor)
				return r.Init()
			}
		case "p":
			if r.profile != nil {
				r.breakdown = !r.breakdown
			}
		case "n":
			if r.breakdown {
				r.showAll = !r.showAll
				r.profile = report.NewInstructorProfile(r.instructor, r.history, r.showAll)
			}
		case "e":
			return r.export()
		case "q", "esc":
			if r.breakdown {
				r.breakdown = false
				return nil
			}
			return Navigate("dashboard")
		}
	}

	return nil
}

// export writes the instructor's full history when filtered, otherwise the
// rows on screen.
func (r *Browse) export() tea.Cmd {
	if r.instructor == "" {
		rows := r.bookings
		return exportCSV(r.cfg.ReportsOutput, "sample", func(w io.Writer) error {
			return report.WriteBookings(w, rows)
		})
	}
	if r.breakdown && r.profile != nil {
		p := r.profile
		return exportCSV(r.cfg.ReportsOutput, report.InstructorPrefix(r.instructor)+"_levels", func(w io.Writer) error {
			return report.WriteInstructorProfile(w, p)
		})
	}
	rows := r.history
	return exportCSV(r.cfg.ReportsOutput, report.InstructorPrefix(r.instructor), func(w io.Writer) error {
		return report.WriteBookings(w, rows)
	})
}

func (r *Browse) viewBreakdown(b *strings.Builder) {
	p := r.profile
	scope := "lessons only"
	if r.showAll {
		scope = "all levels"
	}
	b.WriteString(DimStyle.Render(fmt.Sprintf("%d rows stored, %s", len(r.history), scope)))
	b.WriteString("\n\n")

	if len(p.Levels) == 0 {
		b.WriteString(DimStyle.Render("Nothing to break down."))
		b.WriteString("\n\n")
		return
	}

	b.WriteString(DimStyle.Render(fmt.Sprintf("  %-16s %8s %8s", "Level", "Count", "Hours")))
	b.WriteString("\n")
	for _, l := range p.Levels {
		b.WriteString(NormalStyle.Render(fmt.Sprintf("  %-16s %8s %8.1f", l.Level, report.FormatCount(l.Count), l.Hours())))
		b.WriteString("\n")
	}
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %-16s %8s %8.1f", "Total", report.FormatCount(p.Count), float64(p.Minutes)/60)))
	b.WriteString("\n\n")

	b.WriteString(DimStyle.Render(fmt.Sprintf("  %-16s %8s", "Week of", "Count")))
	b.WriteString("\n")
	start, end := listWindow(len(p.Weeks), len(p.Weeks)-1, r.height-len(p.Levels)-14)
	for _, w := range p.Weeks[start:end] {
		b.WriteString(NormalStyle.Render(fmt.Sprintf("  %-16s %8s", w.Start.Format("2006-01-02"), report.FormatCount(w.Count))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (r *Browse) View() string {
	var b strings.Builder

	title := "BOOKINGS"
	if r.instructor != "" {
		title = fmt.Sprintf("BOOKINGS (%s)", r.instructor)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if r.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if r.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", r.err)))
		b.WriteString("\n\n")
		r.err = nil
	}

	if r.message != "" {
		b.WriteString(SuccessStyle.Render(r.message))
		b.WriteString("\n\n")
	}

	if r.breakdown && r.profile != nil {
		r.viewBreakdown(&b)
		b.WriteString(HelpStyle.Render("[n] Toggle non-teaching levels  [e] Export levels  [p/esc] Rows"))
		return b.String()
	}

	if len(r.bookings) == 0 {
		b.WriteString(DimStyle.Render("No bookings stored yet."))
		b.WriteString("\n\n")
	} else {
		start, end := listWindow(len(r.bookings), r.cursor, r.height-10)
		for i := start; i < end; i++ {
			bk := r.bookings[i]
			cursor := "  "
			style := NormalStyle
			if i == r.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			date := "????-??-??"
			if bk.Date != nil {
				date = bk.Date.Format("2006-01-02")
			}
			teaching := ""
			if !bk.IsTeaching {
				teaching = DimStyle.Render(" (non teaching)")
			}

			line := fmt.Sprintf("%s%s  %-20s %-14s %-7s %s",
				cursor, date, bk.Instructor, bk.Level, bk.AgeBand, bk.TaskCategory)
			b.WriteString(style.Render(line))
			b.WriteString(teaching)
			b.WriteString("\n")

			// Raw fields on a second line when selected
			if i == r.cursor {
				b.WriteString(DimStyle.Render(fmt.Sprintf("     %s [%s] %s-%s  %s",
					bk.TaskName, bk.TaskType, bk.TaskStart, bk.TaskEnd, bk.Comments)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	help := "[f] Filter by instructor  [e] Export  [q] Back"
	if r.instructor != "" {
		help = "[f] Show everyone  [p] Breakdown  [e] Export history  [q] Back"
	}
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
