package screens

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/repository"
)

const dashboardRuns = 5

type Dashboard struct {
	db     *sql.DB
	width  int
	height int

	total   int
	minDate string
	maxDate string
	runs    []models.IngestRun
	loading bool
	err     error
}

func NewDashboard(db *sql.DB) *Dashboard {
	return &Dashboard{
		db:      db,
		loading: true,
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

type dashboardDataMsg struct {
	total   int
	minDate string
	maxDate string
	runs    []models.IngestRun
	err     error
}

func (d *Dashboard) Init() tea.Cmd {
	d.loading = true
	return d.loadData
}

func (d *Dashboard) loadData() tea.Msg {
	bookingRepo := repository.NewBookingRepo(d.db)
	runRepo := repository.NewIngestRunRepo(d.db)

	total, err := bookingRepo.Count()
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	from, to, err := bookingRepo.DateRange()
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	minDate, maxDate := "N/A", "N/A"
	if from != nil && to != nil {
		minDate = from.Format("Jan 02, 2006")
		maxDate = to.Format("Jan 02, 2006")
	}

	runs, err := runRepo.Recent(dashboardRuns)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	return dashboardDataMsg{
		total:   total,
		minDate: minDate,
		maxDate: maxDate,
		runs:    runs,
	}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.loading = false
		d.err = msg.err
		d.total = msg.total
		d.minDate = msg.minDate
		d.maxDate = msg.maxDate
		d.runs = msg.runs
		return nil

	case RefreshMsg:
		return d.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "i":
			return Navigate("ingest")
		case "s":
			return Navigate("streaks")
		case "u":
			return Navigate("summary")
		case "b":
			return Navigate("browse")
		}
	}

	return nil
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("DAILYHILL"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Instructor Streak Tracker"))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", d.err)))
		b.WriteString("\n")
		return b.String()
	}

	statsContent := fmt.Sprintf(
		"Total records: %s\nFirst date: %s\nLatest date: %s",
		d.formatTotal(),
		d.minDate,
		d.maxDate,
	)
	b.WriteString(BoxStyle.Render(statsContent))
	b.WriteString("\n\n")

	if len(d.runs) > 0 {
		b.WriteString(SubtitleStyle.Render("Recent ingests"))
		b.WriteString("\n")
		for _, r := range d.runs {
			status := SuccessStyle.Render(fmt.Sprintf("+%d", r.RowsInserted))
			if r.FinishedAt == nil {
				status = ErrorStyle.Render("failed")
			}
			b.WriteString(fmt.Sprintf("  %s  %s  %d rows %s\n",
				DimStyle.Render(r.StartedAt.Local().Format("Jan 02 15:04")),
				NormalStyle.Render(filepath.Base(r.SourcePath)),
				r.RowsRead,
				status,
			))
		}
	} else {
		b.WriteString(DimStyle.Render("Nothing ingested yet. Press 'i' to load a Daily Hill export."))
	}

	b.WriteString("\n")

	help := "[i] Ingest  [s] Streaks  [u] Summary  [b] Browse  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (d *Dashboard) formatTotal() string {
	if d.total == 0 {
		return WarningStyle.Render("0")
	}
	return SuccessStyle.Render(fmt.Sprintf("%d", d.total))
}
