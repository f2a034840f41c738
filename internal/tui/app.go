package tui

import (
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dailyhill/internal/config"
	"github.com/emilianohg/dailyhill/internal/ingest"
	"github.com/emilianohg/dailyhill/internal/tui/screens"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenIngest
	ScreenStreaks
	ScreenSummary
	ScreenBrowse
)

type App struct {
	db            *sql.DB
	cfg           *config.Config
	ingester      *ingest.Ingester
	currentScreen Screen
	width         int
	height        int

	// Screen models
	dashboard *screens.Dashboard
	ingest    *screens.Ingest
	streaks   *screens.Streaks
	summary   *screens.Summary
	browse    *screens.Browse
}

func NewApp(db *sql.DB, cfg *config.Config, ingester *ingest.Ingester) *App {
	return &App{
		db:            db,
		cfg:           cfg,
		ingester:      ingester,
		currentScreen: ScreenDashboard,
	}
}

func (a *App) Init() tea.Cmd {
	a.dashboard = screens.NewDashboard(a.db)
	a.ingest = screens.NewIngest(a.ingester)
	a.streaks = screens.NewStreaks(a.db, a.cfg)
	a.summary = screens.NewSummary(a.db, a.cfg)
	a.browse = screens.NewBrowse(a.db, a.cfg)

	return a.dashboard.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenDashboard {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.ingest.SetSize(msg.Width, msg.Height)
		a.streaks.SetSize(msg.Width, msg.Height)
		a.summary.SetSize(msg.Width, msg.Height)
		a.browse.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenIngest:
		cmd = a.ingest.Update(msg)
	case ScreenStreaks:
		cmd = a.streaks.Update(msg)
	case ScreenSummary:
		cmd = a.summary.Update(msg)
	case ScreenBrowse:
		cmd = a.browse.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "dashboard":
		a.currentScreen = ScreenDashboard
		return a, a.dashboard.Init()
	case "ingest":
		a.currentScreen = ScreenIngest
		return a, a.ingest.Init()
	case "streaks":
		a.currentScreen = ScreenStreaks
		return a, a.streaks.Init()
	case "summary":
		a.currentScreen = ScreenSummary
		return a, a.summary.Init()
	case "browse":
		a.currentScreen = ScreenBrowse
		a.browse.SetInstructorFilter(msg.Instructor)
		return a, a.browse.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenIngest:
		content = a.ingest.View()
	case ScreenStreaks:
		content = a.streaks.View()
	case ScreenSummary:
		content = a.summary.View()
	case ScreenBrowse:
		content = a.browse.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(db *sql.DB, cfg *config.Config, ingester *ingest.Ingester) error {
	app := NewApp(db, cfg, ingester)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
