package screens

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/dailyhill/internal/config"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/report"
)

func TestParseWindow(t *testing.T) {
	from, to, err := parseWindow(" 2025-06-01 .. 2025-06-30 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), to)

	_, _, err = parseWindow("2025-06-30..2025-06-01")
	assert.ErrorIs(t, err, report.ErrInvalidRange)

	_, _, err = parseWindow("2025-06-01")
	assert.Error(t, err)

	_, _, err = parseWindow("June..July")
	assert.Error(t, err)
}

func TestCycle(t *testing.T) {
	options := []string{"Adults", "Kids"}

	assert.Equal(t, "Adults", cycle("", options))
	assert.Equal(t, "Kids", cycle("Adults", options))
	assert.Equal(t, "", cycle("Kids", options))
	assert.Equal(t, "", cycle("", nil))
	assert.Equal(t, "", cycle("Gone", options))
}

func TestListWindow(t *testing.T) {
	tests := []struct {
		name               string
		n, cursor, height  int
		wantStart, wantEnd int
	}{
		{"fits", 5, 4, 10, 0, 5},
		{"no height", 5, 4, 0, 0, 5},
		{"top", 100, 0, 10, 0, 10},
		{"middle", 100, 50, 10, 45, 55},
		{"bottom", 100, 99, 10, 90, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := listWindow(tt.n, tt.cursor, tt.height)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestNavigateWithInstructor(t *testing.T) {
	msg := NavigateWithInstructor("browse", "Jane Doe")()
	nav, ok := msg.(NavigateMsg)
	require.True(t, ok)
	assert.Equal(t, "browse", nav.Screen)
	assert.Equal(t, "Jane Doe", nav.Instructor)
}

func TestBrowseFilterKey(t *testing.T) {
	b := NewBrowse(nil, &config.Config{})
	b.SetInstructorFilter("Jane Doe")
	b.cursor = 3

	cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	assert.NotNil(t, cmd)
	assert.Empty(t, b.instructor)
	assert.Zero(t, b.cursor)
	assert.True(t, b.loading)
}

func key(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestStreaksDropsStaleReply(t *testing.T) {
	s := NewStreaks(nil, &config.Config{})
	s.Init()
	stale := s.seq
	s.Update(key("c")) // options change while the first load is in flight

	s.Update(streaksDataMsg{seq: stale, report: &report.StreakReport{}})
	assert.Nil(t, s.report)
	assert.True(t, s.loading)

	s.Update(streaksDataMsg{seq: s.seq, opts: s.opts, report: &report.StreakReport{}})
	assert.NotNil(t, s.report)
	assert.False(t, s.loading)
	assert.True(t, s.opts.CurrentOnly)
}

func TestSummaryDropsStaleReply(t *testing.T) {
	s := NewSummary(nil, &config.Config{})
	s.Init()
	stale := s.seq
	s.Update(key("t"))

	s.Update(summaryDataMsg{seq: stale, rows: []models.SummaryRow{{Instructor: "Old"}}})
	assert.Empty(t, s.rows)
	assert.True(t, s.loading)

	s.Update(summaryDataMsg{seq: s.seq, rows: []models.SummaryRow{{Instructor: "New"}}})
	require.Len(t, s.rows, 1)
	assert.Equal(t, "New", s.rows[0].Instructor)
}

func TestBrowseDropsStaleReply(t *testing.T) {
	b := NewBrowse(nil, &config.Config{})
	b.SetInstructorFilter("Jane Doe")
	b.Init()
	stale := b.seq
	b.Update(key("f"))

	b.Update(browseDataMsg{seq: stale, bookings: []models.Booking{{BookingID: "old"}}})
	assert.Empty(t, b.bookings)
	assert.Nil(t, b.profile)

	b.Update(browseDataMsg{seq: b.seq, bookings: []models.Booking{{BookingID: "new"}}})
	require.Len(t, b.bookings, 1)
	assert.Nil(t, b.profile)
}

func TestStreakDetailsExport(t *testing.T) {
	dir := t.TempDir()
	s := NewStreaks(nil, &config.Config{ReportsOutput: dir})

	d := func(v string) time.Time {
		day, _ := time.Parse("2006-01-02", v)
		return day
	}
	streak := models.Streak{
		Instructor: "Jane Doe",
		Level:      models.LevelNovice,
		AgeBand:    models.AgeBandKids,
		StreakLen:  2,
		StartDate:  d("2025-06-02"),
		EndDate:    d("2025-06-03"),
	}
	s.report = &report.StreakReport{
		Days: []models.DominantDay{
			{Instructor: "Jane Doe", Date: d("2025-06-02"), Level: models.LevelNovice, AgeBand: models.AgeBandKids},
			{Instructor: "Jane Doe", Date: d("2025-06-03"), Level: models.LevelNovice, AgeBand: models.AgeBandKids},
			{Instructor: "Al Bo", Date: d("2025-06-03"), Level: models.LevelAdvanced, AgeBand: models.AgeBandAdults},
		},
		Risks: []models.Risk{{Streak: streak, Severity: "1-2"}},
	}

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, streaksModeDetails, s.mode)

	cmd := s.Update(key("e"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	assert.Equal(t, dir, filepath.Dir(msg.path))
	assert.True(t, strings.HasPrefix(filepath.Base(msg.path), "streak_days_"))
	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	assert.Equal(t, "instructor,date,level,age_band\n"+
		"Jane Doe,2025-06-02,Novice,Kids\n"+
		"Jane Doe,2025-06-03,Novice,Kids\n", string(data))

	s.Update(msg)
	assert.Contains(t, s.message, msg.path)
}

func TestBrowseExportInstructorHistory(t *testing.T) {
	dir := t.TempDir()
	b := NewBrowse(nil, &config.Config{ReportsOutput: dir})
	b.SetInstructorFilter("Jane Doe")
	b.Init()

	start, end := "09:00:00", "10:00:00"
	history := []models.Booking{{
		Derived:   models.Derived{Instructor: "Jane Doe", Level: models.LevelPrivate, TaskCategory: models.CategoryLesson},
		StartTime: &start,
		EndTime:   &end,
		BookingID: "a",
	}}
	b.Update(browseDataMsg{seq: b.seq, bookings: history, history: history})
	require.NotNil(t, b.profile)
	assert.Equal(t, 60, b.profile.Minutes)

	msg, ok := b.Update(key("e"))().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.True(t, strings.HasPrefix(filepath.Base(msg.path), "instructor_Jane_Doe_"))

	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "booking_id,date_raw,"))

	b.Update(key("p"))
	assert.True(t, b.breakdown)
	assert.Contains(t, b.View(), "Private")
}
