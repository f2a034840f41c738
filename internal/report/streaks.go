package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/repository"
	"github.com/emilianohg/dailyhill/internal/streak"
)

var ErrInvalidRange = errors.New("from date is after to date")

type StreakOptions struct {
	From        time.Time
	To          time.Time
	MinLen      int
	CurrentOnly bool
	Workers     int
}

// StreakReport is everything the streak views show for one window.
type StreakReport struct {
	StreakOptions

	Streaks   []models.Streak
	Days      []models.DominantDay
	Risks     []models.Risk
	Breakdown []models.StreakBreakdown

	Total   int
	Longest int
	Avg     float64
}

// DefaultWindow returns the span of stored dates, or an empty window ending
// today when nothing is stored.
func DefaultWindow(bookings *repository.BookingRepo) (time.Time, time.Time, error) {
	from, to, err := bookings.DateRange()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to load date range: %w", err)
	}
	if from == nil || to == nil {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return today, today, nil
	}
	return *from, *to, nil
}

// BuildStreaks loads the window's lesson rows and runs streak detection.
// days_since_end is measured from the end of the window.
func BuildStreaks(ctx context.Context, bookings *repository.BookingRepo, opts StreakOptions) (*StreakReport, error) {
	if opts.From.After(opts.To) {
		return nil, ErrInvalidRange
	}

	records, err := bookings.ListLessonDays(opts.From, opts.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson days: %w", err)
	}

	streaks, err := streak.DetectContext(ctx, records, opts.From, opts.To, opts.MinLen, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to detect streaks: %w", err)
	}

	days := streak.DailyDominant(records, opts.From, opts.To)
	r := &StreakReport{
		StreakOptions: opts,
		Streaks:       streaks,
		Days:          days,
		Risks:         streak.Risks(streaks, days, opts.To, opts.CurrentOnly),
		Breakdown:     streak.Breakdown(streaks),
	}
	r.Total, r.Longest, r.Avg = streak.Stats(streaks)
	return r, nil
}

// Details returns the dominant days behind one flagged streak.
func (r *StreakReport) Details(risk models.Risk) []models.DominantDay {
	return streak.Details(r.Days, risk.Streak)
}
