// Package streak finds runs of consecutive teaching days on which an
// instructor's dominant (level, age band) pair did not change.
package streak

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/dailyhill/internal/models"
)

const secondsPerDay = 24 * 60 * 60

type pair struct {
	level   models.Level
	ageBand models.AgeBand
}

type dayKey struct {
	instructor string
	day        int64
}

// beats orders candidate pairs for the same instructor-day: higher count
// first, then level, then age band.
func (p pair) beats(count int, other pair, otherCount int) bool {
	if count != otherCount {
		return count > otherCount
	}
	if p.level != other.level {
		return p.level < other.level
	}
	return p.ageBand < other.ageBand
}

// Detect returns streaks of at least minLen days inside [from, to], ordered
// by instructor ascending and then start date descending.
func Detect(records []models.Booking, from, to time.Time, minLen int) []models.Streak {
	byInstructor := dominantDays(records, from, to)

	out := []models.Streak{}
	for _, name := range sortedInstructors(byInstructor) {
		out = append(out, scan(byInstructor[name], minLen)...)
	}
	return out
}

// DetectContext is Detect with the per-instructor scans spread over workers
// goroutines (runtime.NumCPU() when workers <= 0).
func DetectContext(ctx context.Context, records []models.Booking, from, to time.Time, minLen, workers int) ([]models.Streak, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	byInstructor := dominantDays(records, from, to)
	instructors := sortedInstructors(byInstructor)

	results := make([][]models.Streak, len(instructors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range instructors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scan(byInstructor[name], minLen)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []models.Streak{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func sortedInstructors(byInstructor map[string][]models.DominantDay) []string {
	names := make([]string, 0, len(byInstructor))
	for name := range byInstructor {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// scan walks one instructor's date-ordered dominant days and cuts a new group
// whenever the pair changes or a calendar day is skipped.
func scan(days []models.DominantDay, minLen int) []models.Streak {
	minLen = max(minLen, 1)

	var groups []models.Streak
	var prevDay int64

	for i, d := range days {
		day := dayNumber(d.Date)
		if i == 0 || d.Level != days[i-1].Level || d.AgeBand != days[i-1].AgeBand || day-prevDay != 1 {
			groups = append(groups, models.Streak{
				Instructor: d.Instructor,
				Level:      d.Level,
				AgeBand:    d.AgeBand,
				StartDate:  d.Date,
			})
		}
		g := &groups[len(groups)-1]
		g.StreakLen++
		g.EndDate = d.Date
		prevDay = day
	}

	out := make([]models.Streak, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i].StreakLen >= minLen {
			out = append(out, groups[i])
		}
	}
	return out
}

// DailyDominant returns the dominant (level, age band) of every
// instructor-day in the window, ordered by date and then instructor.
func DailyDominant(records []models.Booking, from, to time.Time) []models.DominantDay {
	var out []models.DominantDay
	for _, days := range dominantDays(records, from, to) {
		out = append(out, days...)
	}
	slices.SortFunc(out, func(a, b models.DominantDay) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Instructor, b.Instructor)
	})
	return out
}

func dominantDays(records []models.Booking, from, to time.Time) map[string][]models.DominantDay {
	lo, hi := dayNumber(from), dayNumber(to)

	counts := make(map[dayKey]map[pair]int)
	for i := range records {
		b := &records[i]
		day, ok := eligible(b, lo, hi)
		if !ok {
			continue
		}
		k := dayKey{instructor: b.Instructor, day: day}
		if counts[k] == nil {
			counts[k] = make(map[pair]int)
		}
		counts[k][pair{level: b.Level, ageBand: b.AgeBand}]++
	}

	byInstructor := make(map[string][]models.DominantDay)
	for k, pairs := range counts {
		var best pair
		bestCount := -1
		for p, n := range pairs {
			if bestCount < 0 || p.beats(n, best, bestCount) {
				best, bestCount = p, n
			}
		}
		byInstructor[k.instructor] = append(byInstructor[k.instructor], models.DominantDay{
			Instructor: k.instructor,
			Date:       dayTime(k.day),
			Level:      best.level,
			AgeBand:    best.ageBand,
		})
	}
	for _, days := range byInstructor {
		slices.SortFunc(days, func(a, b models.DominantDay) int { return a.Date.Compare(b.Date) })
	}
	return byInstructor
}

// eligible reports whether a stored row counts toward streaks: a dated group
// lesson inside the window.
func eligible(b *models.Booking, lo, hi int64) (int64, bool) {
	if !b.IsTeaching || b.TaskCategory != models.CategoryLesson || b.Date == nil {
		return 0, false
	}
	if b.Level == models.LevelPrivate || b.Level == models.LevelOther {
		return 0, false
	}
	day := dayNumber(*b.Date)
	if day < lo || day > hi {
		return 0, false
	}
	return day, true
}

// dayNumber counts calendar days since the Unix epoch for the date part of t.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

func dayTime(day int64) time.Time {
	return time.Unix(day*secondsPerDay, 0).UTC()
}
