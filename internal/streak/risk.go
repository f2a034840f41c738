package streak

import (
	"cmp"
	"slices"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
)

const (
	SeverityCritical = "7+"
	SeverityHigh     = "5-6"
	SeverityMedium   = "3-4"
	SeverityLow      = "<3"
)

// Severity buckets a streak length.
func Severity(streakLen int) string {
	switch {
	case streakLen >= 7:
		return SeverityCritical
	case streakLen >= 5:
		return SeverityHigh
	case streakLen >= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Risks ranks streaks by length (longest first) and recency. asOf is usually
// the end of the analysed window. With currentOnly, only streaks ending on
// the instructor's latest dominant day in days are kept.
func Risks(streaks []models.Streak, days []models.DominantDay, asOf time.Time, currentOnly bool) []models.Risk {
	latest := make(map[string]int64)
	for _, d := range days {
		n := dayNumber(d.Date)
		if prev, ok := latest[d.Instructor]; !ok || n > prev {
			latest[d.Instructor] = n
		}
	}

	ref := dayNumber(asOf)
	out := make([]models.Risk, 0, len(streaks))
	for _, s := range streaks {
		end := dayNumber(s.EndDate)
		if currentOnly {
			if last, ok := latest[s.Instructor]; !ok || last != end {
				continue
			}
		}
		out = append(out, models.Risk{
			Streak:       s,
			DaysSinceEnd: int(ref - end),
			Severity:     Severity(s.StreakLen),
		})
	}

	slices.SortStableFunc(out, func(a, b models.Risk) int {
		if c := cmp.Compare(b.StreakLen, a.StreakLen); c != 0 {
			return c
		}
		return cmp.Compare(a.DaysSinceEnd, b.DaysSinceEnd)
	})
	return out
}

// Breakdown counts streaks per (level, age band), most frequent first.
func Breakdown(streaks []models.Streak) []models.StreakBreakdown {
	idx := make(map[pair]int)
	var out []models.StreakBreakdown
	for _, s := range streaks {
		p := pair{level: s.Level, ageBand: s.AgeBand}
		i, ok := idx[p]
		if !ok {
			i = len(out)
			idx[p] = i
			out = append(out, models.StreakBreakdown{Level: s.Level, AgeBand: s.AgeBand})
		}
		out[i].Count++
		out[i].Longest = max(out[i].Longest, s.StreakLen)
	}

	slices.SortFunc(out, func(a, b models.StreakBreakdown) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(a.AgeBand, b.AgeBand)
	})
	return out
}

// Stats returns the number of streaks, the longest one and the mean length.
func Stats(streaks []models.Streak) (total, longest int, avg float64) {
	if len(streaks) == 0 {
		return 0, 0, 0
	}
	sum := 0
	for _, s := range streaks {
		sum += s.StreakLen
		longest = max(longest, s.StreakLen)
	}
	return len(streaks), longest, float64(sum) / float64(len(streaks))
}

// Details returns the dominant days that make up s.
func Details(days []models.DominantDay, s models.Streak) []models.DominantDay {
	lo, hi := dayNumber(s.StartDate), dayNumber(s.EndDate)
	var out []models.DominantDay
	for _, d := range days {
		if d.Instructor != s.Instructor {
			continue
		}
		if n := dayNumber(d.Date); n >= lo && n <= hi {
			out = append(out, d)
		}
	}
	return out
}
