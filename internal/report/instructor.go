package report

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
)

// Levels left out of an instructor profile unless all levels are requested.
var profileExcluded = map[models.Level]bool{
	models.LevelNonTeaching:  true,
	models.LevelFencingSetup: true,
	models.LevelShowedUp:     true,
}

type LevelMix struct {
	Level   models.Level
	Count   float64
	Minutes int
}

func (l LevelMix) Hours() float64 {
	return float64(l.Minutes) / 60
}

type WeekTotal struct {
	Start time.Time // Monday
	Count float64
}

// InstructorProfile is one instructor's lesson mix, hours and weekly trend.
type InstructorProfile struct {
	Instructor string
	Levels     []LevelMix  // by count, highest first
	Weeks      []WeekTotal // oldest first
	Count      float64
	Minutes    int
}

// Weight is 0.5 for group lessons (two instructors share them) and 1 for
// everything else.
func Weight(b *models.Booking) float64 {
	if b.TaskCategory == models.CategoryLesson && b.Level != models.LevelPrivate {
		return 0.5
	}
	return 1
}

// Minutes is the whole-minute span from start_time to end_time. Missing or
// unparsable times and negative spans count as 0.
func Minutes(b *models.Booking) int {
	if b.StartTime == nil || b.EndTime == nil {
		return 0
	}
	start, ok := minuteOfDay(*b.StartTime)
	if !ok {
		return 0
	}
	end, ok := minuteOfDay(*b.EndTime)
	if !ok {
		return 0
	}
	return max(end-start, 0)
}

func minuteOfDay(s string) (int, bool) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// WeekStart returns the Monday on or before d.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	y, m, dd := d.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// NewInstructorProfile aggregates bookings, which should all belong to
// instructor. Non Teaching, Fencing/Setup and Showed Up rows are skipped
// unless includeAll is set.
func NewInstructorProfile(instructor string, bookings []models.Booking, includeAll bool) *InstructorProfile {
	p := &InstructorProfile{Instructor: instructor}
	levels := make(map[models.Level]*LevelMix)
	weeks := make(map[time.Time]float64)

	for i := range bookings {
		b := &bookings[i]
		if !includeAll && profileExcluded[b.Level] {
			continue
		}
		w := Weight(b)
		m := Minutes(b)

		mix, ok := levels[b.Level]
		if !ok {
			mix = &LevelMix{Level: b.Level}
			levels[b.Level] = mix
		}
		mix.Count += w
		mix.Minutes += m
		p.Count += w
		p.Minutes += m

		if b.Date != nil {
			weeks[WeekStart(*b.Date)] += w
		}
	}

	for _, mix := range levels {
		p.Levels = append(p.Levels, *mix)
	}
	sort.Slice(p.Levels, func(i, j int) bool {
		if p.Levels[i].Count != p.Levels[j].Count {
			return p.Levels[i].Count > p.Levels[j].Count
		}
		return p.Levels[i].Level < p.Levels[j].Level
	})

	for start, count := range weeks {
		p.Weeks = append(p.Weeks, WeekTotal{Start: start, Count: count})
	}
	sort.Slice(p.Weeks, func(i, j int) bool { return p.Weeks[i].Start.Before(p.Weeks[j].Start) })

	return p
}

// InstructorPrefix names an instructor export, e.g. instructor_Jane_Doe.
func InstructorPrefix(instructor string) string {
	return "instructor_" + strings.ReplaceAll(instructor, " ", "_")
}

// WriteInstructorProfile writes the level mix with hours to one decimal.
func WriteInstructorProfile(w io.Writer, p *InstructorProfile) error {
	rows := make([][]string, len(p.Levels))
	for i, l := range p.Levels {
		rows[i] = []string{
			p.Instructor,
			string(l.Level),
			FormatCount(l.Count),
			strconv.Itoa(l.Minutes),
			strconv.FormatFloat(l.Hours(), 'f', 1, 64),
		}
	}
	return writeAll(w, []string{"instructor", "level", "count", "minutes", "hours"}, rows)
}
