package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/dailyhill/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWriteRisks(t *testing.T) {
	risks := []models.Risk{{
		Streak: models.Streak{
			Instructor: "Jane Doe",
			Level:      models.LevelMeetAndGreet,
			AgeBand:    models.AgeBandKids,
			StreakLen:  5,
			StartDate:  date("2025-06-02"),
			EndDate:    date("2025-06-06"),
		},
		DaysSinceEnd: 0,
		Severity:     "5-6",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRisks(&buf, risks))

	want := "severity,instructor,level,age_band,streak_len,start_date,end_date,days_since_end\n" +
		"5-6,Jane Doe,Meet & Greet,Kids,5,2025-06-02,2025-06-06,0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteDays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDays(&buf, []models.DominantDay{
		{Instructor: "Jane Doe", Date: date("2025-06-02"), Level: models.LevelNovice, AgeBand: models.AgeBandAdults},
	}))
	assert.Equal(t, "instructor,date,level,age_band\nJane Doe,2025-06-02,Novice,Adults\n", buf.String())
}

func TestWriteSummaryAndPivot(t *testing.T) {
	summary := []models.SummaryRow{
		{Instructor: "Zed", AgeBand: models.AgeBandAdults, Level: models.LevelNovice, Count: 1},
		{Instructor: "Jane Doe", AgeBand: models.AgeBandAdults, Level: models.LevelNovice, Count: 1.5},
		{Instructor: "Jane Doe", AgeBand: models.AgeBandKids, Level: models.LevelNovice, Count: 0.5},
		{Instructor: "Jane Doe", AgeBand: models.AgeBandAdults, Level: models.LevelPrivate, Count: 2},
		{Instructor: "Jane Doe", AgeBand: models.AgeBandAdults, Level: models.LevelNonTeaching, Count: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary[:2]))
	assert.Equal(t, "instructor,age_band,level,count\nZed,Adults,Novice,1\nJane Doe,Adults,Novice,1.5\n", buf.String())

	p := NewPivot(summary)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, "Jane Doe", p.Rows[0].Instructor)

	want := make([]float64, len(PivotLevels))
	want[1] = 2 // Novice
	want[9] = 2 // Private
	if diff := cmp.Diff(want, p.Rows[0].Counts); diff != "" {
		t.Errorf("pivot counts mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	require.NoError(t, WritePivot(&buf, p))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "instructor,1st Time,Novice,Beginner,Intermediate,Advanced,Freestyle,Big Carpet,Little Carpet,Fencing/Setup,Private,Training,Meet & Greet,Showed Up,Other", string(lines[0]))
	assert.Equal(t, "Jane Doe,0,2,0,0,0,0,0,0,0,2,0,0,0,0", string(lines[1]))
}

func TestCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2025, 6, 3, 14, 5, 9, 0, time.UTC)

	assert.Equal(t, "streaks_20250603_140509.csv", FileName("streaks", now))

	f, err := Create(dir, "streaks", now)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = os.Stat(filepath.Join(dir, "streaks_20250603_140509.csv"))
	assert.NoError(t, err)
}

func TestWriteBookings(t *testing.T) {
	d := date("2025-06-02")
	week, age := 23, 7
	start, end := "09:00:00", "10:30:00"
	hint := models.LevelNovice
	bookings := []models.Booking{
		{
			RawRecord: models.RawRecord{
				DateRaw:   "6/2/2025",
				FirstName: "Jane",
				LastName:  "Doe",
				StaffID:   "42",
				TaskName:  "Kids Novice",
				Comments:  "age 7, says novice",
				Date:      &d,
			},
			Derived: models.Derived{
				Instructor:   "Jane Doe",
				IsTeaching:   true,
				AgeBand:      models.AgeBandKids,
				Level:        models.LevelNovice,
				TaskCategory: models.CategoryLesson,
				AgeInferred:  &age,
				AbilityHint:  &hint,
			},
			StartTime: &start,
			EndTime:   &end,
			Week:      &week,
			BookingID: "abc",
		},
		{BookingID: "def"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, bookings))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "booking_id,"+
		"date_raw,shift_name,shift_type,shift_start,shift_end,"+
		"first_name,last_name,staff_id,payroll_id,priority_ranking,"+
		"task_name,task_type,task_start,task_end,task_duration,comments,"+
		"private_guest_name,is_request_private,private_guest_note,"+
		"instructor,is_teaching,date,start_time,end_time,week,"+
		"age_band,level,task_category,age_inferred,ability_hint", lines[0])
	assert.Equal(t, `abc,6/2/2025,,,,,Jane,Doe,42,,,Kids Novice,,,,,"age 7, says novice",,,,`+
		`Jane Doe,true,2025-06-02,09:00:00,10:30:00,23,Kids,Novice,Lesson,7,Novice`, lines[1])
	assert.Equal(t, "def"+strings.Repeat(",", 21)+"false"+strings.Repeat(",", 9), lines[2])
}
