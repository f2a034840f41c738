// Package report writes CSV exports of streak flags and booking summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
)

const dateLayout = "2006-01-02"

// FileName returns prefix_YYYYMMDD_HHMMSS.csv.
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, now.Format("20060102_150405"))
}

// Create opens a new export file named after prefix in dir, creating dir
// when needed.
func Create(dir, prefix string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName(prefix, now)))
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return f, nil
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteRisks writes one line per flagged streak.
func WriteRisks(w io.Writer, risks []models.Risk) error {
	rows := make([][]string, len(risks))
	for i, r := range risks {
		rows[i] = []string{
			r.Severity,
			r.Instructor,
			string(r.Level),
			string(r.AgeBand),
			strconv.Itoa(r.StreakLen),
			r.StartDate.Format(dateLayout),
			r.EndDate.Format(dateLayout),
			strconv.Itoa(r.DaysSinceEnd),
		}
	}
	return writeAll(w, []string{
		"severity", "instructor", "level", "age_band", "streak_len", "start_date", "end_date", "days_since_end",
	}, rows)
}

// WriteDays writes dominant days, used for streak details.
func WriteDays(w io.Writer, days []models.DominantDay) error {
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{d.Instructor, d.Date.Format(dateLayout), string(d.Level), string(d.AgeBand)}
	}
	return writeAll(w, []string{"instructor", "date", "level", "age_band"}, rows)
}

func WriteSummary(w io.Writer, summary []models.SummaryRow) error {
	rows := make([][]string, len(summary))
	for i, s := range summary {
		rows[i] = []string{s.Instructor, string(s.AgeBand), string(s.Level), FormatCount(s.Count)}
	}
	return writeAll(w, []string{"instructor", "age_band", "level", "count"}, rows)
}

func WritePivot(w io.Writer, p *Pivot) error {
	header := make([]string, 0, len(p.Levels)+1)
	header = append(header, "instructor")
	for _, l := range p.Levels {
		header = append(header, string(l))
	}

	rows := make([][]string, len(p.Rows))
	for i, r := range p.Rows {
		row := make([]string, 0, len(header))
		row = append(row, r.Instructor)
		for _, c := range r.Counts {
			row = append(row, FormatCount(c))
		}
		rows[i] = row
	}
	return writeAll(w, header, rows)
}

// FormatCount prints weighted counts without a trailing ".0".
func FormatCount(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

var bookingHeader = []string{
	"booking_id",
	"date_raw", "shift_name", "shift_type", "shift_start", "shift_end",
	"first_name", "last_name", "staff_id", "payroll_id", "priority_ranking",
	"task_name", "task_type", "task_start", "task_end", "task_duration", "comments",
	"private_guest_name", "is_request_private", "private_guest_note",
	"instructor", "is_teaching", "date", "start_time", "end_time", "week",
	"age_band", "level", "task_category", "age_inferred", "ability_hint",
}

// WriteBookings writes every stored column of each booking. Nulls are empty.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	rows := make([][]string, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		var date, week, age, hint string
		if b.Date != nil {
			date = b.Date.Format(dateLayout)
		}
		if b.Week != nil {
			week = strconv.Itoa(*b.Week)
		}
		if b.AgeInferred != nil {
			age = strconv.Itoa(*b.AgeInferred)
		}
		if b.AbilityHint != nil {
			hint = string(*b.AbilityHint)
		}
		rows[i] = []string{
			b.BookingID,
			b.DateRaw, b.ShiftName, b.ShiftType, b.ShiftStart, b.ShiftEnd,
			b.FirstName, b.LastName, b.StaffID, b.PayrollID, b.PriorityRanking,
			b.TaskName, b.TaskType, b.TaskStart, b.TaskEnd, b.TaskDuration, b.Comments,
			b.PrivateGuestName, b.IsRequestPrivate, b.PrivateGuestNote,
			b.Instructor, strconv.FormatBool(b.IsTeaching), date, deref(b.StartTime), deref(b.EndTime), week,
			string(b.AgeBand), string(b.Level), string(b.TaskCategory), age, hint,
		}
	}
	return writeAll(w, bookingHeader, rows)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
