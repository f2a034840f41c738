package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
)

const dateLayout = "2006-01-02"

const bookingColumns = `booking_id,
	date_raw, shift_name, shift_type, shift_start, shift_end,
	first_name, last_name, staff_id, payroll_id, priority_ranking,
	task_name, task_type, task_start, task_end, task_duration, comments,
	private_guest_name, is_request_private, private_guest_note,
	instructor, is_teaching, date, start_time, end_time, week,
	age_band, level, task_category, age_inferred, ability_hint`

type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// InsertBatch stores bookings in one transaction, skipping any whose
// booking_id is already present. It returns how many rows were new.
func (r *BookingRepo) InsertBatch(ctx context.Context, bookings []models.Booking) (int, error) {
	if len(bookings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var before int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&before); err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", strings.Count(bookingColumns, ",")+1), ", ")
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (`+placeholders+`)
		ON CONFLICT(booking_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range bookings {
		if _, err := stmt.ExecContext(ctx, bookingArgs(&bookings[i])...); err != nil {
			return 0, fmt.Errorf("failed to insert booking %s: %w", bookings[i].BookingID, err)
		}
	}

	var after int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&after); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bookings: %w", err)
	}
	return after - before, nil
}

func bookingArgs(b *models.Booking) []interface{} {
	var date *string
	if b.Date != nil {
		d := b.Date.Format(dateLayout)
		date = &d
	}
	var hint *string
	if b.AbilityHint != nil {
		h := string(*b.AbilityHint)
		hint = &h
	}
	return []interface{}{
		b.BookingID,
		b.DateRaw, b.ShiftName, b.ShiftType, b.ShiftStart, b.ShiftEnd,
		b.FirstName, b.LastName, b.StaffID, b.PayrollID, b.PriorityRanking,
		b.TaskName, b.TaskType, b.TaskStart, b.TaskEnd, b.TaskDuration, b.Comments,
		b.PrivateGuestName, b.IsRequestPrivate, b.PrivateGuestNote,
		b.Instructor, b.IsTeaching, date, b.StartTime, b.EndTime, b.Week,
		string(b.AgeBand), string(b.Level), string(b.TaskCategory), b.AgeInferred, hint,
	}
}

func (r *BookingRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM bookings").Scan(&count)
	return count, err
}

// DateRange returns the earliest and latest stored dates, or nils when no row
// has a date.
func (r *BookingRepo) DateRange() (*time.Time, *time.Time, error) {
	var lo, hi sql.NullString
	err := r.db.QueryRow("SELECT MIN(date), MAX(date) FROM bookings WHERE date IS NOT NULL").Scan(&lo, &hi)
	if err != nil {
		return nil, nil, err
	}
	if !lo.Valid || !hi.Valid {
		return nil, nil, nil
	}

	from, err := time.Parse(dateLayout, lo.String)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored date %q: %w", lo.String, err)
	}
	to, err := time.Parse(dateLayout, hi.String)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored date %q: %w", hi.String, err)
	}
	return &from, &to, nil
}

// ListLessonDays returns the teaching group-lesson rows dated within
// [from, to], the only rows streak detection looks at.
func (r *BookingRepo) ListLessonDays(from, to time.Time) ([]models.Booking, error) {
	return r.list(`
		WHERE is_teaching = 1
		  AND task_category = ?
		  AND level NOT IN (?, ?)
		  AND date IS NOT NULL AND date >= ? AND date <= ?
		ORDER BY instructor, date`,
		string(models.CategoryLesson), string(models.LevelPrivate), string(models.LevelOther),
		from.Format(dateLayout), to.Format(dateLayout),
	)
}

// ListAll returns every stored row ordered by id.
func (r *BookingRepo) ListAll() ([]models.Booking, error) {
	return r.list("ORDER BY id")
}

// Recent returns the latest rows for browsing, newest date first. An empty
// instructor matches everyone.
func (r *BookingRepo) Recent(instructor string, limit int) ([]models.Booking, error) {
	if instructor == "" {
		return r.list("ORDER BY date DESC, instructor LIMIT ?", limit)
	}
	return r.list("WHERE instructor = ? ORDER BY date DESC LIMIT ?", instructor, limit)
}

// ListByInstructor returns one instructor's rows dated within [from, to],
// oldest first.
func (r *BookingRepo) ListByInstructor(instructor string, from, to time.Time) ([]models.Booking, error) {
	return r.list(`
		WHERE instructor = ?
		  AND date IS NOT NULL AND date >= ? AND date <= ?
		ORDER BY date, start_time`,
		instructor, from.Format(dateLayout), to.Format(dateLayout),
	)
}

func (r *BookingRepo) GetByBookingID(bookingID string) (*models.Booking, error) {
	bookings, err := r.list("WHERE booking_id = ?", bookingID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return &bookings[0], nil
}

func (r *BookingRepo) list(filter string, args ...interface{}) ([]models.Booking, error) {
	rows, err := r.db.Query("SELECT "+bookingColumns+" FROM bookings "+filter, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(rows *sql.Rows) (*models.Booking, error) {
	var b models.Booking
	var date, startTime, endTime, hint sql.NullString
	var week, age sql.NullInt64
	var ageBand, level, category string

	if err := rows.Scan(
		&b.BookingID,
		&b.DateRaw, &b.ShiftName, &b.ShiftType, &b.ShiftStart, &b.ShiftEnd,
		&b.FirstName, &b.LastName, &b.StaffID, &b.PayrollID, &b.PriorityRanking,
		&b.TaskName, &b.TaskType, &b.TaskStart, &b.TaskEnd, &b.TaskDuration, &b.Comments,
		&b.PrivateGuestName, &b.IsRequestPrivate, &b.PrivateGuestNote,
		&b.Instructor, &b.IsTeaching, &date, &startTime, &endTime, &week,
		&ageBand, &level, &category, &age, &hint,
	); err != nil {
		return nil, err
	}

	b.AgeBand = models.AgeBand(ageBand)
	b.Level = models.Level(level)
	b.TaskCategory = models.TaskCategory(category)

	if date.Valid {
		d, err := time.Parse(dateLayout, date.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date.String, err)
		}
		b.Date = &d
	}
	if startTime.Valid {
		b.StartTime = &startTime.String
	}
	if endTime.Valid {
		b.EndTime = &endTime.String
	}
	if week.Valid {
		w := int(week.Int64)
		b.Week = &w
	}
	if age.Valid {
		a := int(age.Int64)
		b.AgeInferred = &a
	}
	if hint.Valid {
		h := models.Level(hint.String)
		b.AbilityHint = &h
	}
	return &b, nil
}

// UpdateDerived rewrites the categorization columns of existing rows, keyed
// by booking_id. Raw columns and booking_id are left alone.
func (r *BookingRepo) UpdateDerived(ctx context.Context, bookings []models.Booking) (int, error) {
	if len(bookings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE bookings
		SET instructor = ?, is_teaching = ?, age_band = ?, level = ?,
		    task_category = ?, age_inferred = ?, ability_hint = ?
		WHERE booking_id = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for i := range bookings {
		b := &bookings[i]
		var hint *string
		if b.AbilityHint != nil {
			h := string(*b.AbilityHint)
			hint = &h
		}
		res, err := stmt.ExecContext(ctx,
			b.Instructor, b.IsTeaching, string(b.AgeBand), string(b.Level),
			string(b.TaskCategory), b.AgeInferred, hint, b.BookingID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update booking %s: %w", b.BookingID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit updates: %w", err)
	}
	return updated, nil
}
