package repository

import (
	"strings"

	"github.com/emilianohg/dailyhill/internal/models"
)

// SummaryFilter narrows the rows counted by Summary. Zero values mean no
// filter on that column.
type SummaryFilter struct {
	Week         *int
	AgeBand      models.AgeBand
	Level        models.Level
	TaskCategory models.TaskCategory
	TeachingOnly bool
}

func (f SummaryFilter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Week != nil {
		conds = append(conds, "week = ?")
		args = append(args, *f.Week)
	}
	if f.AgeBand != "" {
		conds = append(conds, "age_band = ?")
		args = append(args, string(f.AgeBand))
	}
	if f.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, string(f.Level))
	}
	if f.TaskCategory != "" {
		conds = append(conds, "task_category = ?")
		args = append(args, string(f.TaskCategory))
	}
	if f.TeachingOnly {
		conds = append(conds, "is_teaching = 1")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Summary returns weighted booking counts per (instructor, age band, level).
// Group lessons weigh 0.5 and everything else 1. Fencing/Setup rows count
// once per instructor and day however many were recorded.
func (r *BookingRepo) Summary(f SummaryFilter) ([]models.SummaryRow, error) {
	where, args := f.where()

	rows, err := r.db.Query(`
		WITH base AS (
			SELECT DISTINCT
				CASE WHEN level = 'Fencing/Setup'
					THEN COALESCE(date, '') || '|' || instructor || '|FS'
					ELSE booking_id
				END AS unit_id,
				instructor, age_band, level,
				CASE WHEN task_category = 'Lesson' AND level <> 'Private' THEN 0.5 ELSE 1.0 END AS weight
			FROM bookings
			`+where+`
		)
		SELECT instructor, age_band, level, SUM(weight)
		FROM base
		GROUP BY instructor, age_band, level
		ORDER BY instructor, age_band, level
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SummaryRow
	for rows.Next() {
		var s models.SummaryRow
		var ageBand, level string
		if err := rows.Scan(&s.Instructor, &ageBand, &level, &s.Count); err != nil {
			return nil, err
		}
		s.AgeBand = models.AgeBand(ageBand)
		s.Level = models.Level(level)
		out = append(out, s)
	}
	return out, rows.Err()
}

// FilterOptions lists the distinct values present for each summary filter.
type FilterOptions struct {
	Weeks          []int
	AgeBands       []string
	Levels         []string
	TaskCategories []string
}

func (r *BookingRepo) FilterOptions() (*FilterOptions, error) {
	var opts FilterOptions

	rows, err := r.db.Query("SELECT DISTINCT week FROM bookings WHERE week IS NOT NULL ORDER BY week")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var w int
		if err := rows.Scan(&w); err != nil {
			rows.Close()
			return nil, err
		}
		opts.Weeks = append(opts.Weeks, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		dst  *[]string
	}{
		{"age_band", &opts.AgeBands},
		{"level", &opts.Levels},
		{"task_category", &opts.TaskCategories},
	} {
		values, err := r.distinct(col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}
	return &opts, nil
}

func (r *BookingRepo) distinct(column string) ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT " + column + " FROM bookings ORDER BY " + column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
