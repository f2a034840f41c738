// Package dedup builds the booking fingerprint used as the uniqueness key of a
// stored roster row.
package dedup

import (
	"strings"

	"github.com/emilianohg/dailyhill/internal/models"
)

const dateLayout = "2006-01-02"

// Fingerprint returns date|staff_id|task_start-task_end|task_name_clean.
//
// Start and end are the raw cell text, not the parsed times, so a row read
// twice from byte-identical exports always maps to the same key. Missing
// components become empty strings; a row with nothing set yields "||-|".
func Fingerprint(r models.RawRecord, taskNameClean string) string {
	date := ""
	if r.Date != nil {
		date = r.Date.Format(dateLayout)
	}

	var b strings.Builder
	b.Grow(len(date) + len(r.StaffID) + len(r.TaskStart) + len(r.TaskEnd) + len(taskNameClean) + 4)
	b.WriteString(date)
	b.WriteByte('|')
	b.WriteString(r.StaffID)
	b.WriteByte('|')
	b.WriteString(r.TaskStart)
	b.WriteByte('-')
	b.WriteString(r.TaskEnd)
	b.WriteByte('|')
	b.WriteString(taskNameClean)
	return b.String()
}
