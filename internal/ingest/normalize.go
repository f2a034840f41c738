package ingest

import (
	"strings"

	"github.com/emilianohg/dailyhill/internal/models"
)

type setter func(*models.RawRecord, string)

type alias struct {
	variants []string
	set      setter
}

// aliases maps header spellings seen across export versions to record fields.
// Within a group the first variant present wins.
var aliases = []alias{
	{[]string{"shift name", "shiftname"}, func(r *models.RawRecord, v string) { r.ShiftName = v }},
	{[]string{"shift type", "shifttype"}, func(r *models.RawRecord, v string) { r.ShiftType = v }},
	{[]string{"shift start (hh:mm)", "shift start", "shift start (hhmm)", "shiftstart"}, func(r *models.RawRecord, v string) { r.ShiftStart = v }},
	{[]string{"shift end (hh:mm)", "shift end", "shift end (hhmm)", "shiftend"}, func(r *models.RawRecord, v string) { r.ShiftEnd = v }},
	{[]string{"staff first name", "first name", "firstname"}, func(r *models.RawRecord, v string) { r.FirstName = v }},
	{[]string{"staff last name", "last name", "lastname"}, func(r *models.RawRecord, v string) { r.LastName = v }},
	{[]string{"staff id", "staffid", "staff_id"}, func(r *models.RawRecord, v string) { r.StaffID = v }},
	{[]string{"payroll id", "payrollid", "payroll_id"}, func(r *models.RawRecord, v string) { r.PayrollID = v }},
	{[]string{"priority ranking", "priority", "priorityranking"}, func(r *models.RawRecord, v string) { r.PriorityRanking = v }},
	{[]string{"task name", "taskname"}, func(r *models.RawRecord, v string) { r.TaskName = v }},
	{[]string{"task type", "tasktype"}, func(r *models.RawRecord, v string) { r.TaskType = v }},
	{[]string{"task start (hh:mm)", "task start", "task start (hhmm)", "taskstart"}, func(r *models.RawRecord, v string) { r.TaskStart = v }},
	{[]string{"task end (hh:mm)", "task end", "task end (hhmm)", "taskend"}, func(r *models.RawRecord, v string) { r.TaskEnd = v }},
	{[]string{"task duration", "taskduration"}, func(r *models.RawRecord, v string) { r.TaskDuration = v }},
	{[]string{"comments", "comment"}, func(r *models.RawRecord, v string) { r.Comments = v }},
	{[]string{"private guest name", "private guest", "guest name"}, func(r *models.RawRecord, v string) { r.PrivateGuestName = v }},
	{[]string{"is request private", "request private", "is private"}, func(r *models.RawRecord, v string) { r.IsRequestPrivate = v }},
	{[]string{"private guest note", "guest note", "private note"}, func(r *models.RawRecord, v string) { r.PrivateGuestNote = v }},
}

var dateVariants = []string{
	"date (yyyy/mm/dd)", "date (yyyy-mm-dd)", "date", "date (dd/mm/yyyy)", "date (mm/dd/yyyy)",
}

func setDate(r *models.RawRecord, v string) { r.DateRaw = v }

// normalizeHeader trims, strips zero-width spaces and BOMs, and lowercases.
func normalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\u200b", "")
	s = strings.ReplaceAll(s, "\ufeff", "")
	return strings.ToLower(s)
}

// mapColumns returns, for every header position, the setter that stores that
// column's cells, or nil for columns that are ignored.
func mapColumns(header []string) []setter {
	cols := make([]setter, len(header))

	index := make(map[string]int, len(header))
	var order []string
	for i, h := range header {
		if strings.HasPrefix(strings.TrimSpace(h), "Unnamed") {
			continue
		}
		n := normalizeHeader(h)
		if _, seen := index[n]; !seen {
			order = append(order, n)
		}
		index[n] = i
	}

	lookup := func(variants []string) (int, bool) {
		for _, v := range variants {
			if i, ok := index[v]; ok {
				return i, true
			}
		}
		return 0, false
	}

	if i, ok := lookup(dateVariants); ok {
		cols[i] = setDate
	} else {
		for _, n := range order {
			if strings.HasPrefix(n, "date") {
				cols[index[n]] = setDate
				break
			}
		}
	}

	for _, a := range aliases {
		if i, ok := lookup(a.variants); ok {
			cols[i] = a.set
		}
	}
	return cols
}
