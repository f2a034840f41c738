package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterExport = `Daily Hill Report
Generated 2025-06-03
Date (YYYY/MM/DD),Shift Name,Staff First Name,Staff Last Name,Staff ID,Task Name,Task Type,Task Start (HH:MM),Task End (HH:MM),Comments,Unnamed: 10
2025/06/02,AM,Jane,Doe,42,Novice Adult,Lesson,9:00,11.00,NULL,x
2025/06/03,AM,Jane,Doe,42,Kids Novice,Program,9:00,11:00,"age 7, first time",
`

func TestReadTable(t *testing.T) {
	table, err := ReadTable(strings.NewReader(rosterExport))
	require.NoError(t, err)

	assert.Equal(t, 2, table.HeaderRow)
	assert.Equal(t, ',', table.Delimiter)
	require.Len(t, table.Records, 2)

	first := table.Records[0]
	assert.Equal(t, "2025/06/02", first.DateRaw)
	assert.Equal(t, "AM", first.ShiftName)
	assert.Equal(t, "Jane", first.FirstName)
	assert.Equal(t, "Doe", first.LastName)
	assert.Equal(t, "42", first.StaffID)
	assert.Equal(t, "Novice Adult", first.TaskName)
	assert.Equal(t, "Lesson", first.TaskType)
	assert.Equal(t, "9:00", first.TaskStart)
	assert.Equal(t, "11.00", first.TaskEnd)
	assert.Empty(t, first.Comments, "NULL is a missing value")
	require.NotNil(t, first.Date)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), *first.Date)

	assert.Equal(t, "age 7, first time", table.Records[1].Comments)
}

func TestReadTableWithoutMarkerUsesFirstLine(t *testing.T) {
	in := "date;first name;last name;task name\n02/06/2025;Jane;Doe;Advanced\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 0, table.HeaderRow)
	assert.Equal(t, ';', table.Delimiter)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "Advanced", table.Records[0].TaskName)
	require.NotNil(t, table.Records[0].Date)
	assert.Equal(t, time.June, table.Records[0].Date.Month(), "day-first layout wins")
}

func TestReadTableHandlesBOMAndTabs(t *testing.T) {
	in := "\ufeffDate (YYYY/MM/DD)\tStaff ID\tTask Name\n2025/06/02\t42\tNovice\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, '\t', table.Delimiter)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "2025/06/02", table.Records[0].DateRaw)
	assert.Equal(t, "42", table.Records[0].StaffID)
}

func TestReadTableRaggedRows(t *testing.T) {
	in := "Date,Staff ID,Task Name\n2025-06-02,42\n2025-06-03,43,Novice,extra\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Empty(t, table.Records[0].TaskName)
	assert.Equal(t, "Novice", table.Records[1].TaskName)
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  rune
	}{
		{"comma", []string{"a,b,c\n"}, ','},
		{"pipe", []string{"a|b|c\n", "1|2|3\n"}, '|'},
		{"none defaults to comma", []string{"abc\n"}, ','},
		{"blank lines skipped", []string{"\n", "  \n", "a;b\n"}, ';'},
		{"tie goes to tab", []string{"a\tb,c\n"}, '\t'},
		{
			"only five lines checked",
			[]string{"a,b\n", "a,b\n", "a,b\n", "a,b\n", "a,b\n", "a|b|c|d|e|f|g|h|i|j|k\n"},
			',',
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDelimiter(tt.lines))
		})
	}
}

func TestMapColumns(t *testing.T) {
	header := []string{
		" Date (DD/MM/YYYY) ", "Unnamed: 1", "FIRSTNAME", "last name", "staff_id",
		"Taskname", "Task Type", "Comment", "Guest Note", "Mystery",
	}
	cols := mapColumns(header)
	require.Len(t, cols, len(header))

	values := []string{"02/06/2025", "junk", "Jane", "Doe", "42", "Novice", "Lesson", "hi", "note", "?"}
	got := applyRow(cols, values)
	assert.Equal(t, "02/06/2025", got.DateRaw)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "42", got.StaffID)
	assert.Equal(t, "Novice", got.TaskName)
	assert.Equal(t, "Lesson", got.TaskType)
	assert.Equal(t, "hi", got.Comments)
	assert.Equal(t, "note", got.PrivateGuestNote)
	assert.Nil(t, cols[1], "Unnamed columns are dropped")
	assert.Nil(t, cols[9])
}

func TestMapColumnsPrefersListedVariant(t *testing.T) {
	cols := mapColumns([]string{"Date Worked", "Date"})
	assert.Nil(t, cols[0])
	assert.NotNil(t, cols[1])

	cols = mapColumns([]string{"Priority", "Date Worked"})
	got := applyRow(cols, []string{"1", "2025-06-02"})
	assert.Equal(t, "1", got.PriorityRanking)
	assert.Equal(t, "2025-06-02", got.DateRaw)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "staff id", normalizeHeader("  Staff\u200b ID\ufeff"))
}
