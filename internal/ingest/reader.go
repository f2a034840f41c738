package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/emilianohg/dailyhill/internal/models"
)

// headerMarker identifies the real header line of a roster export; anything
// above it is report preamble.
const headerMarker = "Date (YYYY/MM/DD)"

var delimiterCandidates = []rune{'\t', ',', ';', '|'}

// nullValues are cell contents treated as missing.
var nullValues = map[string]bool{"": true, "NULL": true, "NaN": true}

// Table is the outcome of reading one export.
type Table struct {
	HeaderRow int
	Delimiter rune
	Columns   []string
	Records   []models.RawRecord
}

// ReadTable decodes an export into raw records. A UTF-8 or UTF-16 byte order
// mark is honoured; input without one is read as UTF-8.
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(data)
	lines := strings.SplitAfter(text, "\n")

	headerRow, offset := detectHeaderRow(lines)
	delim := detectDelimiter(lines)

	cr := csv.NewReader(strings.NewReader(text[offset:]))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := mapColumns(header)
	table := &Table{
		HeaderRow: headerRow,
		Delimiter: delim,
		Columns:   header,
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		table.Records = append(table.Records, applyRow(cols, row))
	}

	return table, nil
}

// applyRow builds a record from one data row. Cells beyond the header are
// dropped and missing cells stay empty.
func applyRow(cols []setter, row []string) models.RawRecord {
	var rec models.RawRecord
	for i, cell := range row {
		if i >= len(cols) {
			break
		}
		if cols[i] == nil || nullValues[cell] {
			continue
		}
		cols[i](&rec, cell)
	}
	rec.Date = ParseDate(rec.DateRaw)
	return rec
}

// detectHeaderRow returns the index of the first line containing the header
// marker and its byte offset, or line 0 when no line has it.
func detectHeaderRow(lines []string) (int, int) {
	offset := 0
	for i, line := range lines {
		if strings.Contains(line, headerMarker) {
			return i, offset
		}
		offset += len(line)
	}
	return 0, 0
}

// detectDelimiter picks the candidate occurring most often in the first five
// non-empty lines. Ties go to the earlier candidate; comma when none occur.
func detectDelimiter(lines []string) rune {
	counts := make([]int, len(delimiterCandidates))
	checked := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for i, c := range delimiterCandidates {
			counts[i] += strings.Count(line, string(c))
		}
		checked++
		if checked >= 5 {
			break
		}
	}

	best := 0
	for i := range counts {
		if counts[i] > counts[best] {
			best = i
		}
	}
	if counts[best] == 0 {
		return ','
	}
	return delimiterCandidates[best]
}
