package report

import (
	"cmp"
	"slices"

	"github.com/emilianohg/dailyhill/internal/models"
)

// PivotLevels are the pivot columns, in display order.
var PivotLevels = []models.Level{
	models.LevelFirstTime,
	models.LevelNovice,
	models.LevelBeginner,
	models.LevelIntermediate,
	models.LevelAdvanced,
	models.LevelFreestyle,
	models.LevelBigCarpet,
	models.LevelLittleCarpet,
	models.LevelFencingSetup,
	models.LevelPrivate,
	models.LevelTraining,
	models.LevelMeetAndGreet,
	models.LevelShowedUp,
	models.LevelOther,
}

// Pivot is an instructor by level table of weighted counts.
type Pivot struct {
	Levels []models.Level
	Rows   []PivotRow
}

type PivotRow struct {
	Instructor string
	Counts     []float64 // parallel to Pivot.Levels
}

// NewPivot folds summary rows into one row per instructor, summing across
// age bands. Levels outside PivotLevels are not shown.
func NewPivot(summary []models.SummaryRow) *Pivot {
	col := make(map[models.Level]int, len(PivotLevels))
	for i, l := range PivotLevels {
		col[l] = i
	}

	p := &Pivot{Levels: PivotLevels}
	byInstructor := make(map[string]int)
	for _, s := range summary {
		c, ok := col[s.Level]
		if !ok {
			continue
		}
		i, seen := byInstructor[s.Instructor]
		if !seen {
			i = len(p.Rows)
			byInstructor[s.Instructor] = i
			p.Rows = append(p.Rows, PivotRow{Instructor: s.Instructor, Counts: make([]float64, len(PivotLevels))})
		}
		p.Rows[i].Counts[c] += s.Count
	}

	slices.SortFunc(p.Rows, func(a, b PivotRow) int { return cmp.Compare(a.Instructor, b.Instructor) })
	return p
}
