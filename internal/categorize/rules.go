package categorize

import (
	"strings"

	"github.com/emilianohg/dailyhill/internal/models"
)

// Field selects which normalized text a Rule is matched against.
type Field int

const (
	// FieldTaskName is the lowercased cleaned task name.
	FieldTaskName Field = iota
	// FieldTaskType is the task type exactly as exported.
	FieldTaskType
	// FieldNotes is the lowercased concatenation of task name, comments and guest fields.
	FieldNotes
)

// Rule assigns Label when the selected field contains any of the keywords.
type Rule struct {
	Label    models.Level
	Field    Field
	Keywords []string
}

func (r Rule) matches(in *input) bool {
	text := in.field(r.Field)
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Rules is the configuration of an Engine. An Engine copies it on construction,
// so callers may keep mutating their own value.
type Rules struct {
	// KidsMarkers are matched case-sensitively against the cleaned task name.
	KidsMarkers []string
	// KidsKeywords are matched case-insensitively against the cleaned task name.
	KidsKeywords []string
	// KidsTaskTypes mark a row as Kids when the task type contains one of them.
	KidsTaskTypes []string
	// AdultAge is the first inferred age that counts as Adults for privates.
	AdultAge int

	// Levels is evaluated in order; the first match wins.
	Levels []Rule
	// Abilities is evaluated in order over the notes; the first match wins.
	Abilities []Rule
	// LessonLevels map to the Lesson task category.
	LessonLevels []models.Level

	// AgePatterns are tried in order; group 1 of the first match is the age.
	AgePatterns []string
}

// DefaultRules returns the built-in classification tables.
func DefaultRules() Rules {
	return Rules{
		KidsMarkers:   []string{" KD ", " KD", "- KD"},
		KidsKeywords:  []string{"Kids", "Youth", "Lowriders", "Skiwees"},
		KidsTaskTypes: []string{"Program"},
		AdultAge:      16,
		Levels: []Rule{
			{Label: models.LevelMeetAndGreet, Field: FieldTaskName, Keywords: []string{
				"meet and greet", "meet & greet", "m&g", "m & g", "level lead",
			}},
			{Label: models.LevelTraining, Field: FieldTaskName, Keywords: []string{"training"}},
			{Label: models.LevelFencingSetup, Field: FieldTaskName, Keywords: []string{
				"base area set up", "base area setup", "base area set down", "set up//down",
				"packup", "pack down", "packdown", "pack up", "setup", "set up",
			}},
			{Label: models.LevelShowedUp, Field: FieldTaskName, Keywords: []string{"available", "showed up"}},
			{Label: models.LevelFirstTime, Field: FieldTaskName, Keywords: []string{"1st time", "first time"}},
			{Label: models.LevelBigCarpet, Field: FieldTaskName, Keywords: []string{"big carpet"}},
			{Label: models.LevelLittleCarpet, Field: FieldTaskName, Keywords: []string{"little carpet"}},
			{Label: models.LevelNovice, Field: FieldTaskName, Keywords: []string{"novice"}},
			{Label: models.LevelIntermediate, Field: FieldTaskName, Keywords: []string{"intermediate"}},
			{Label: models.LevelAdvanced, Field: FieldTaskName, Keywords: []string{"advanced"}},
			{Label: models.LevelBeginner, Field: FieldTaskName, Keywords: []string{"beginner"}},
			{Label: models.LevelFreestyle, Field: FieldTaskName, Keywords: []string{"freestyle"}},
			{Label: models.LevelNonTeaching, Field: FieldTaskType, Keywords: []string{"Non Teaching"}},
			{Label: models.LevelPrivate, Field: FieldTaskType, Keywords: []string{"Private"}},
		},
		Abilities: []Rule{
			{Label: models.LevelFirstTime, Field: FieldNotes, Keywords: []string{"1st time", "first time"}},
			{Label: models.LevelNovice, Field: FieldNotes, Keywords: []string{"novice"}},
			{Label: models.LevelBeginner, Field: FieldNotes, Keywords: []string{"beginner"}},
			{Label: models.LevelIntermediate, Field: FieldNotes, Keywords: []string{"intermediate"}},
			{Label: models.LevelAdvanced, Field: FieldNotes, Keywords: []string{"advanced"}},
			{Label: models.LevelFreestyle, Field: FieldNotes, Keywords: []string{"freestyle"}},
		},
		LessonLevels: []models.Level{
			models.LevelFirstTime, models.LevelNovice, models.LevelBeginner,
			models.LevelIntermediate, models.LevelAdvanced, models.LevelFreestyle,
			models.LevelBigCarpet, models.LevelLittleCarpet, models.LevelPrivate,
		},
		AgePatterns: []string{
			`\b(\d{1,2})\s*(?:y/?o|yo|yrs?|years?|yr)\b`,
			`\b(?:age|aged)\s*(\d{1,2})\b`,
		},
	}
}

func (r Rules) clone() Rules {
	c := r
	c.KidsMarkers = append([]string(nil), r.KidsMarkers...)
	c.KidsKeywords = make([]string, len(r.KidsKeywords))
	for i, kw := range r.KidsKeywords {
		c.KidsKeywords[i] = strings.ToLower(kw)
	}
	c.KidsTaskTypes = append([]string(nil), r.KidsTaskTypes...)
	c.Levels = cloneRules(r.Levels)
	c.Abilities = cloneRules(r.Abilities)
	c.LessonLevels = append([]models.Level(nil), r.LessonLevels...)
	c.AgePatterns = append([]string(nil), r.AgePatterns...)
	return c
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Label: r.Label, Field: r.Field, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
