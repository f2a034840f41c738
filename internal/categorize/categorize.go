// Package categorize derives age band, level and task category from the free
// text of a roster row. Classification is a pure function of one row.
package categorize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/emilianohg/dailyhill/internal/models"
)

type Engine struct {
	rules       Rules
	agePatterns []*regexp.Regexp
	lesson      map[models.Level]struct{}
}

// New builds an Engine from rules. The rules are copied.
func New(rules Rules) (*Engine, error) {
	r := rules.clone()

	e := &Engine{
		rules:  r,
		lesson: make(map[models.Level]struct{}, len(r.LessonLevels)),
	}
	for _, p := range r.AgePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid age pattern %q: %w", p, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("age pattern %q has no capture group", p)
		}
		e.agePatterns = append(e.agePatterns, re)
	}
	for _, l := range r.LessonLevels {
		e.lesson[l] = struct{}{}
	}
	return e, nil
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	e, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

type input struct {
	taskNameClean string
	taskType      string
	tnLower       string
	notesLower    string
}

func (in *input) field(f Field) string {
	switch f {
	case FieldTaskType:
		return in.taskType
	case FieldNotes:
		return in.notesLower
	default:
		return in.tnLower
	}
}

// CleanTaskName falls back to the task type for placeholder task names
// (empty, a single character, or "a").
func CleanTaskName(taskName, taskType string) string {
	if taskName == "" || utf8.RuneCountInString(taskName) <= 1 || strings.EqualFold(taskName, "a") {
		return taskType
	}
	return taskName
}

func newInput(r models.RawRecord) *input {
	clean := CleanTaskName(r.TaskName, r.TaskType)
	notes := strings.Join([]string{clean, r.Comments, r.PrivateGuestNote, r.PrivateGuestName}, " ")
	return &input{
		taskNameClean: clean,
		taskType:      r.TaskType,
		tnLower:       strings.ToLower(clean),
		notesLower:    strings.ToLower(notes),
	}
}

// Categorize derives the classification fields for one row.
func (e *Engine) Categorize(r models.RawRecord) models.Derived {
	in := newInput(r)

	d := models.Derived{
		TaskNameClean: in.taskNameClean,
		Instructor:    r.FirstName + " " + r.LastName,
		IsTeaching:    r.TaskType != string(models.LevelNonTeaching),
		Level:         e.level(in),
		AgeInferred:   e.inferAge(in.notesLower),
		AbilityHint:   e.abilityHint(in),
	}
	d.AgeBand = e.ageBand(in, d.AgeInferred)
	d.TaskCategory = e.taskCategory(d.Level, r.TaskType)
	return d
}

func (e *Engine) ageBand(in *input, age *int) models.AgeBand {
	if age != nil && strings.Contains(in.taskType, string(models.LevelPrivate)) {
		if *age < e.rules.AdultAge {
			return models.AgeBandKids
		}
		return models.AgeBandAdults
	}

	for _, m := range e.rules.KidsMarkers {
		if strings.Contains(in.taskNameClean, m) {
			return models.AgeBandKids
		}
	}
	for _, kw := range e.rules.KidsKeywords {
		if strings.Contains(in.tnLower, kw) {
			return models.AgeBandKids
		}
	}
	for _, tt := range e.rules.KidsTaskTypes {
		if strings.Contains(in.taskType, tt) {
			return models.AgeBandKids
		}
	}
	return models.AgeBandAdults
}

func (e *Engine) level(in *input) models.Level {
	if l, ok := firstMatch(e.rules.Levels, in); ok {
		return l
	}
	return models.LevelOther
}

func (e *Engine) abilityHint(in *input) *models.Level {
	if l, ok := firstMatch(e.rules.Abilities, in); ok {
		return &l
	}
	return nil
}

func firstMatch(rules []Rule, in *input) (models.Level, bool) {
	for _, r := range rules {
		if r.matches(in) {
			return r.Label, true
		}
	}
	return "", false
}

func (e *Engine) inferAge(notes string) *int {
	for _, re := range e.agePatterns {
		m := re.FindStringSubmatch(notes)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &age
	}
	return nil
}

// taskCategory depends only on the level and, for the fallback, the task type.
func (e *Engine) taskCategory(level models.Level, taskType string) models.TaskCategory {
	if _, ok := e.lesson[level]; ok {
		return models.CategoryLesson
	}
	switch level {
	case models.LevelFencingSetup:
		return models.CategoryFencingSetup
	case models.LevelShowedUp:
		return models.CategoryShowedUp
	case models.LevelMeetAndGreet:
		return models.CategoryMeetAndGreet
	case models.LevelTraining:
		return models.CategoryTraining
	}
	if strings.Contains(taskType, string(models.CategoryNonTeaching)) {
		return models.CategoryNonTeaching
	}
	return models.CategoryOther
}
