package models

import "time"

type Level string

const (
	LevelMeetAndGreet Level = "Meet & Greet"
	LevelTraining     Level = "Training"
	LevelFencingSetup Level = "Fencing/Setup"
	LevelShowedUp     Level = "Showed Up"
	LevelFirstTime    Level = "1st Time"
	LevelBigCarpet    Level = "Big Carpet"
	LevelLittleCarpet Level = "Little Carpet"
	LevelNovice       Level = "Novice"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelBeginner     Level = "Beginner"
	LevelFreestyle    Level = "Freestyle"
	LevelNonTeaching  Level = "Non Teaching"
	LevelPrivate      Level = "Private"
	LevelOther        Level = "Other"
)

type AgeBand string

const (
	AgeBandKids   AgeBand = "Kids"
	AgeBandAdults AgeBand = "Adults"
)

type TaskCategory string

const (
	CategoryLesson       TaskCategory = "Lesson"
	CategoryFencingSetup TaskCategory = "Fencing/Setup"
	CategoryShowedUp     TaskCategory = "Showed Up"
	CategoryMeetAndGreet TaskCategory = "Meet & Greet"
	CategoryTraining     TaskCategory = "Training"
	CategoryNonTeaching  TaskCategory = "Non Teaching"
	CategoryOther        TaskCategory = "Other"
)

// RawRecord is one export row after header normalization. Empty strings stand
// in for null cells.
type RawRecord struct {
	DateRaw          string
	ShiftName        string
	ShiftType        string
	ShiftStart       string
	ShiftEnd         string
	FirstName        string
	LastName         string
	StaffID          string
	PayrollID        string
	PriorityRanking  string
	TaskName         string
	TaskType         string
	TaskStart        string
	TaskEnd          string
	TaskDuration     string
	Comments         string
	PrivateGuestName string
	IsRequestPrivate string
	PrivateGuestNote string

	Date *time.Time // nil when DateRaw is unparsable
}

type Derived struct {
	TaskNameClean string
	Instructor    string
	IsTeaching    bool
	AgeBand       AgeBand
	Level         Level
	TaskCategory  TaskCategory
	AgeInferred   *int
	AbilityHint   *Level
}

type Booking struct {
	RawRecord
	Derived

	StartTime *string // HH:MM:SS
	EndTime   *string
	Week      *int
	BookingID string
}

type Streak struct {
	Instructor string
	Level      Level
	AgeBand    AgeBand
	StreakLen  int
	StartDate  time.Time
	EndDate    time.Time
}

type DominantDay struct {
	Instructor string
	Date       time.Time
	Level      Level
	AgeBand    AgeBand
}

type Risk struct {
	Streak
	DaysSinceEnd int
	Severity     string
}

type StreakBreakdown struct {
	Level   Level
	AgeBand AgeBand
	Count   int
	Longest int
}

type IngestRun struct {
	ID           string
	SourcePath   string
	RowsRead     int
	RowsInserted int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

type SummaryRow struct {
	Instructor string
	AgeBand    AgeBand
	Level      Level
	Count      float64
}
