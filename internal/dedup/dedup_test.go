package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emilianohg/dailyhill/internal/categorize"
	"github.com/emilianohg/dailyhill/internal/models"
)

func TestFingerprint(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := models.RawRecord{
		Date:      &date,
		StaffID:   "1042",
		TaskStart: "09:30",
		TaskEnd:   "12.00",
		TaskName:  "Novice KD",
	}

	assert.Equal(t, "2024-06-01|1042|09:30-12.00|Novice KD", Fingerprint(rec, rec.TaskName))
}

func TestFingerprintIsStable(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	a := models.RawRecord{Date: &date, StaffID: "7", TaskStart: "9:00", TaskEnd: "10:00", TaskName: "a", TaskType: "Program"}

	other := date
	b := a
	b.Date = &other

	clean := categorize.CleanTaskName(a.TaskName, a.TaskType)
	assert.Equal(t, Fingerprint(a, clean), Fingerprint(a, clean))
	assert.Equal(t, Fingerprint(a, clean), Fingerprint(b, categorize.CleanTaskName(b.TaskName, b.TaskType)))
	assert.Equal(t, "2024-01-02|7|9:00-10:00|Program", Fingerprint(a, clean))
}

func TestFingerprintNulls(t *testing.T) {
	assert.Equal(t, "||-|", Fingerprint(models.RawRecord{}, ""))

	rec := models.RawRecord{StaffID: "3", TaskName: "Novice"}
	assert.Equal(t, "|3|-|Novice", Fingerprint(rec, "Novice"))
}

func TestFingerprintDistinguishesRawTimes(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	a := models.RawRecord{Date: &date, StaffID: "7", TaskStart: "09:00"}
	b := models.RawRecord{Date: &date, StaffID: "7", TaskStart: "09.00"}

	assert.NotEqual(t, Fingerprint(a, "x"), Fingerprint(b, "x"))
}
