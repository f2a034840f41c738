package report

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/dailyhill/internal/db"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/repository"
)

func seedBookings(t *testing.T) *repository.BookingRepo {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var bookings []models.Booking
	for i := 2; i <= 6; i++ {
		d := date(fmt.Sprintf("2025-06-%02d", i))
		bookings = append(bookings, models.Booking{
			RawRecord: models.RawRecord{Date: &d},
			Derived: models.Derived{
				Instructor:   "Jane Doe",
				IsTeaching:   true,
				AgeBand:      models.AgeBandKids,
				Level:        models.LevelNovice,
				TaskCategory: models.CategoryLesson,
			},
			BookingID: fmt.Sprintf("jane-%d", i),
		})
	}

	repo := repository.NewBookingRepo(conn)
	_, err = repo.InsertBatch(context.Background(), bookings)
	require.NoError(t, err)
	return repo
}

func TestBuildStreaks(t *testing.T) {
	repo := seedBookings(t)

	from, to, err := DefaultWindow(repo)
	require.NoError(t, err)
	assert.Equal(t, date("2025-06-02"), from)
	assert.Equal(t, date("2025-06-06"), to)

	r, err := BuildStreaks(context.Background(), repo, StreakOptions{From: from, To: to.AddDate(0, 0, 2), MinLen: 2, Workers: 2})
	require.NoError(t, err)

	require.Len(t, r.Risks, 1)
	risk := r.Risks[0]
	assert.Equal(t, "Jane Doe", risk.Instructor)
	assert.Equal(t, 5, risk.StreakLen)
	assert.Equal(t, "5-6", risk.Severity)
	assert.Equal(t, 2, risk.DaysSinceEnd)
	assert.Equal(t, 1, r.Total)
	assert.Equal(t, 5, r.Longest)
	assert.Len(t, r.Details(risk), 5)
	require.Len(t, r.Breakdown, 1)
	assert.Equal(t, 1, r.Breakdown[0].Count)
}

func TestBuildStreaksInvalidRange(t *testing.T) {
	repo := seedBookings(t)

	_, err := BuildStreaks(context.Background(), repo, StreakOptions{From: date("2025-06-06"), To: date("2025-06-01"), MinLen: 2})
	assert.ErrorIs(t, err, ErrInvalidRange)
}
