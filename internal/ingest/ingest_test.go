package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emilianohg/dailyhill/internal/categorize"
	"github.com/emilianohg/dailyhill/internal/db"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return conn
}

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daily_hill.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestFileTwiceInsertsOnce(t *testing.T) {
	conn := openTestDB(t)
	ing := New(conn, categorize.Default(), zap.NewNop(), 2)
	path := writeExport(t, rosterExport)
	ctx := context.Background()

	res, err := ing.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsRead)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, 2, res.Total)
	assert.NotEmpty(t, res.RunID)

	res, err = ing.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsRead)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Total)

	runs, err := repository.NewIngestRunRepo(conn).Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.NotNil(t, run.FinishedAt)
		assert.Equal(t, 2, run.RowsRead)
	}
}

func TestIngestStoresDerivedFields(t *testing.T) {
	conn := openTestDB(t)
	ing := New(conn, categorize.Default(), nil, 1)

	_, err := ing.Ingest(context.Background(), "june.csv", strings.NewReader(rosterExport))
	require.NoError(t, err)

	repo := repository.NewBookingRepo(conn)

	adult, err := repo.GetByBookingID("2025-06-02|42|9:00-11.00|Novice Adult")
	require.NoError(t, err)
	require.NotNil(t, adult)
	assert.Equal(t, "Jane Doe", adult.Instructor)
	assert.True(t, adult.IsTeaching)
	assert.Equal(t, models.AgeBandAdults, adult.AgeBand)
	assert.Equal(t, models.LevelNovice, adult.Level)
	assert.Equal(t, models.CategoryLesson, adult.TaskCategory)
	require.NotNil(t, adult.StartTime)
	assert.Equal(t, "09:00:00", *adult.StartTime)
	require.NotNil(t, adult.EndTime)
	assert.Equal(t, "11:00:00", *adult.EndTime)
	require.NotNil(t, adult.Week)
	assert.Equal(t, 23, *adult.Week)

	kids, err := repo.GetByBookingID("2025-06-03|42|9:00-11:00|Kids Novice")
	require.NoError(t, err)
	require.NotNil(t, kids)
	assert.Equal(t, models.AgeBandKids, kids.AgeBand)
	require.NotNil(t, kids.AgeInferred)
	assert.Equal(t, 7, *kids.AgeInferred)
	require.NotNil(t, kids.AbilityHint)
	assert.Equal(t, models.LevelFirstTime, *kids.AbilityHint)
}

func TestIngestDuplicateRowsWithinFile(t *testing.T) {
	conn := openTestDB(t)
	ing := New(conn, categorize.Default(), nil, 1)

	in := "Date,Staff ID,Task Name,Task Start,Task End\n" +
		"2025-06-02,42,Novice,9:00,11:00\n" +
		"2025-06-02,42,Novice,9:00,11:00\n" +
		"2025-06-02,42,Novice,09:00,11:00\n"

	res, err := ing.Ingest(context.Background(), "dupes.csv", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowsRead)
	assert.Equal(t, 2, res.Inserted, "raw time text is part of the key")
	assert.Equal(t, 1, res.Skipped)
}

func TestIngestFilesContinuesAfterFailure(t *testing.T) {
	conn := openTestDB(t)
	ing := New(conn, categorize.Default(), nil, 1)

	good := writeExport(t, rosterExport)
	missing := filepath.Join(t.TempDir(), "missing.csv")
	empty := writeExport(t, "")

	results, err := ing.IngestFiles(context.Background(), []string{missing, good, empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.Contains(t, err.Error(), "missing.csv")

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Inserted)
}

func TestIngestFileRejectsDirectory(t *testing.T) {
	ing := New(openTestDB(t), categorize.Default(), nil, 1)

	_, err := ing.IngestFile(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotRegularFile)
}

func TestRecategorize(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	_, err := New(conn, categorize.Default(), nil, 1).Ingest(ctx, "june.csv", strings.NewReader(rosterExport))
	require.NoError(t, err)

	res, err := New(conn, categorize.Default(), nil, 1).Recategorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Zero(t, res.Updated, "unchanged rules leave rows alone")

	rules := categorize.DefaultRules()
	rules.KidsKeywords = append(rules.KidsKeywords, "adult")
	engine, err := categorize.New(rules)
	require.NoError(t, err)

	ing := New(conn, engine, nil, 1)
	res, err = ing.Recategorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	res, err = ing.Recategorize(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Updated)

	repo := repository.NewBookingRepo(conn)
	b, err := repo.GetByBookingID("2025-06-02|42|9:00-11.00|Novice Adult")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, models.AgeBandKids, b.AgeBand)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
