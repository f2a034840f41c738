// Package ingest turns roster exports into stored bookings: it reads and
// normalizes the file, classifies every row, fingerprints it and inserts the
// rows that are not already present.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emilianohg/dailyhill/internal/categorize"
	"github.com/emilianohg/dailyhill/internal/dedup"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/repository"
)

type Ingester struct {
	engine   *categorize.Engine
	bookings *repository.BookingRepo
	runs     *repository.IngestRunRepo
	logger   *zap.Logger
	workers  int
}

func New(database *sql.DB, engine *categorize.Engine, logger *zap.Logger, workers int) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		engine:   engine,
		bookings: repository.NewBookingRepo(database),
		runs:     repository.NewIngestRunRepo(database),
		logger:   logger,
		workers:  workers,
	}
}

type IngestResult struct {
	Path      string
	RunID     string
	HeaderRow int
	Delimiter rune
	RowsRead  int
	Inserted  int
	Skipped   int // already stored, or repeated within the file
	Total     int // rows stored after this file
}

// IngestFile ingests one export from disk.
func (in *Ingester) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return in.Ingest(ctx, abs, f)
}

// Ingest reads an export from r. source is recorded on the ingest run.
func (in *Ingester) Ingest(ctx context.Context, source string, r io.Reader) (*IngestResult, error) {
	result := &IngestResult{Path: source, RunID: uuid.NewString()}
	log := in.logger.With(zap.String("run_id", result.RunID), zap.String("source", source))

	if _, err := in.runs.Create(result.RunID, source, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record ingest run: %w", err)
	}

	table, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	result.HeaderRow = table.HeaderRow
	result.Delimiter = table.Delimiter
	result.RowsRead = len(table.Records)
	log.Debug("read export",
		zap.Int("header_row", table.HeaderRow+1),
		zap.String("delimiter", delimiterName(table.Delimiter)),
		zap.Int("rows", len(table.Records)),
		zap.Int("columns", len(table.Columns)),
	)

	derived, err := in.engine.CategorizeBatch(ctx, table.Records, in.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize rows: %w", err)
	}

	bookings := make([]models.Booking, len(table.Records))
	for i := range table.Records {
		bookings[i] = NewBooking(table.Records[i], derived[i])
	}

	inserted, err := in.bookings.InsertBatch(ctx, bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to store bookings: %w", err)
	}
	result.Inserted = inserted
	result.Skipped = result.RowsRead - inserted

	total, err := in.bookings.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	result.Total = total

	if err := in.runs.Finish(result.RunID, result.RowsRead, result.Inserted, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to finish ingest run: %w", err)
	}

	log.Info("ingested export",
		zap.Int("rows_read", result.RowsRead),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// IngestFiles ingests each path in turn. A file that fails is logged and
// skipped; the failures are returned joined once every file was attempted.
func (in *Ingester) IngestFiles(ctx context.Context, paths []string) ([]*IngestResult, error) {
	var results []*IngestResult
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := in.IngestFile(ctx, p)
		if err != nil {
			in.logger.Error("ingest failed", zap.String("file", p), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// NewBooking assembles the stored form of a row from its raw and derived
// fields.
func NewBooking(raw models.RawRecord, d models.Derived) models.Booking {
	return models.Booking{
		RawRecord: raw,
		Derived:   d,
		StartTime: ParseClock(raw.TaskStart),
		EndTime:   ParseClock(raw.TaskEnd),
		Week:      isoWeek(raw.Date),
		BookingID: dedup.Fingerprint(raw, d.TaskNameClean),
	}
}

func delimiterName(r rune) string {
	if r == '\t' {
		return "TAB"
	}
	return string(r)
}
