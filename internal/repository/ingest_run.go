package repository

import (
	"database/sql"
	"time"

	"github.com/emilianohg/dailyhill/internal/models"
)

type IngestRunRepo struct {
	db *sql.DB
}

func NewIngestRunRepo(db *sql.DB) *IngestRunRepo {
	return &IngestRunRepo{db: db}
}

func (r *IngestRunRepo) Create(id, sourcePath string, startedAt time.Time) (*models.IngestRun, error) {
	_, err := r.db.Exec(
		"INSERT INTO ingest_runs (id, source_path, started_at) VALUES (?, ?, ?)",
		id, sourcePath, startedAt.UTC(),
	)
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// Finish records the row counts of a completed run.
func (r *IngestRunRepo) Finish(id string, rowsRead, rowsInserted int, finishedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE ingest_runs
		SET rows_read = ?, rows_inserted = ?, finished_at = ?
		WHERE id = ?
	`, rowsRead, rowsInserted, finishedAt.UTC(), id)
	return err
}

func (r *IngestRunRepo) GetByID(id string) (*models.IngestRun, error) {
	row := r.db.QueryRow(`
		SELECT id, source_path, rows_read, rows_inserted, started_at, finished_at
		FROM ingest_runs
		WHERE id = ?
	`, id)

	run, err := scanIngestRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Recent returns the latest runs, newest first.
func (r *IngestRunRepo) Recent(limit int) ([]models.IngestRun, error) {
	rows, err := r.db.Query(`
		SELECT id, source_path, rows_read, rows_inserted, started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.IngestRun
	for rows.Next() {
		run, err := scanIngestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIngestRun(s rowScanner) (*models.IngestRun, error) {
	var run models.IngestRun
	var finishedAt sql.NullTime

	if err := s.Scan(
		&run.ID, &run.SourcePath, &run.RowsRead, &run.RowsInserted, &run.StartedAt, &finishedAt,
	); err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}
