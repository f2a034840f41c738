// Package db owns the process-wide SQLite connection and its schema.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/emilianohg/dailyhill/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// WAL lets the TUI read while an ingest transaction is open.
const dsnOptions = "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

var db *sql.DB

var ErrNotOpen = errors.New("database not open")

type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

// Open connects to the database at path, or at ~/.dailyhill/db/dailyhill.sqlite
// when path is empty. Later calls return the same connection until Close.
func Open(path string) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	if path == "" {
		if err := config.EnsureDirectories(); err != nil {
			return nil, err
		}
		p, err := config.DatabasePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	conn, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db = conn
	return db, nil
}

func OpenAndMigrate(path string) (*sql.DB, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return conn, nil
}

func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

func GetMigrationStatus() (*MigrationStatus, error) {
	m, src, err := migrator()
	if err != nil {
		return nil, err
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}
	latest := lastVersion(src)

	return &MigrationStatus{
		CurrentVersion: current,
		LatestVersion:  latest,
		Dirty:          dirty,
		Pending:        current < latest,
	}, nil
}

// RunMigrations applies every embedded migration not yet recorded.
func RunMigrations() error {
	m, _, err := migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrator must not be closed: the sqlite3 driver wraps the shared pool.
func migrator() (*migrate.Migrate, source.Driver, error) {
	if db == nil {
		return nil, nil, ErrNotOpen
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, nil, err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, nil, err
	}
	return m, src, nil
}

// lastVersion walks the embedded migrations; 0 when there are none.
func lastVersion(src source.Driver) uint {
	v, err := src.First()
	if err != nil {
		return 0
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v
		}
		v = next
	}
}
