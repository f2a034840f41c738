package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emilianohg/dailyhill/internal/categorize"
	"github.com/emilianohg/dailyhill/internal/config"
	"github.com/emilianohg/dailyhill/internal/db"
	"github.com/emilianohg/dailyhill/internal/ingest"
	"github.com/emilianohg/dailyhill/internal/logging"
	"github.com/emilianohg/dailyhill/internal/tui"
)

var (
	verbose bool
	dbPath  string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dailyhill",
	Short: "Instructor streak tracker for Daily Hill roster exports",
	Long: `Dailyhill stores Daily Hill roster exports in a local database and flags
instructors who keep teaching the same level and age band day after day.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}

		logPath, err := config.ErrorLogPath()
		if err != nil {
			return err
		}

		// The TUI owns the terminal, so it only gets the error file.
		if cmd == cmd.Root() {
			logger, err = logging.NewFileOnly(logPath)
		} else {
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			logger, err = logging.New(level, logPath)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		// Bring a fresh or outdated database up to date without asking
		status, _ := db.GetMigrationStatus()
		if status != nil && status.Pending {
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		ingester, err := newIngester(database)
		if err != nil {
			return err
		}
		return tui.Run(database, cfg, ingester)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Load one or more Daily Hill CSV exports",
	Long: `Load Daily Hill CSV exports into the database.

Rows already stored (same date, staff id, task times and task name) are skipped,
so the same file can be ingested again safely.

Examples:
  dailyhill ingest june.csv
  dailyhill ingest exports/*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.OpenAndMigrate(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ingester, err := newIngester(database)
		if err != nil {
			return err
		}

		results, ingestErr := ingester.IngestFiles(cmd.Context(), args)
		for _, r := range results {
			fmt.Printf("%s\n", r.Path)
			fmt.Printf("  Rows read: %d\n", r.RowsRead)
			fmt.Printf("  Inserted: %d\n", r.Inserted)
			fmt.Printf("  Skipped: %d (already present)\n", r.Skipped)
			fmt.Printf("  Total stored: %d\n", r.Total)
		}
		if ingestErr != nil {
			return fmt.Errorf("%d of %d files failed:\n%w", len(args)-len(results), len(args), ingestErr)
		}
		return nil
	},
}

var recategorizeCmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Re-derive instructor, level and age band for every stored row",
	Long: `Re-run classification over the raw fields of every stored row.

Use after changing the [rules] section of the config. Booking ids are not
touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.OpenAndMigrate(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ingester, err := newIngester(database)
		if err != nil {
			return err
		}

		result, err := ingester.Recategorize(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Scanned: %d\n", result.Scanned)
		fmt.Printf("Updated: %d\n", result.Updated)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := db.Open(cfg.DatabasePath); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := db.GetMigrationStatus()
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		fmt.Printf("Schema version: %d of %d\n", status.CurrentVersion, status.LatestVersion)
		if status.Dirty {
			fmt.Println("Warning: the last migration did not complete (dirty).")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default ~/.dailyhill/db/dailyhill.sqlite)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(recategorizeCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(streaksCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(instructorCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newIngester(database *sql.DB) (*ingest.Ingester, error) {
	engine, err := categorize.New(cfg.CategorizeRules())
	if err != nil {
		return nil, fmt.Errorf("failed to load categorization rules: %w", err)
	}
	return ingest.New(database, engine, logger, cfg.WorkerCount()), nil
}
