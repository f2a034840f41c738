package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emilianohg/dailyhill/internal/db"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/report"
	"github.com/emilianohg/dailyhill/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored rows to CSV with every column",
	Long: `Write stored rows to CSV, one line per booking with every stored column.

Without --instructor the newest rows are written to sample_*.csv. With it,
every row of that instructor in the window goes to instructor_<name>_*.csv.

Examples:
  dailyhill export --limit 500
  dailyhill export --instructor "Jane Doe" --from 2025-06-01 --csv out.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var instructorCmd = &cobra.Command{
	Use:   "instructor NAME",
	Short: "Lesson mix, hours and weekly trend for one instructor",
	Long: `Break one instructor's rows down by level, with weighted counts (group
lessons 0.5, everything else 1) and hours taught, plus weighted totals per
week starting Monday.

Non Teaching, Fencing/Setup and Showed Up rows are left out unless --all is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstructor,
}

func init() {
	exportCmd.Flags().String("instructor", "", "Only this instructor's rows")
	exportCmd.Flags().Int("limit", 100, "Newest rows to write when no instructor is given")
	exportCmd.Flags().String("from", "", "First day, with --instructor (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "Last day, with --instructor (YYYY-MM-DD)")
	exportCmd.Flags().String("csv", "", "File or directory to write (default reports_output)")

	instructorCmd.Flags().String("from", "", "First day of the window (YYYY-MM-DD)")
	instructorCmd.Flags().String("to", "", "Last day of the window (YYYY-MM-DD)")
	instructorCmd.Flags().Bool("all", false, "Include non-teaching levels")
	instructorCmd.Flags().String("csv", "", "Write the level mix to this file or directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	database, err := db.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repository.NewBookingRepo(database)
	instructor, _ := cmd.Flags().GetString("instructor")

	var rows []models.Booking
	prefix := "sample"
	if instructor == "" {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return fmt.Errorf("invalid --limit: %d", limit)
		}
		if rows, err = repo.Recent("", limit); err != nil {
			return err
		}
	} else {
		from, to, err := windowFlags(cmd, repo)
		if err != nil {
			return err
		}
		if rows, err = repo.ListByInstructor(instructor, from, to); err != nil {
			return err
		}
		prefix = report.InstructorPrefix(instructor)
	}

	path, _ := cmd.Flags().GetString("csv")
	if path == "" {
		path = cfg.ReportsOutput
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}

	fmt.Printf("Rows: %d\n", len(rows))
	return exportCSV(path, prefix, func(w io.Writer) error {
		return report.WriteBookings(w, rows)
	})
}

func runInstructor(cmd *cobra.Command, args []string) error {
	database, err := db.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repository.NewBookingRepo(database)
	name := args[0]

	from, to, err := windowFlags(cmd, repo)
	if err != nil {
		return err
	}
	rows, err := repo.ListByInstructor(name, from, to)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("No rows for %s between %s and %s.\n", name, from.Format(dateFlagLayout), to.Format(dateFlagLayout))
		return nil
	}

	all, _ := cmd.Flags().GetBool("all")
	p := report.NewInstructorProfile(name, rows, all)

	fmt.Printf("%s: %s to %s, %d rows\n", name, from.Format(dateFlagLayout), to.Format(dateFlagLayout), len(rows))
	fmt.Printf("Lessons (weighted): %s\n", report.FormatCount(p.Count))
	fmt.Printf("Hours: %.1f\n\n", float64(p.Minutes)/60)
	fmt.Println(levelMixTable(p))
	fmt.Println(weeklyTable(p))

	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		return exportCSV(path, report.InstructorPrefix(name)+"_levels", func(w io.Writer) error {
			return report.WriteInstructorProfile(w, p)
		})
	}
	return nil
}

func levelMixTable(p *report.InstructorProfile) string {
	t := newTable("Level", "Count", "Hours")
	for _, l := range p.Levels {
		t.Row(string(l.Level), report.FormatCount(l.Count), fmt.Sprintf("%.1f", l.Hours()))
	}
	return t.String()
}

func weeklyTable(p *report.InstructorProfile) string {
	t := newTable("Week of", "Count")
	for _, w := range p.Weeks {
		t.Row(w.Start.Format(dateFlagLayout), report.FormatCount(w.Count))
	}
	return t.String()
}
