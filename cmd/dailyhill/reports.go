package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/emilianohg/dailyhill/internal/db"
	"github.com/emilianohg/dailyhill/internal/models"
	"github.com/emilianohg/dailyhill/internal/report"
	"github.com/emilianohg/dailyhill/internal/repository"
)

const dateFlagLayout = "2006-01-02"

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Flag instructors stuck on the same level and age band",
	Long: `Find runs of consecutive days where an instructor's dominant lesson was the
same level and age band.

The window defaults to the first and last stored dates.

Examples:
  dailyhill streaks
  dailyhill streaks --from 2025-06-01 --to 2025-06-30 --min 3
  dailyhill streaks --current --csv ~/Documents/reports`,
	Args: cobra.NoArgs,
	RunE: runStreaks,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Weighted lesson counts per instructor, age band and level",
	Long: `Count lessons per instructor, age band and level.

Group lessons count 0.5 (two instructors share them), privates count 1 and
fencing/setup counts once per instructor and day.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	streaksCmd.Flags().String("from", "", "First day of the window (YYYY-MM-DD)")
	streaksCmd.Flags().String("to", "", "Last day of the window (YYYY-MM-DD)")
	streaksCmd.Flags().Int("min", 0, "Minimum streak length (default from config)")
	streaksCmd.Flags().Bool("current", false, "Only streaks still running on the last day")
	streaksCmd.Flags().Bool("details", false, "Print the days of every streak")
	streaksCmd.Flags().String("csv", "", "Write the flags to this file or directory (with --details, days go to streak_days_*.csv beside it)")

	summaryCmd.Flags().Int("week", 0, "ISO week number")
	summaryCmd.Flags().String("age-band", "", "Kids or Adults")
	summaryCmd.Flags().String("level", "", "Level, e.g. Novice")
	summaryCmd.Flags().String("category", "", "Task category, e.g. Lesson")
	summaryCmd.Flags().Bool("teaching-only", false, "Skip non-teaching rows")
	summaryCmd.Flags().Bool("pivot", false, "One row per instructor, one column per level")
	summaryCmd.Flags().String("csv", "", "Write the summary to this file or directory")
}

func runStreaks(cmd *cobra.Command, args []string) error {
	database, err := db.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	bookings := repository.NewBookingRepo(database)

	opts := report.StreakOptions{
		MinLen:  cfg.MinStreak,
		Workers: cfg.WorkerCount(),
	}
	opts.CurrentOnly, _ = cmd.Flags().GetBool("current")
	if minLen, _ := cmd.Flags().GetInt("min"); minLen > 0 {
		opts.MinLen = minLen
	}

	opts.From, opts.To, err = windowFlags(cmd, bookings)
	if err != nil {
		return err
	}

	r, err := report.BuildStreaks(cmd.Context(), bookings, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Window: %s to %s (min length %d)\n",
		r.From.Format(dateFlagLayout), r.To.Format(dateFlagLayout), r.MinLen)
	fmt.Printf("Total streaks: %d\n", r.Total)
	fmt.Printf("Longest streak: %d days\n", r.Longest)
	fmt.Printf("Average length: %.1f days\n\n", r.Avg)

	if len(r.Risks) == 0 {
		fmt.Println("No streaks found.")
	} else {
		fmt.Println(risksTable(r.Risks))
	}

	details, _ := cmd.Flags().GetBool("details")
	if details {
		for _, risk := range r.Risks {
			fmt.Printf("\n%s: %s / %s, %d days\n", risk.Instructor, risk.Level, risk.AgeBand, risk.StreakLen)
			for _, d := range r.Details(risk) {
				fmt.Printf("  %s  %s  %s\n", d.Date.Format(dateFlagLayout), d.Level, d.AgeBand)
			}
		}
	}

	path, _ := cmd.Flags().GetString("csv")
	if path == "" {
		return nil
	}
	if err := exportCSV(path, "streaks", func(w io.Writer) error {
		return report.WriteRisks(w, r.Risks)
	}); err != nil {
		return err
	}
	if details {
		return exportCSV(exportDir(path), "streak_days", func(w io.Writer) error {
			return report.WriteDays(w, streakDays(r))
		})
	}
	return nil
}

// streakDays lists the dominant days behind every flagged streak.
func streakDays(r *report.StreakReport) []models.DominantDay {
	var days []models.DominantDay
	for _, risk := range r.Risks {
		days = append(days, r.Details(risk)...)
	}
	return days
}

// windowFlags reads --from and --to, defaulting to the stored date span.
func windowFlags(cmd *cobra.Command, bookings *repository.BookingRepo) (time.Time, time.Time, error) {
	from, to, err := report.DefaultWindow(bookings)
	if err != nil {
		return from, to, err
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		if from, err = time.Parse(dateFlagLayout, v); err != nil {
			return from, to, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		if to, err = time.Parse(dateFlagLayout, v); err != nil {
			return from, to, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if from.After(to) {
		return from, to, report.ErrInvalidRange
	}
	return from, to, nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	database, err := db.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var filter repository.SummaryFilter
	if cmd.Flags().Changed("week") {
		week, _ := cmd.Flags().GetInt("week")
		filter.Week = &week
	}
	ageBand, _ := cmd.Flags().GetString("age-band")
	level, _ := cmd.Flags().GetString("level")
	category, _ := cmd.Flags().GetString("category")
	filter.AgeBand = models.AgeBand(ageBand)
	filter.Level = models.Level(level)
	filter.TaskCategory = models.TaskCategory(category)
	filter.TeachingOnly, _ = cmd.Flags().GetBool("teaching-only")

	rows, err := repository.NewBookingRepo(database).Summary(filter)
	if err != nil {
		return err
	}

	pivot, _ := cmd.Flags().GetBool("pivot")

	if len(rows) == 0 {
		fmt.Println("No rows match these filters.")
	} else if pivot {
		fmt.Println(pivotTable(report.NewPivot(rows)))
	} else {
		fmt.Println(summaryTable(rows))
	}

	path, _ := cmd.Flags().GetString("csv")
	if path == "" {
		return nil
	}
	if pivot {
		return exportCSV(path, "pivot", func(w io.Writer) error {
			return report.WritePivot(w, report.NewPivot(rows))
		})
	}
	return exportCSV(path, "summary", func(w io.Writer) error {
		return report.WriteSummary(w, rows)
	})
}

// exportDir is path itself when it is a directory, else its parent.
func exportDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// exportCSV writes to path, or to a timestamped file inside it when path is
// a directory.
func exportCSV(path, prefix string, write func(io.Writer) error) error {
	var f *os.File
	var err error
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		f, err = report.Create(path, prefix, time.Now())
	} else {
		f, err = os.Create(path)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	fmt.Printf("\nExported to %s\n", f.Name())
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func risksTable(risks []models.Risk) string {
	t := newTable("Severity", "Instructor", "Level", "Age band", "Days", "Start", "End", "Since end")
	for _, r := range risks {
		t.Row(
			r.Severity,
			r.Instructor,
			string(r.Level),
			string(r.AgeBand),
			strconv.Itoa(r.StreakLen),
			r.StartDate.Format(dateFlagLayout),
			r.EndDate.Format(dateFlagLayout),
			strconv.Itoa(r.DaysSinceEnd),
		)
	}
	return t.String()
}

func summaryTable(rows []models.SummaryRow) string {
	t := newTable("Instructor", "Age band", "Level", "Count")
	for _, r := range rows {
		t.Row(r.Instructor, string(r.AgeBand), string(r.Level), report.FormatCount(r.Count))
	}
	return t.String()
}

func pivotTable(p *report.Pivot) string {
	headers := []string{"Instructor"}
	for _, l := range p.Levels {
		headers = append(headers, string(l))
	}
	t := newTable(headers...)
	for _, r := range p.Rows {
		cells := []string{r.Instructor}
		for _, c := range r.Counts {
			cells = append(cells, report.FormatCount(c))
		}
		t.Row(cells...)
	}
	return t.String()
}
