package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"habitflow/internal/analytics"
	"habitflow/internal/handler"
	"habitflow/internal/model"
	"habitflow/internal/store"
)

var (
	reportHabitsFile string
	reportLogsFile   string
	reportTZ         string
	reportFrom       string
	reportTo         string
	reportJSON       bool

	// now is swapped in tests.
	now = time.Now
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute streaks, progress and a heatmap from exported records",
	Long: `Reads a JSON array of habits and a JSON array of logs, as returned by the API,
and prints the same analytics the dashboard shows. No database or network access.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportHabitsFile, "habits", "", "path to habits JSON")
	reportCmd.Flags().StringVar(&reportLogsFile, "logs", "", "path to logs JSON")
	reportCmd.Flags().StringVar(&reportTZ, "tz", "Local", "IANA time zone for calendar days")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first heatmap day (YYYY-MM-DD), default January 1st")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last heatmap day (YYYY-MM-DD), default today")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	_ = reportCmd.MarkFlagRequired("habits")
	_ = reportCmd.MarkFlagRequired("logs")
}

type reportOutput struct {
	Today    civil.Date
	Streak   int
	Progress float64
	Report   analytics.Report
}

func runReport(cmd *cobra.Command, args []string) error {
	var habits []model.Habit
	if err := readJSONFile(reportHabitsFile, &habits); err != nil {
		return err
	}
	var logs []model.HabitLog
	if err := readJSONFile(reportLogsFile, &logs); err != nil {
		return err
	}

	loc, err := loadLocation(reportTZ)
	if err != nil {
		return err
	}
	engine := analytics.New(analytics.WithLocation(loc), analytics.WithClock(now))

	from, to, err := reportRange(engine, reportFrom, reportTo)
	if err != nil {
		return err
	}

	st := store.New()
	st.SetHabits(habits)
	st.SetLogs(logs)
	out := buildReport(engine, st.Snapshot(), from, to)

	w := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.NewReportResponse(out.Report))
	}
	return printReport(w, out)
}

func buildReport(engine *analytics.Engine, snap store.Snapshot, from, to civil.Date) reportOutput {
	heatmap := engine.Heatmap(snap.Logs, snap.Habits, from, to)
	return reportOutput{
		Today:    engine.Today(),
		Streak:   engine.CurrentStreak(snap.Logs),
		Progress: engine.DayProgress(snap.Logs, snap.Habits),
		Report:   engine.BuildReport(snap, heatmap),
	}
}

func reportRange(engine *analytics.Engine, fromRaw, toRaw string) (civil.Date, civil.Date, error) {
	from, to := engine.YearStart(), engine.Today()
	if fromRaw != "" {
		d, err := civil.ParseDate(fromRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from %q: %w", fromRaw, err)
		}
		from = d
	}
	if toRaw != "" {
		d, err := civil.ParseDate(toRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to %q: %w", toRaw, err)
		}
		to = d
	}
	return from, to, nil
}

func printReport(w io.Writer, out reportOutput) error {
	fmt.Fprintf(w, "Day:      %s\n", out.Today)
	fmt.Fprintf(w, "Streak:   %d\n", out.Streak)
	fmt.Fprintf(w, "Progress: %.0f%%\n\n", out.Progress)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HABIT\tSTREAK\tDONE\tLOGS\tRATE")
	for _, h := range out.Report.Habits {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f%%\n", h.Title, h.Streak, h.Completed, h.Total, h.Rate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var tiers [5]int
	active := 0
	for _, d := range out.Report.Heatmap {
		tiers[handler.IntensityTier(d.Intensity)]++
		if d.Count > 0 {
			active++
		}
	}
	fmt.Fprintf(w, "\nHeatmap:  %d days, %d with completions\n", len(out.Report.Heatmap), active)
	fmt.Fprintf(w, "Tiers:    0=%d 1=%d 2=%d 3=%d 4=%d\n", tiers[0], tiers[1], tiers[2], tiers[3], tiers[4])

	for _, r := range out.Report.Reflections {
		note := r.Notes
		if note == "" {
			note = "-"
		}
		fmt.Fprintf(w, "Reflect:  %s (%s)\n", r.Habit.Title, note)
	}
	return nil
}

func readJSONFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", name, err)
	}
	return loc, nil
}
