package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/calendon/internal/storage"
	"github.com/vovakirdan/calendon/internal/systems/stats"
)

var (
	flagDBPath  string
	flagLimit   int
	flagPayload string
	flagClear   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recorded runs",
	Long: `Display the most recent runs recorded with --stats-db.

Examples:
  calendon runs
  calendon runs --payload bounce --limit 5
  calendon runs --db ./runs.db --clear`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&flagDBPath, "db", stats.DefaultDB, "Path to the run statistics database")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of runs to show")
	runsCmd.Flags().StringVar(&flagPayload, "payload", "", "Only show runs of this payload")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded runs")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(); err != nil {
			return fmt.Errorf("clearing runs: %w", err)
		}
		fmt.Println("All runs deleted.")
		return nil
	}

	runs, err := store.RecentRuns(flagPayload, flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run with '--stats-db " + flagDBPath + "' to record one.")
		return nil
	}

	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			r.ID[:8],
			r.Payload,
			humanize.Comma(int64(r.Ticks)),
			humanize.Comma(int64(r.Frames)),
			humanize.Comma(int64(r.Dropped)),
			fmt.Sprint(r.Reloads),
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprint(r.ExitCode),
			humanize.Time(r.CreatedAt),
		}
	}
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Payload", Width: width(rows, 1, 7)},
		{Title: "Ticks", Width: width(rows, 2, 5)},
		{Title: "Frames", Width: width(rows, 3, 6)},
		{Title: "Dropped", Width: width(rows, 4, 7)},
		{Title: "Reloads", Width: 7},
		{Title: "Duration", Width: width(rows, 6, 8)},
		{Title: "Exit", Width: 4},
		{Title: "When", Width: width(rows, 8, 4)},
	}
	fmt.Println(renderTable(columns, rows))
	return nil
}
