package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/store"
)

var (
	flagHistoryLimit int
	flagHistoryPrune int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent committed and rolled back changes",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().IntVar(&flagHistoryPrune, "prune-days", 0, "Delete entries older than this many days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return errors.New("the change journal is disabled; enable it with `yeargoals setup`")
	}

	j, err := store.Open(cfg.Journal.JournalPath())
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	ctx := context.Background()
	now := time.Now()

	if flagHistoryPrune > 0 {
		n, err := j.Prune(ctx, now.AddDate(0, 0, -flagHistoryPrune))
		if err != nil {
			return err
		}
		fmt.Printf("  Pruned %d entries older than %d days\n", n, flagHistoryPrune)
	}

	entries, err := j.Recent(ctx, flagHistoryLimit)
	if err != nil {
		return err
	}
	counts, err := j.Counts(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("\n  No changes recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := string(e.Status)
		if e.Status == engine.StatusRolledBack {
			status = "rolled back"
		}
		rows = append(rows, []string{
			cli.FormatAgo(e.At, now),
			string(e.Op),
			status,
			e.GoalID,
			cli.Truncate(e.Error, 40),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "History",
		Headers: []string{"When", "Change", "Status", "Goal", "Error"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %d committed · %d rolled back · %s\n",
		counts[engine.StatusCommitted], counts[engine.StatusRolledBack], cfg.Journal.JournalPath())
	return nil
}
