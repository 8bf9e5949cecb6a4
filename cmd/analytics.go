package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Year progress, monthly completion and streaks",
	RunE:  runAnalytics,
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Activity calendar for the year",
	RunE:  runHeatmap,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(heatmapCmd)
}

func runAnalytics(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		snap := s.eng.Snapshot()
		goals := pipeline.FilterByCategory(snap.Goals, s.category())
		a := pipeline.Analyze(goals, snap.Activity, s.year(), s.eng.Now())

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("ANALYTICS  %d", a.Year)))
		fmt.Println()

		if a.TotalGoals == 0 {
			fmt.Printf("  No goals for %d.\n", a.Year)
			return nil
		}

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Goals", cli.FormatNumber(int64(a.TotalGoals))},
				{"Completed", cli.FormatNumber(int64(a.CompletedGoals))},
				{"In progress", cli.FormatNumber(int64(a.InProgressGoals))},
				{"Overall", cli.RenderProgressBar(a.OverallProgress, 20)},
				{"---"},
				{"Tasks", cli.FormatRatio(a.CompletedTasks, a.TotalTasks)},
				{"Active days", cli.FormatNumber(int64(a.ActiveDays))},
				{"Completions", cli.FormatNumber(int64(a.TasksDone))},
				{"---"},
				{"Current streak", fmt.Sprintf("%d days", a.CurrentStreak)},
				{"Longest streak", fmt.Sprintf("%d days", a.LongestStreak)},
			},
		}))

		fmt.Println()
		fmt.Println("  Monthly plan completion")
		fmt.Print(cli.RenderMonthHistogram(a.Months, 24))

		fmt.Println()
		rows := make([][]string, 0, len(a.Goals))
		for _, g := range a.Goals {
			rows = append(rows, []string{
				cli.Truncate(g.Title, 32),
				cli.CategoryStyle(g.Category).Render(g.Category.Info().Label),
				cli.RenderProgressBar(g.Progress, 16),
				cli.FormatRatio(g.CompletedTasks, g.TotalTasks),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Goal", "Category", "Progress", "Done"},
			Rows:    rows,
		}))
		return nil
	})
}

func runHeatmap(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		year := s.year()
		layout := pipeline.Heatmap(s.eng.Activity(), year)

		values := make([]float64, 0, 12)
		monthly := make(map[int]int, 12)
		for _, week := range layout.Weeks {
			for _, d := range week {
				if d.InYear() {
					monthly[int(d.Date.Month())] += d.Count
				}
			}
		}
		for m := 1; m <= 12; m++ {
			values = append(values, float64(monthly[m]))
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("ACTIVITY  %d", year)))
		fmt.Println()
		fmt.Print(cli.RenderHeatmap(layout))
		fmt.Println()
		fmt.Printf("  %s completions · busiest day %d · by month %s\n",
			cli.FormatNumber(int64(layout.Total)), layout.Max, cli.RenderSparkline(values))
		return nil
	})
}
