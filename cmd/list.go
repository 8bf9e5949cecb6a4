package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the year's goals grouped by category",
	RunE:  runList,
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Summarize every year that has goals",
	RunE:  runYears,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(yearsCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		year := s.year()
		goals := pipeline.FilterByCategory(pipeline.FilterByYear(s.eng.Goals(), year), s.category())

		if len(goals) == 0 {
			fmt.Printf("\n  No goals for %d.\n", year)
			fmt.Println("  Add one with `yeargoals goal add \"Title\" --type plan`.")
			return nil
		}

		sum := pipeline.SummarizeYear(year, goals)
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("GOALS  %d", year)))
		fmt.Printf("  %d goals · %d completed · %s average\n\n",
			sum.Goals, sum.Completed, cli.FormatPercent(sum.AverageProgress))

		for _, group := range pipeline.GroupByCategory(goals) {
			info := group.Category.Info()
			fmt.Printf("  %s  %s\n", cli.CategoryStyle(group.Category).Bold(true).Render(info.Label),
				cli.FormatPercent(group.Progress))

			rows := make([][]string, 0, len(group.Goals))
			for _, g := range group.Goals {
				total, done := model.TaskCounts(g)
				rows = append(rows, []string{
					cli.Truncate(g.Title, 32),
					string(g.Type()),
					cli.RenderProgressBar(model.Progress(g), 16),
					goalCounts(g, done, total),
					g.ID,
				})
			}
			fmt.Print(cli.RenderTable(cli.Table{
				Headers: []string{"Goal", "Type", "Progress", "Done", "ID"},
				Rows:    rows,
			}))
			fmt.Println()
		}
		return nil
	})
}

// goalCounts describes a goal's completion in its own units.
func goalCounts(g model.Goal, done, total int) string {
	if s, ok := g.Savings(); ok {
		if s.TargetAmount == nil {
			return cli.FormatAmount(s.CurrentAmount)
		}
		return cli.FormatAmount(s.CurrentAmount) + " / " + cli.FormatAmount(*s.TargetAmount)
	}
	return cli.FormatRatio(done, total)
}

func runYears(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		goals := pipeline.FilterByCategory(s.eng.Goals(), s.category())
		byYear := pipeline.GoalsByYear(goals)

		rows := [][]string{}
		for _, y := range pipeline.Years(goals, s.eng.Now().Year()) {
			sum := pipeline.SummarizeYear(y, byYear[y])
			rows = append(rows, []string{
				fmt.Sprintf("%d", y),
				cli.FormatNumber(int64(sum.Goals)),
				cli.FormatNumber(int64(sum.Completed)),
				cli.RenderProgressBar(sum.AverageProgress, 20),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Years",
			Headers: []string{"Year", "Goals", "Completed", "Average"},
			Rows:    rows,
		}))
		return nil
	})
}
