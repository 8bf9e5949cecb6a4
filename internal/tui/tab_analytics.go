package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
	"github.com/theirongolddev/yeargoals/internal/tui/components"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

func (a App) renderAnalyticsTab(cw int) string {
	t := theme.Active
	an := a.analytics

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Goals", Value: fmt.Sprintf("%d", an.TotalGoals), Hint: fmt.Sprintf("%d done · %d active", an.CompletedGoals, an.InProgressGoals)},
		{Label: "Overall", Value: cli.FormatPercent(an.OverallProgress)},
		{Label: "Tasks", Value: cli.FormatRatio(an.CompletedTasks, an.TotalTasks)},
		{Label: "Streak", Value: fmt.Sprintf("%dd", an.CurrentStreak), Hint: fmt.Sprintf("best %dd", an.LongestStreak)},
	}, cw))
	b.WriteString("\n")

	half := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		half = []int{cw, cw}
	}

	monthly := components.ContentCard("Monthly plan completion", components.MonthBars(an.Months, 6), half[0])
	categories := components.ContentCard("By category", a.renderCategoryBreakdown(components.CardInnerWidth(half[1])), half[1])
	if a.isCompactLayout() {
		b.WriteString(monthly + "\n" + categories)
	} else {
		b.WriteString(components.CardRow([]string{monthly, categories}))
	}
	b.WriteString("\n")

	// Per-goal breakdown
	inner := components.CardInnerWidth(cw)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var rows []string
	for _, gp := range an.Goals {
		name := cli.Truncate(gp.Title, 28)
		rows = append(rows,
			lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(fmt.Sprintf("%-28s ", name))+
				components.ProgressBar(gp.Progress, max(inner-50, 10))+
				muted.Render(fmt.Sprintf("  %-8s %s", gp.Type, cli.FormatRatio(gp.CompletedTasks, gp.TotalTasks))))
	}
	if len(rows) == 0 {
		rows = append(rows, muted.Render("No goals in this year."))
	}
	b.WriteString(components.ContentCard("Goals", strings.Join(rows, "\n"), cw))
	return b.String()
}

func (a App) renderCategoryBreakdown(w int) string {
	t := theme.Active
	groups := pipeline.GroupByCategory(pipeline.FilterByYear(a.eng.Goals(), a.year))
	if len(groups) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No goals yet.")
	}

	var rows []string
	for _, g := range groups {
		info := g.Category.Info()
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Background(t.Surface).
			Render(fmt.Sprintf("%-20s", cli.Truncate(info.Label, 20)))
		count := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(fmt.Sprintf("%3d ", len(g.Goals)))
		rows = append(rows, label+count+components.ProgressBar(g.Progress, max(w-31, 4)))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderHeatmapTab(cw int) string {
	t := theme.Active
	hm := a.heatmap
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Tasks completed", Value: cli.FormatNumber(int64(hm.Total))},
		{Label: "Active days", Value: fmt.Sprintf("%d", a.analytics.ActiveDays)},
		{Label: "Best day", Value: fmt.Sprintf("%d", hm.Max)},
		{Label: "Current streak", Value: fmt.Sprintf("%dd", a.analytics.CurrentStreak)},
	}, cw))
	b.WriteString("\n")

	grid := components.HeatmapGrid(hm, pipeline.Level)
	body := grid + "\n\n" + components.Legend()
	if lipgloss.Width(grid) > components.CardInnerWidth(cw) {
		body = muted.Render("Widen the terminal to see the full year.") + "\n" + body
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Activity in %d", hm.Year), body, cw))
	return b.String()
}

// yearLabel describes the selected year relative to the ones with goals.
func yearLabel(year int, years []int) string {
	for _, y := range years {
		if y == year {
			return fmt.Sprintf("%d", year)
		}
	}
	return fmt.Sprintf("%d (no goals)", year)
}
