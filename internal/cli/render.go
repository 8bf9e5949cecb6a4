package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// HeatmapColors are the five intensity levels, empty first.
var HeatmapColors = [5]lipgloss.Color{
	lipgloss.Color("#282726"),
	lipgloss.Color("#1F3A1C"),
	lipgloss.Color("#3D5F1E"),
	lipgloss.Color("#66800B"),
	lipgloss.Color("#879A39"),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	doneStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// TierColor returns the colour for a progress value.
func TierColor(progress int) lipgloss.Color {
	switch pipeline.TierFor(progress) {
	case pipeline.TierDone:
		return ColorGreen
	case pipeline.TierHigh:
		return ColorBlue
	case pipeline.TierMedium:
		return ColorYellow
	default:
		return ColorOrange
	}
}

// CategoryStyle renders text in a category's colour.
func CategoryStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Info().Color))
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row made of
// the single cell "---" draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + padRight(h, widths[i]) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// First column left-aligned, the rest right-aligned.
			if i == 0 {
				cell = padRight(cell, widths[i])
			} else {
				cell = padLeft(cell, widths[i])
			}
			b.WriteString(valueStyle.Render(" " + cell + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

func padRight(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// RenderProgressBar renders a percentage bar coloured by progress tier.
func RenderProgressBar(progress, width int) string {
	progress = min(max(progress, 0), 100)
	filled := progress * width / 100

	bar := lipgloss.NewStyle().Foreground(TierColor(progress)).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %4s", bar, FormatPercent(progress))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	top := values[0]
	for _, v := range values[1:] {
		top = max(top, v)
	}
	if top == 0 {
		top = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / top * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderGoalDetail renders a goal's payload: months and tasks for a plan,
// the checklist for subgoals, and the balance for savings.
func RenderGoalDetail(g model.Goal) string {
	var b strings.Builder
	check := func(done bool) string {
		if done {
			return doneStyle.Render("[x]")
		}
		return mutedStyle.Render("[ ]")
	}

	switch g.Type() {
	case model.GoalPlan:
		plan, _ := g.Plan()
		if len(plan.Months) == 0 {
			b.WriteString(mutedStyle.Render("  no months yet") + "\n")
		}
		for _, m := range plan.Months {
			total, done := model.PlanTaskCounts(model.Plan{Months: []model.Month{m}})
			fmt.Fprintf(&b, "  %s %s  %s\n",
				headerStyle.Render(model.MonthLabel(m.Name)),
				mutedStyle.Render(FormatRatio(done, total)),
				dimStyle.Render(m.ID))
			for _, t := range m.Tasks {
				fmt.Fprintf(&b, "    %s %s  %s\n", check(t.Completed), t.Text, dimStyle.Render(t.ID))
			}
		}
	case model.GoalSubGoals:
		subs, _ := g.SubGoals()
		if len(subs.SubGoals) == 0 {
			b.WriteString(mutedStyle.Render("  no subgoals yet") + "\n")
		}
		for _, s := range subs.SubGoals {
			fmt.Fprintf(&b, "  %s %s  %s\n", check(s.Completed), s.Text, dimStyle.Render(s.ID))
		}
	case model.GoalSavings:
		s, _ := g.Savings()
		if s.TargetAmount != nil {
			fmt.Fprintf(&b, "  %s / %s\n", FormatAmount(s.CurrentAmount), FormatAmount(*s.TargetAmount))
		} else {
			fmt.Fprintf(&b, "  %s saved, no target\n", FormatAmount(s.CurrentAmount))
		}
	}
	return b.String()
}

// RenderHeatmap renders the activity calendar: a month header, then one
// row per weekday with a cell per week.
func RenderHeatmap(layout model.HeatmapLayout) string {
	const cell = "■ "
	var b strings.Builder

	b.WriteString("     ")
	for _, span := range layout.Months {
		label := span.Month.String()[:3]
		w := span.Weeks * 2
		if w < len(label)+1 {
			label = label[:max(w-1, 0)]
		}
		b.WriteString(mutedStyle.Render(padRight(label, w)))
	}
	b.WriteString("\n")

	for day := 0; day < 7; day++ {
		label := ""
		if day%2 == 1 {
			label = FormatDayOfWeek(day)
		}
		b.WriteString(mutedStyle.Render(padRight(label, 5)))
		for _, week := range layout.Weeks {
			d := week[day]
			lvl := pipeline.Level(d.Count)
			if lvl < 0 {
				b.WriteString("  ")
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(HeatmapColors[lvl]).Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n     " + mutedStyle.Render("Less "))
	for _, c := range HeatmapColors {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(cell))
	}
	b.WriteString(mutedStyle.Render("More"))
	b.WriteString("\n")
	return b.String()
}

// RenderMonthHistogram renders the 12 monthly completion buckets as bars.
func RenderMonthHistogram(months []model.MonthBucket, width int) string {
	var b strings.Builder
	for _, m := range months {
		label := time.Month(m.Order).String()[:3]
		if m.Total == 0 {
			fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(label), dimStyle.Render(strings.Repeat("·", width)))
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mutedStyle.Render(label),
			RenderProgressBar(m.Percentage, width), mutedStyle.Render(FormatRatio(m.Completed, m.Total)))
	}
	return b.String()
}
