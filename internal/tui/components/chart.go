package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// MonthBars renders the 12 monthly completion buckets as vertical bars of
// the given height, one column of three cells per month.
func MonthBars(months []model.MonthBucket, height int) string {
	t := theme.Active
	height = max(height, 2)
	bg := lipgloss.NewStyle().Background(t.Surface)

	var rows []string
	for level := height; level >= 1; level-- {
		var b strings.Builder
		for _, m := range months {
			filled := 0
			if m.Total > 0 {
				filled = (m.Percentage*height + 99) / 100
			}
			cell := "   "
			if m.Total > 0 && filled >= level {
				cell = lipgloss.NewStyle().Foreground(t.Tier(m.Percentage)).Background(t.Surface).Render("██") + bg.Render(" ")
			} else if level == 1 {
				cell = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("▁▁") + bg.Render(" ")
			} else {
				cell = bg.Render(cell)
			}
			b.WriteString(cell)
		}
		rows = append(rows, b.String())
	}

	var labels strings.Builder
	for _, m := range months {
		labels.WriteString(time.Month(m.Order).String()[:2] + " ")
	}
	rows = append(rows, lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(labels.String()))
	return strings.Join(rows, "\n")
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := min(max(int(v/peak*float64(len(blocks)-1)), 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// Legend renders "Less ■■■■■ More" in the heatmap colours.
func Legend() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var b strings.Builder
	b.WriteString(muted.Render("Less "))
	for _, c := range t.Heatmap {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Background(t.Surface).Render("■ "))
	}
	b.WriteString(muted.Render("More"))
	return b.String()
}

// HeatmapGrid renders a year's activity calendar with month labels above
// and weekday labels on the left.
func HeatmapGrid(layout model.HeatmapLayout, level func(int) int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface).Render("  ")

	var header strings.Builder
	header.WriteString(muted.Render("    "))
	for _, span := range layout.Months {
		w := span.Weeks * 2
		label := span.Month.String()[:3]
		if w <= len(label) {
			label = label[:max(w-1, 0)]
		}
		header.WriteString(muted.Render(fmt.Sprintf("%-*s", w, label)))
	}

	rows := []string{header.String()}
	days := []string{"", "Mon", "", "Wed", "", "Fri", ""}
	for d := 0; d < 7; d++ {
		var b strings.Builder
		b.WriteString(muted.Render(fmt.Sprintf("%-4s", days[d])))
		for _, week := range layout.Weeks {
			lvl := level(week[d].Count)
			if lvl < 0 {
				b.WriteString(blank)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(t.HeatLevel(lvl)).Background(t.Surface).Render("■ "))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}
