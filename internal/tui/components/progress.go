package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// ProgressBar renders a goal's progress in its tier colour followed by the
// percentage.
func ProgressBar(pct, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 100)

	bar := progress.New(
		progress.WithSolidFill(string(t.Tier(pct))),
		progress.WithWidth(max(width, 1)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	label := lipgloss.NewStyle().Foreground(t.Tier(pct)).Background(t.Surface).Bold(true).
		Render(fmt.Sprintf("%4d%%", pct))
	return bar.ViewAs(float64(pct)/100) + label
}
