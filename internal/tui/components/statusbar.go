package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// Status is what the bottom bar reports.
type Status struct {
	Year       int
	Pending    int    // mutations awaiting the server
	Refreshing bool
	Message    string // last error or notice
	IsError    bool
	Synced     string // age of the last refresh
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := base.Render(" [?]help  [q]uit  ") + accent.Render(fmt.Sprintf("%d", s.Year))
	if s.Message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
		if s.IsError {
			msgStyle = msgStyle.Foreground(t.Red)
		}
		left += base.Render("  ") + msgStyle.Render(s.Message)
	}

	var right string
	switch {
	case s.Refreshing:
		right = accent.Render("↻ syncing ")
	case s.Pending > 0:
		right = lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).
			Render(fmt.Sprintf("%d pending ", s.Pending))
	case s.Synced != "":
		right = base.Render("synced " + s.Synced + " ")
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + base.Render(fmt.Sprintf("%*s", gap, "")) + right)
}
