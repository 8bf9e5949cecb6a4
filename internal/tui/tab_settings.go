package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/tui/components"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldCategory
	settingsFieldEntityLocking
	settingsFieldRefreshOnProgress
	settingsFieldJournal
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	saved   bool  // flash "saved" after a change
	saveErr error // non-nil if the last save failed
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
		return a, nil, true
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
		return a, nil, true
	case "enter", " ", "space":
		a.settingsCycle()
		return a, nil, true
	}
	return a, nil, false
}

// settingsCycle advances the selected field to its next value and saves.
func (a *App) settingsCycle() {
	cfg := a.cfg

	switch a.settings.cursor {
	case settingsFieldTheme:
		names := theme.Names()
		next := names[0]
		for i, n := range names {
			if n == cfg.Appearance.Theme && i+1 < len(names) {
				next = names[i+1]
			}
		}
		cfg.Appearance.Theme = next
		theme.SetActive(next)
	case settingsFieldCategory:
		c := nextCategory(categoryFilter(cfg.General.Category))
		cfg.General.Category = string(c)
		a.list.category = c
		a.list.reset()
	case settingsFieldEntityLocking:
		cfg.Engine.EntityLocking = !cfg.Engine.EntityLocking
	case settingsFieldRefreshOnProgress:
		cfg.Engine.RefreshOnProgress = !cfg.Engine.RefreshOnProgress
	case settingsFieldJournal:
		cfg.Journal.Enabled = !cfg.Journal.Enabled
	}

	a.cfg = cfg
	a.settings.saveErr = a.saveConfig(cfg)
	a.settings.saved = a.settings.saveErr == nil
	a.sync()
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	category := "all"
	if c := categoryFilter(cfg.General.Category); c != "" {
		category = c.Info().Label
	}

	fields := []struct {
		label, value, note string
	}{
		{"Theme", cfg.Appearance.Theme, ""},
		{"Category filter", category, ""},
		{"Per-goal locking", onOff(cfg.Engine.EntityLocking), "next start"},
		{"Refresh on progress", onOff(cfg.Engine.RefreshOnProgress), "next start"},
		{"Change journal", onOff(cfg.Journal.Enabled), "next start"},
	}

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	note := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for i, f := range fields {
		marker := "  "
		ls, vs := label, value
		if i == a.settings.cursor {
			marker = "▸ "
			ls = ls.Foreground(t.Accent).Background(t.SurfaceHover)
			vs = vs.Bold(true).Background(t.SurfaceHover)
		}
		b.WriteString(ls.Render(fmt.Sprintf("%s%-22s", marker, f.label)))
		b.WriteString(vs.Render(f.value))
		if f.note != "" {
			b.WriteString(note.Render("  (" + f.note + ")"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case a.settings.saveErr != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("Could not save: " + a.settings.saveErr.Error()))
	case a.settings.saved:
		b.WriteString(lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).
			Render("Saved to " + config.Path()))
	default:
		b.WriteString(note.Render("Enter to change · server " + cfg.API.BaseURL))
	}

	return components.ContentCard("Settings", b.String(), cw) + "\n" +
		components.ContentCard("Categories", categoryLegend(), cw)
}

func categoryLegend() string {
	t := theme.Active
	var parts []string
	for _, c := range model.Categories {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Background(t.Surface).Render("● "+c.Label))
	}
	return strings.Join(parts, "  ")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
