package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/tui"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// First run: ask for the server before anything tries to reach it
	if _, err := os.Stat(configPath()); os.IsNotExist(err) {
		saved, err := runSetupWizard()
		if err != nil {
			return err
		}
		if !saved {
			return nil
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	cfg := s.cfg
	if flagCategory != "" {
		cfg.General.Category = string(s.category())
	}

	app := tui.NewApp(s.eng, cfg).WithYear(flagYear).WithSaver(saveConfig)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
