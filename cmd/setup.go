package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	saved, err := runSetupWizard()
	if err != nil {
		return err
	}
	if !saved {
		fmt.Println("  Setup canceled, nothing saved.")
		return nil
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", configPath())
	fmt.Println("  Run `yeargoals setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// runSetupWizard asks for the server, token, theme and journal settings and
// saves them. saved is false when the user aborted.
func runSetupWizard() (saved bool, err error) {
	cfg, _ := loadConfig()
	vals := tui.SetupValuesFrom(cfg)

	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("setup form: %w", err)
	}

	vals.Apply(&cfg)
	if err := saveConfig(cfg); err != nil {
		return false, fmt.Errorf("saving config: %w", err)
	}
	return true, nil
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}
