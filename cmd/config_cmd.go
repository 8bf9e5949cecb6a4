package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := config.Path()
	if flagConfig != "" {
		path = flagConfig
	}
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Server:  %s\n", cfg.API.BaseURL)
	token := config.GetToken(cfg)
	switch {
	case token == "":
		fmt.Println("    Token:   not configured")
	case os.Getenv(config.TokenEnv) != "":
		fmt.Printf("    Token:   %s (from %s)\n", maskToken(token), config.TokenEnv)
	default:
		fmt.Printf("    Token:   %s\n", maskToken(token))
	}
	fmt.Printf("    Timeout: %s\n", cfg.API.Timeout())
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultYear > 0 {
		fmt.Printf("    Default year: %d\n", cfg.General.DefaultYear)
	} else {
		fmt.Println("    Default year: current")
	}
	if cfg.General.Category != "" {
		fmt.Printf("    Category:     %s\n", cfg.General.Category)
	}
	fmt.Println()

	fmt.Println("  [Engine]")
	fmt.Printf("    Per-goal locking:    %v\n", cfg.Engine.EntityLocking)
	fmt.Printf("    Refresh on progress: %v\n", cfg.Engine.RefreshOnProgress)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Journal]")
	fmt.Printf("    Enabled: %v\n", cfg.Journal.Enabled)
	fmt.Printf("    Path:    %s\n", cfg.Journal.JournalPath())
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Printf("    File:   %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Println()

	fmt.Println("  Run `yeargoals setup` to reconfigure.")
	return nil
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
