// Package cmd implements the yeargoals CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/yeargoals/internal/api"
	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/logging"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/store"
)

var (
	flagConfig    string
	flagYear      int
	flagCategory  string
	flagServer    string
	flagLogLevel  string
	flagQuiet     bool
	flagNoJournal bool
)

var rootCmd = &cobra.Command{
	Use:           "yeargoals",
	Short:         "Yearly goal tracker",
	Long:          "Track plan, checklist and savings goals for the year against your goals server.",
	RunE:          runList,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", friendlyError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Year to show (default from config, else current)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Goals API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoJournal, "no-journal", false, "Do not record mutation outcomes")
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if flagServer != "" {
		cfg.API.BaseURL = flagServer
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoJournal {
		cfg.Journal.Enabled = false
	}
	return cfg, nil
}

func saveConfig(cfg config.Config) error {
	if flagConfig != "" {
		return config.SaveFile(flagConfig, cfg)
	}
	return config.Save(cfg)
}

// session is the engine and its collaborators for one command run.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	eng     *engine.Engine
	journal *store.Journal

	closeLog func() error
}

// openSession wires config, logging, the API client, the journal and the
// engine. The caller must Close it.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.Open(cfg.Log)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: logger, closeLog: closeLog}

	client, err := api.NewClient(cfg.API.BaseURL, config.GetToken(cfg), cfg.API.Timeout())
	if err != nil {
		s.Close()
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithEntityLocking(cfg.Engine.EntityLocking),
	}
	if !cfg.Engine.RefreshOnProgress {
		opts = append(opts, engine.WithRefreshPolicy(engine.NeverRefresh))
	}

	if cfg.Journal.Enabled {
		j, err := store.Open(cfg.Journal.JournalPath())
		if err != nil {
			// The journal is optional; commands still work without it
			logger.Warn("journal unavailable", "path", cfg.Journal.JournalPath(), "err", err)
		} else {
			s.journal = j
			opts = append(opts, engine.WithRecorder(j))
		}
	}

	s.eng = engine.New(client, opts...)
	return s, nil
}

// Close releases the journal and the log file.
func (s *session) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.Warn("closing journal", "err", err)
		}
	}
	if s.closeLog != nil {
		_ = s.closeLog()
	}
}

// load refreshes the engine from the server.
func (s *session) load(ctx context.Context) error {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading goals from %s...\n", s.cfg.API.BaseURL)
	}
	return s.eng.Refresh(ctx)
}

// year resolves --year, the configured default, then the current year.
func (s *session) year() int {
	if flagYear > 0 {
		return flagYear
	}
	return s.cfg.General.Year(s.eng.Now())
}

// category resolves --category, then the configured filter. Empty means all.
func (s *session) category() model.Category {
	c := flagCategory
	if c == "" {
		c = s.cfg.General.Category
	}
	if c == "" || c == "all" {
		return ""
	}
	return model.NormalizeCategory(c)
}

// withSession opens a session, loads state and runs fn.
func withSession(fn func(ctx context.Context, s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.load(ctx); err != nil {
		return err
	}
	return fn(ctx, s)
}

// friendlyError turns API failures into something a user can act on.
func friendlyError(err error) string {
	var status *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "the server rejected the token; run `yeargoals setup` or set " + config.TokenEnv
	case errors.Is(err, api.ErrNoBaseURL):
		return "no server configured; run `yeargoals setup`"
	case errors.Is(err, api.ErrNetwork):
		return "could not reach the goals server (" + err.Error() + ")"
	case errors.As(err, &status):
		return status.Error()
	}
	return err.Error()
}
