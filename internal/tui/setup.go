package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// SetupValues holds the answers of the first-run wizard.
type SetupValues struct {
	BaseURL string
	Token   string
	Theme   string
	Journal bool
}

// SetupValuesFrom seeds the wizard with the current config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Theme:   cfg.Appearance.Theme,
		Journal: cfg.Journal.Enabled,
	}
}

// Apply writes the answers onto cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.API.BaseURL = strings.TrimSpace(v.BaseURL)
	if tok := strings.TrimSpace(v.Token); tok != "" {
		cfg.API.Token = tok
	}
	cfg.Appearance.Theme = v.Theme
	cfg.Journal.Enabled = v.Journal
}

// NewSetupForm builds the setup wizard. It is shared by `yeargoals setup`
// and the dashboard's first run.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to yeargoals").
				Description("Plan the year, track the months.\nLet's connect to your goal server."),
			huh.NewInput().
				Title("Server URL").
				Placeholder("https://goals.example.com/api").
				Value(&v.BaseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("API token").
				Description("Leave blank to read it from $"+config.TokenEnv).
				EchoMode(huh.EchoModePassword).
				Value(&v.Token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Keep a local journal of changes?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.Journal),
		),
	)
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("server URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

// goalFormValues holds the add-goal form answers.
type goalFormValues struct {
	Title       string
	Description string
	Type        string
	Category    string
	Target      string
}

// newGoalForm builds the add-goal form.
func newGoalForm(v *goalFormValues) *huh.Form {
	types := []huh.Option[string]{
		huh.NewOption("Monthly plan", string(model.GoalPlan)),
		huh.NewOption("Checklist", string(model.GoalSubGoals)),
		huh.NewOption("Savings", string(model.GoalSavings)),
	}
	cats := make([]huh.Option[string], 0, len(model.Categories))
	for _, c := range model.Categories {
		cats = append(cats, huh.NewOption(c.Label, string(c.ID)))
	}
	if v.Type == "" {
		v.Type = string(model.GoalPlan)
	}
	if v.Category == "" {
		v.Category = string(model.CategoryOther)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&v.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&v.Description),
			huh.NewSelect[string]().
				Title("Type").
				Options(types...).
				Value(&v.Type),
			huh.NewSelect[string]().
				Title("Category").
				Options(cats...).
				Value(&v.Category),
			huh.NewInput().
				Title("Savings target").
				Description("Only used by savings goals").
				Value(&v.Target).
				Validate(func(s string) error {
					_, err := parseOptionalAmount(s)
					return err
				}),
		),
	)
}

// toNewGoal converts the answers for the given year.
func (v goalFormValues) toNewGoal(year int) (engine.NewGoal, error) {
	t, err := model.ParseGoalType(v.Type)
	if err != nil {
		return engine.NewGoal{}, err
	}
	in := engine.NewGoal{
		Title:       strings.TrimSpace(v.Title),
		Description: strings.TrimSpace(v.Description),
		Type:        t,
		Category:    model.NormalizeCategory(v.Category),
		Year:        &year,
	}
	if t == model.GoalSavings {
		target, err := parseOptionalAmount(v.Target)
		if err != nil {
			return engine.NewGoal{}, err
		}
		in.TargetAmount = target
	}
	return in, nil
}

func parseOptionalAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%q is not an amount", s)
	}
	return &v, nil
}
