// Package tui provides the interactive Bubble Tea dashboard for yeargoals.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/yeargoals/internal/cli"
	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/pipeline"
	"github.com/theirongolddev/yeargoals/internal/tui/components"
	"github.com/theirongolddev/yeargoals/internal/tui/theme"
)

// refreshedMsg is sent when a full reload from the server finishes.
type refreshedMsg struct {
	err error
}

// eventMsg carries one engine event into the update loop.
type eventMsg engine.Event

// eventsClosedMsg is sent when the engine subscription ends.
type eventsClosedMsg struct{}

// mutationMsg reports the final outcome of one mutation.
type mutationMsg struct {
	label string
	err   error
}

const (
	tabGoals = iota
	tabAnalytics
	tabHeatmap
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	eng    *engine.Engine
	cfg    config.Config
	events <-chan engine.Event
	stop   func()

	saveConfig func(config.Config) error

	// Derived from the latest engine snapshot
	goals     []model.Goal // current year, category filtered
	years     []int
	analytics model.Analytics
	heatmap   model.HeatmapLayout
	loaded    bool
	lastSync  time.Time

	year int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	list     goalsState
	settings settingsState
	prompt   promptState

	goalForm *huh.Form
	goalVals *goalFormValues

	spinner    spinner.Model
	pending    int
	refreshing bool
	status     string
	statusErr  bool
}

// NewApp creates the dashboard over an engine. The engine's subscription
// is held until the program exits.
func NewApp(eng *engine.Engine, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	events, stop := eng.Subscribe()

	a := App{
		eng:        eng,
		cfg:        cfg,
		events:     events,
		stop:       stop,
		saveConfig: config.Save,
		year:       cfg.General.Year(eng.Now()),
		spinner:    sp,
		refreshing: true,
	}
	a.list.category = categoryFilter(cfg.General.Category)
	return a
}

// WithYear starts the dashboard on year instead of the configured one.
func (a App) WithYear(year int) App {
	if year > 0 {
		a.year = year
	}
	return a
}

// WithSaver replaces how settings changes are persisted.
func (a App) WithSaver(save func(config.Config) error) App {
	if save != nil {
		a.saveConfig = save
	}
	return a
}

func categoryFilter(s string) model.Category {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return model.NormalizeCategory(s)
}

// Close releases the engine subscription.
func (a App) Close() {
	if a.stop != nil {
		a.stop()
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		refreshCmd(a.eng),
		waitForEvent(a.events),
	)
}

// sync re-reads the engine and recomputes everything the tabs show.
func (a *App) sync() {
	goals := a.eng.Goals()
	activity := a.eng.Activity()
	now := a.eng.Now()

	a.years = pipeline.Years(goals, now.Year())
	a.goals = pipeline.FilterByCategory(pipeline.FilterByYear(goals, a.year), a.list.category)
	a.analytics = pipeline.Analyze(goals, activity, a.year, now)
	a.heatmap = pipeline.Heatmap(activity, a.year)
	a.list.clamp(a.goals)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.goalForm != nil {
			a.goalForm = a.goalForm.WithWidth(min(msg.Width, 70)).WithHeight(msg.Height)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refreshedMsg:
		a.refreshing = false
		a.loaded = true
		if msg.err != nil {
			a.setStatus("refresh failed: "+msg.err.Error(), true)
		} else {
			a.lastSync = time.Now()
		}
		a.sync()
		return a, nil

	case eventMsg:
		a.sync()
		return a, waitForEvent(a.events)

	case eventsClosedMsg:
		return a, nil

	case mutationMsg:
		a.pending = max(a.pending-1, 0)
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
		} else {
			a.setStatus(msg.label, false)
		}
		a.sync()
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.goalForm != nil || a.prompt.active() {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabGoals {
				a.list.move(-1, a.goals)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabGoals {
				a.list.move(1, a.goals)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	if a.goalForm != nil {
		return a.updateGoalForm(msg)
	}
	if a.prompt.active() {
		var cmd tea.Cmd
		a.prompt.input, cmd = a.prompt.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// Modal input intercepts all keys
	if a.goalForm != nil {
		return a.updateGoalForm(msg)
	}
	if a.prompt.active() {
		return a.updatePrompt(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		if a.activeTab == tabGoals && a.list.detail {
			a.list.detail = false
			return a, nil
		}
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(refreshCmd(a.eng), a.spinner.Tick)
	case "[":
		a.year--
		a.list.reset()
		a.sync()
		return a, nil
	case "]":
		a.year++
		a.list.reset()
		a.sync()
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	switch a.activeTab {
	case tabGoals:
		if m, cmd, ok := a.updateGoalsKey(key); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKey(key); ok {
			return m, cmd
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateGoalForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.goalForm = nil
		return a, nil
	}

	form, cmd := a.goalForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.goalForm = f
	}

	switch a.goalForm.State {
	case huh.StateCompleted:
		vals := *a.goalVals
		a.goalForm, a.goalVals = nil, nil
		in, err := vals.toNewGoal(a.year)
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		return a, a.run("added "+in.Title, func(ctx context.Context) error {
			_, err := a.eng.AddGoal(ctx, in)
			return err
		})
	case huh.StateAborted:
		a.goalForm, a.goalVals = nil, nil
		return a, nil
	}
	return a, cmd
}

// run starts a mutation in the background. The optimistic change is
// already visible through the engine's applied event.
func (a *App) run(label string, fn func(ctx context.Context) error) tea.Cmd {
	a.pending++
	return func() tea.Msg {
		return mutationMsg{label: label, err: fn(context.Background())}
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func refreshCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: eng.Refresh(context.Background())}
	}
}

func waitForEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.goalForm != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.TextMuted).
		Render(fmt.Sprintf("Terminal too narrow (%d cols, need %d)", a.width, minTerminalWidth))
	return lipgloss.Place(a.width, max(a.height, 5), lipgloss.Center, lipgloss.Center, msg)
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(
			lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render("yeargoals") + "\n\n" +
				a.spinner.View() +
				lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" Loading goals..."))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).
			Render(fmt.Sprintf("New goal for %d", a.year)) + "\n\n" + a.goalForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")

	groups := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"g a h x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"Enter", "Open goal"},
			{"Esc", "Back"},
			{"[ ]", "Previous / Next year"},
		}},
		{"Goals", [][2]string{
			{"n", "New goal"},
			{"Space", "Toggle task or subgoal"},
			{"i", "Add task or subgoal"},
			{"m", "Add month"},
			{"+ -", "Deposit / Withdraw"},
			{"d", "Delete selection"},
			{"c", "Cycle category filter"},
		}},
		{"General", [][2]string{
			{"r", "Refresh from server"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(section.Render(g.name))
		b.WriteString("\n")
		for _, bind := range g.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", bind[0])), desc.Render(bind[1]))
		}
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	synced := ""
	if !a.lastSync.IsZero() {
		synced = cli.FormatAgo(a.lastSync, time.Now())
	}
	statusBar := components.RenderStatusBar(w, components.Status{
		Year:       a.year,
		Pending:    a.pending,
		Refreshing: a.refreshing,
		Message:    a.status,
		IsError:    a.statusErr,
		Synced:     synced,
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabGoals:
		content = a.renderGoalsTab(cw, contentH)
	case tabAnalytics:
		content = a.renderAnalyticsTab(cw)
	case tabHeatmap:
		content = a.renderHeatmapTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
