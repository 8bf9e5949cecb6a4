package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/yeargoals/internal/config"
	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
	"github.com/theirongolddev/yeargoals/internal/tui/components"
)

// stubRemote serves two goals and answers mutations with fixed results.
type stubRemote struct {
	mu   sync.Mutex
	fail error
}

var _ engine.Remote = (*stubRemote)(nil)

func (s *stubRemote) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *stubRemote) ListGoals(context.Context) ([]model.Goal, error) {
	return []model.Goal{
		{ID: "g-plan", Title: "Read", Year: 2026, Category: model.CategoryPersonalDevelopment,
			Payload: &model.PlanPayload{Plan: model.Plan{ID: "g-plan", Months: []model.Month{
				{ID: "m1", Name: "january", Order: 1, Tasks: []model.Task{{ID: "t1", Text: "Book"}}},
			}}}},
		{ID: "g-sub", Title: "Gym", Year: 2026, Category: model.CategorySport,
			Payload: &model.SubGoalsPayload{SubGoals: []model.SubGoal{{ID: "s1", Text: "Join"}}}},
	}, nil
}

func (s *stubRemote) GetAnalytics(context.Context) (model.AnalyticsFeed, error) {
	return model.AnalyticsFeed{Activity: []model.DailyActivity{{Date: "2026-03-13", TasksCompleted: 2}}}, nil
}

func (s *stubRemote) CreateGoal(_ context.Context, in engine.NewGoal) (model.Goal, error) {
	p, _ := model.NewPayload(in.Type)
	return model.Goal{ID: "g-new", Title: in.Title, Year: *in.Year, Category: in.Category, Payload: p}, s.err()
}

func (s *stubRemote) UpdateGoal(context.Context, string, engine.GoalEdit) (model.Goal, error) {
	return model.Goal{}, s.err()
}

func (s *stubRemote) DeleteGoal(context.Context, string) error { return s.err() }

func (s *stubRemote) AddMonth(_ context.Context, _ string, name string, order int) (model.Month, error) {
	return model.Month{ID: "m-" + name, Name: name, Order: order}, s.err()
}

func (s *stubRemote) DeleteMonth(context.Context, string, string) error { return s.err() }

func (s *stubRemote) AddTask(_ context.Context, _, _ string, text string) (model.Task, error) {
	return model.Task{ID: "t-new", Text: text}, s.err()
}

func (s *stubRemote) ToggleTask(_ context.Context, _ string, taskID string) (model.Task, error) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return model.Task{ID: taskID, Text: "Book", Completed: true, CompletedAt: &now}, s.err()
}

func (s *stubRemote) DeleteTask(context.Context, string, string, string) error { return s.err() }

func (s *stubRemote) AddSubGoal(_ context.Context, _ string, text string) (model.SubGoal, error) {
	return model.SubGoal{ID: "s-new", Text: text}, s.err()
}

func (s *stubRemote) ToggleSubGoal(_ context.Context, _ string, id string) (model.SubGoal, error) {
	return model.SubGoal{ID: id, Text: "Join", Completed: true}, s.err()
}

func (s *stubRemote) DeleteSubGoal(context.Context, string, string) error { return s.err() }

func newTestApp(t *testing.T, remote *stubRemote) (App, *engine.Engine) {
	t.Helper()
	eng := engine.New(remote, engine.WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}), engine.WithRefreshPolicy(engine.NeverRefresh))

	a := NewApp(eng, config.DefaultConfig())
	a.saveConfig = func(config.Config) error { return nil }
	t.Cleanup(a.Close)

	if err := eng.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return update(t, a, refreshedMsg{}), eng
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and returns the new model with the command it produced.
func press(t *testing.T, a App, k string) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(key(k))
	return m.(App), cmd
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("tabAtX past the bar = %d, want -1", got)
		}
	}
}

func TestLoadFiltersCurrentYear(t *testing.T) {
	a, _ := newTestApp(t, &stubRemote{})
	if !a.loaded || a.refreshing {
		t.Fatalf("loaded = %v, refreshing = %v", a.loaded, a.refreshing)
	}
	if len(a.goals) != 2 || a.year != 2026 {
		t.Fatalf("goals = %d year = %d, want 2 in 2026", len(a.goals), a.year)
	}

	a, _ = press(t, a, "[")
	if a.year != 2025 || len(a.goals) != 0 {
		t.Fatalf("after [: year = %d goals = %d", a.year, len(a.goals))
	}
	if a.analytics.Year != 2025 || a.heatmap.Year != 2025 {
		t.Fatalf("derived year = %d/%d, want 2025", a.analytics.Year, a.heatmap.Year)
	}
}

func TestToggleTaskCommits(t *testing.T) {
	a, eng := newTestApp(t, &stubRemote{})

	a, _ = press(t, a, "enter") // open Read
	a, _ = press(t, a, "j")     // month -> task
	if it, ok := a.selectedItem(); !ok || it.id != "t1" {
		t.Fatalf("selected item = %+v", it)
	}

	a, cmd := press(t, a, " ")
	if cmd == nil || a.pending != 1 {
		t.Fatalf("cmd = %v pending = %d", cmd, a.pending)
	}
	a = update(t, a, cmd())
	if a.pending != 0 || a.statusErr {
		t.Fatalf("pending = %d status = %q", a.pending, a.status)
	}

	g, _ := eng.Goal("g-plan")
	plan, _ := g.Plan()
	if !plan.Months[0].Tasks[0].Completed {
		t.Fatal("task not completed after commit")
	}
	if it, _ := a.selectedItem(); !it.done {
		t.Fatal("view not synced with engine")
	}
}

func TestToggleFailureRollsBack(t *testing.T) {
	remote := &stubRemote{}
	a, eng := newTestApp(t, remote)
	remote.fail = errors.New("server down")

	a, _ = press(t, a, "enter")
	a, _ = press(t, a, "j")
	a, cmd := press(t, a, " ")
	a = update(t, a, cmd())

	if !a.statusErr || !strings.Contains(a.status, "server down") {
		t.Fatalf("status = %q err = %v", a.status, a.statusErr)
	}
	g, _ := eng.Goal("g-plan")
	plan, _ := g.Plan()
	if plan.Months[0].Tasks[0].Completed {
		t.Fatal("task still completed after rollback")
	}
}

func TestAddSubGoalPrompt(t *testing.T) {
	a, eng := newTestApp(t, &stubRemote{})

	a, _ = press(t, a, "j") // Gym
	a, _ = press(t, a, "i")
	if !a.prompt.active() || a.prompt.kind != promptSubGoal {
		t.Fatalf("prompt = %+v", a.prompt.kind)
	}
	a, _ = press(t, a, "Walk")
	a, cmd := press(t, a, "enter")
	if a.prompt.active() || cmd == nil {
		t.Fatal("enter should close the prompt and start the mutation")
	}
	a = update(t, a, cmd())

	g, _ := eng.Goal("g-sub")
	subs, _ := g.SubGoals()
	if len(subs.SubGoals) != 2 || subs.SubGoals[1].Text != "Walk" || subs.SubGoals[1].ID != "s-new" {
		t.Fatalf("subgoals = %+v", subs.SubGoals)
	}
	if a.status != "added Walk" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestMonthPromptRejectsUnknownMonth(t *testing.T) {
	a, _ := newTestApp(t, &stubRemote{})
	a, _ = press(t, a, "m")
	if a.prompt.kind != promptMonth {
		t.Fatalf("prompt kind = %v, want month", a.prompt.kind)
	}
	a, _ = press(t, a, "smarch")
	a, cmd := press(t, a, "enter")
	if cmd != nil || !a.statusErr {
		t.Fatalf("cmd = %v status = %q", cmd, a.status)
	}
}

func TestCategoryFilterCycles(t *testing.T) {
	a, _ := newTestApp(t, &stubRemote{})
	a, _ = press(t, a, "c")
	if a.list.category != model.CategoryPersonalDevelopment || len(a.goals) != 1 {
		t.Fatalf("category = %q goals = %d", a.list.category, len(a.goals))
	}
	if got := nextCategory(model.CategoryOther); got != "" {
		t.Fatalf("nextCategory(Other) = %q, want all", got)
	}
}

func TestSettingsToggleSaves(t *testing.T) {
	a, _ := newTestApp(t, &stubRemote{})
	var saved config.Config
	a.saveConfig = func(c config.Config) error { saved = c; return nil }

	a, _ = press(t, a, "x")
	if a.activeTab != tabSettings {
		t.Fatalf("activeTab = %d", a.activeTab)
	}
	a, _ = press(t, a, "j")
	a, _ = press(t, a, "j") // entity locking
	a, _ = press(t, a, "enter")
	if !saved.Engine.EntityLocking || !a.settings.saved {
		t.Fatalf("saved = %+v flag = %v", saved.Engine, a.settings.saved)
	}
}

func TestGoalItems(t *testing.T) {
	g := model.Goal{Payload: &model.PlanPayload{Plan: model.Plan{Months: []model.Month{
		{ID: "m1", Name: "january", Order: 1, Tasks: []model.Task{{ID: "t1"}, {ID: "t2", Completed: true}}},
		{ID: "m2", Name: "february", Order: 2},
	}}}}
	items := goalItems(g)
	kinds := []itemKind{itemMonth, itemTask, itemTask, itemMonth}
	if len(items) != len(kinds) {
		t.Fatalf("items = %d, want %d", len(items), len(kinds))
	}
	for i, k := range kinds {
		if items[i].kind != k {
			t.Fatalf("item %d kind = %v, want %v", i, items[i].kind, k)
		}
	}
	if items[1].monthID != "m1" || !items[2].done || items[0].text != "January" {
		t.Fatalf("items = %+v", items)
	}

	if n := len(goalItems(model.Goal{Payload: &model.SavingsPayload{}})); n != 0 {
		t.Fatalf("savings items = %d, want 0", n)
	}
}

func TestGoalFormValues(t *testing.T) {
	v := goalFormValues{Title: " Fund ", Type: "savings", Category: "finance", Target: "1,500"}
	in, err := v.toNewGoal(2026)
	if err != nil {
		t.Fatalf("toNewGoal: %v", err)
	}
	if in.Title != "Fund" || in.Category != model.CategoryFinance || *in.Year != 2026 {
		t.Fatalf("NewGoal = %+v", in)
	}
	if in.TargetAmount == nil || *in.TargetAmount != 1500 {
		t.Fatalf("TargetAmount = %v", in.TargetAmount)
	}

	v = goalFormValues{Title: "x", Type: "savings", Target: "lots"}
	if _, err := v.toNewGoal(2026); err == nil {
		t.Fatal("bad target accepted")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a, _ := newTestApp(t, &stubRemote{})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 40})
	for tab := range components.Tabs {
		a.activeTab = tab
		if out := a.View(); !strings.Contains(out, "Goals") {
			t.Fatalf("tab %d view missing tab bar", tab)
		}
	}
	a.showHelp = true
	if out := a.View(); !strings.Contains(out, "Keyboard Shortcuts") {
		t.Fatal("help view missing title")
	}
}
