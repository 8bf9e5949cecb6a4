package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

var errNetwork = errors.New("network error")

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeRemote records calls and can fail or block every mutation.
type fakeRemote struct {
	mu    sync.Mutex
	goals []model.Goal
	feed  model.AnalyticsFeed
	calls map[string]int
	edits []GoalEdit

	fail         error        // returned by mutations when hold is nil
	analyticsErr error        // returned by GetAnalytics
	hold         chan pending // when set, each mutation parks here for its reply

	toggleCompleted bool
}

func newFakeRemote(goals ...model.Goal) *fakeRemote {
	return &fakeRemote{
		goals:           goals,
		calls:           make(map[string]int),
		toggleCompleted: true,
		feed: model.AnalyticsFeed{
			Activity:      []model.DailyActivity{{Date: "2026-03-01", TasksCompleted: 2}},
			CurrentStreak: 1,
		},
	}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// pending is a parked remote call waiting for the test to answer it.
type pending struct {
	op    string
	reply chan error
}

func (f *fakeRemote) call(op string) error {
	f.mu.Lock()
	f.calls[op]++
	hold, fail := f.hold, f.fail
	f.mu.Unlock()

	if hold != nil {
		p := pending{op: op, reply: make(chan error, 1)}
		hold <- p
		return <-p.reply
	}
	return fail
}

func (f *fakeRemote) ListGoals(context.Context) ([]model.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	return model.CloneGoals(f.goals), nil
}

func (f *fakeRemote) GetAnalytics(context.Context) (model.AnalyticsFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["analytics"]++
	if f.analyticsErr != nil {
		return model.AnalyticsFeed{}, f.analyticsErr
	}
	return f.feed, nil
}

func (f *fakeRemote) CreateGoal(_ context.Context, in NewGoal) (model.Goal, error) {
	if err := f.call("create_goal"); err != nil {
		return model.Goal{}, err
	}
	payload, _ := model.NewPayload(in.Type)
	if s, ok := payload.(*model.SavingsPayload); ok {
		s.TargetAmount = in.TargetAmount
		s.CurrentAmount = *in.CurrentAmount
	}
	if p, ok := payload.(*model.PlanPayload); ok {
		p.Plan.ID = "g-new"
	}
	return model.Goal{
		ID:        "g-new",
		Title:     in.Title,
		Year:      *in.Year,
		Category:  in.Category,
		CreatedAt: fixedNow,
		Payload:   payload,
	}, nil
}

func (f *fakeRemote) UpdateGoal(_ context.Context, goalID string, edit GoalEdit) (model.Goal, error) {
	f.mu.Lock()
	f.edits = append(f.edits, edit)
	f.mu.Unlock()
	if err := f.call("update_goal"); err != nil {
		return model.Goal{}, err
	}
	g := model.Goal{ID: goalID, Title: edit.Title, Description: edit.Description, Category: edit.Category, Year: 2026}
	if edit.CurrentAmount != nil || edit.TargetAmount != nil {
		s := &model.SavingsPayload{TargetAmount: edit.TargetAmount}
		if edit.CurrentAmount != nil {
			s.CurrentAmount = *edit.CurrentAmount
		}
		g.Payload = s
	} else {
		g.Payload = &model.SubGoalsPayload{}
	}
	return g, nil
}

func (f *fakeRemote) DeleteGoal(context.Context, string) error {
	return f.call("delete_goal")
}

func (f *fakeRemote) AddMonth(_ context.Context, _, name string, order int) (model.Month, error) {
	if err := f.call("add_month"); err != nil {
		return model.Month{}, err
	}
	return model.Month{ID: "m-" + name, Name: name, Order: order}, nil
}

func (f *fakeRemote) DeleteMonth(context.Context, string, string) error {
	return f.call("delete_month")
}

func (f *fakeRemote) AddTask(_ context.Context, _, _, text string) (model.Task, error) {
	if err := f.call("add_task"); err != nil {
		return model.Task{}, err
	}
	return model.Task{ID: "t-42", Text: text}, nil
}

func (f *fakeRemote) ToggleTask(_ context.Context, _, taskID string) (model.Task, error) {
	if err := f.call("toggle_task"); err != nil {
		return model.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Task{ID: taskID, Text: "server", Completed: f.toggleCompleted}, nil
}

func (f *fakeRemote) DeleteTask(context.Context, string, string, string) error {
	return f.call("delete_task")
}

func (f *fakeRemote) AddSubGoal(_ context.Context, _, text string) (model.SubGoal, error) {
	if err := f.call("add_subgoal"); err != nil {
		return model.SubGoal{}, err
	}
	return model.SubGoal{ID: "s-new", Text: text}, nil
}

func (f *fakeRemote) ToggleSubGoal(_ context.Context, _, subGoalID string) (model.SubGoal, error) {
	if err := f.call("toggle_subgoal"); err != nil {
		return model.SubGoal{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.SubGoal{ID: subGoalID, Text: "server", Completed: f.toggleCompleted}, nil
}

func (f *fakeRemote) DeleteSubGoal(context.Context, string, string) error {
	return f.call("delete_subgoal")
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return model.TempIDPrefix + string(rune('a'+s.n-1))
}

func f64(v float64) *float64 { return &v }

// seedGoals returns a plan goal, a subgoals goal and a savings goal.
func seedGoals() []model.Goal {
	done := fixedNow.AddDate(0, 0, -3)
	return []model.Goal{
		{
			ID: "g-plan", Title: "Read more", Year: 2026, Category: model.CategoryPersonalDevelopment,
			Payload: &model.PlanPayload{Plan: model.Plan{ID: "g-plan", Months: []model.Month{
				{ID: "m1", Name: "january", Order: 1, Tasks: []model.Task{
					{ID: "t1", Text: "Book one", Completed: true, CompletedAt: &done},
					{ID: "t2", Text: "Book two"},
				}},
				{ID: "m3", Name: "march", Order: 3},
			}}},
		},
		{
			ID: "g-sub", Title: "Fitness", Year: 2026, Category: model.CategorySport,
			Payload: &model.SubGoalsPayload{SubGoals: []model.SubGoal{
				{ID: "s1", Text: "Run 5k"},
				{ID: "s2", Text: "Swim", Completed: true, CompletedAt: &done},
			}},
		},
		{
			ID: "g-save", Title: "Emergency fund", Year: 2025, Category: model.CategoryFinance,
			Payload: &model.SavingsPayload{TargetAmount: f64(1000), CurrentAmount: 100},
		},
	}
}

func newTestEngine(t *testing.T, remote *fakeRemote, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithIDAllocator(&seqIDs{})}, opts...)
	e := New(remote, opts...)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return e
}

// waitCall blocks until a mutation reaches the fake remote.
func waitCall(t *testing.T, hold chan pending) pending {
	t.Helper()
	select {
	case p := <-hold:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote call")
		return pending{}
	}
}
