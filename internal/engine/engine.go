// Package engine owns the canonical goal and activity state and applies every
// mutation optimistically before confirming it with the remote service.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// Remote is the goal service the engine commits mutations to.
type Remote interface {
	ListGoals(ctx context.Context) ([]model.Goal, error)
	GetAnalytics(ctx context.Context) (model.AnalyticsFeed, error)
	CreateGoal(ctx context.Context, in NewGoal) (model.Goal, error)
	UpdateGoal(ctx context.Context, goalID string, edit GoalEdit) (model.Goal, error)
	DeleteGoal(ctx context.Context, goalID string) error
	AddMonth(ctx context.Context, goalID, name string, order int) (model.Month, error)
	DeleteMonth(ctx context.Context, goalID, monthID string) error
	AddTask(ctx context.Context, goalID, monthID, text string) (model.Task, error)
	ToggleTask(ctx context.Context, goalID, taskID string) (model.Task, error)
	DeleteTask(ctx context.Context, goalID, monthID, taskID string) error
	AddSubGoal(ctx context.Context, goalID, text string) (model.SubGoal, error)
	ToggleSubGoal(ctx context.Context, goalID, subGoalID string) (model.SubGoal, error)
	DeleteSubGoal(ctx context.Context, goalID, subGoalID string) error
}

// NewGoal is the input to AddGoal. Nil pointers mean "not provided".
type NewGoal struct {
	Title         string
	Description   string
	Type          model.GoalType
	Category      model.Category
	Year          *int
	TargetAmount  *float64
	CurrentAmount *float64
}

// GoalEdit is the input to UpdateGoal. The amounts only apply to savings
// goals; a nil CurrentAmount keeps the stored value.
type GoalEdit struct {
	Title         string
	Description   string
	Category      model.Category
	TargetAmount  *float64
	CurrentAmount *float64
}

// Snapshot is a consistent, deep-copied view of the engine state.
type Snapshot struct {
	Goals    []model.Goal
	Activity []model.DailyActivity
	Feed     model.AnalyticsFeed
	Version  uint64
}

// Engine is safe for concurrent use. Readers always receive copies.
type Engine struct {
	remote   Remote
	log      *slog.Logger
	now      func() time.Time
	ids      IDAllocator
	policy   RefreshPolicy
	recorder Recorder
	locks    *entityLocks

	mu       sync.RWMutex
	goals    []model.Goal
	activity []model.DailyActivity
	feed     model.AnalyticsFeed
	version  uint64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the time source used for default years and
// completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDAllocator overrides temporary ID generation.
func WithIDAllocator(a IDAllocator) Option {
	return func(e *Engine) { e.ids = a }
}

// WithRefreshPolicy decides which committed mutations re-fetch activity.
func WithRefreshPolicy(p RefreshPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRecorder journals every commit and rollback.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithEntityLocking serializes mutations that target the same goal. When
// disabled, overlapping mutations race and the last remote reply wins.
func WithEntityLocking(enabled bool) Option {
	return func(e *Engine) {
		if enabled {
			e.locks = newEntityLocks()
		} else {
			e.locks = nil
		}
	}
}

// New creates an engine with empty state. Call Refresh to load it.
func New(remote Remote, opts ...Option) *Engine {
	e := &Engine{
		remote:   remote,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		ids:      UUIDAllocator{},
		policy:   RefreshOnPositiveProgress,
		goals:    []model.Goal{},
		activity: []model.DailyActivity{},
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Goals returns a deep copy of the canonical goal list.
func (e *Engine) Goals() []model.Goal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.CloneGoals(e.goals)
}

// Goal returns a copy of one goal.
func (e *Engine) Goal(id string) (model.Goal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.goalIndexLocked(id)
	if i < 0 {
		return model.Goal{}, false
	}
	return e.goals[i].Clone(), true
}

// Activity returns a copy of the activity feed.
func (e *Engine) Activity() []model.DailyActivity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneActivity(e.activity)
}

// Snapshot returns goals, activity and version read under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	feed := e.feed
	feed.Activity = cloneActivity(e.activity)
	return Snapshot{
		Goals:    model.CloneGoals(e.goals),
		Activity: cloneActivity(e.activity),
		Feed:     feed,
		Version:  e.version,
	}
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

func cloneActivity(in []model.DailyActivity) []model.DailyActivity {
	if in == nil {
		return nil
	}
	out := make([]model.DailyActivity, len(in))
	copy(out, in)
	return out
}

// mutate runs fn under the write lock as one optimistic step. fn reports
// whether it changed anything; nothing is published when it did not.
func (e *Engine) mutate(op Op, goalID string, fn func() bool) bool {
	e.mu.Lock()
	if !fn() {
		e.mu.Unlock()
		return false
	}
	e.version++
	v := e.version
	e.mu.Unlock()

	e.publish(Event{Kind: EventApplied, Op: op, GoalID: goalID, Version: v})
	return true
}

// commit applies the authoritative result and journals the outcome.
func (e *Engine) commit(ctx context.Context, op Op, goalID, entityID string, fn func()) {
	e.mu.Lock()
	if fn != nil {
		fn()
	}
	e.version++
	v := e.version
	e.mu.Unlock()

	e.publish(Event{Kind: EventCommitted, Op: op, GoalID: goalID, Version: v})
	e.log.Debug("mutation committed", "op", op, "goal", goalID, "entity", entityID)
	e.record(ctx, Outcome{Op: op, GoalID: goalID, EntityID: entityID, Status: StatusCommitted})
}

// rollback restores the pre-mutation shape and returns the error to hand
// back to the caller.
func (e *Engine) rollback(ctx context.Context, op Op, goalID, entityID string, cause error, undo func()) error {
	e.mu.Lock()
	undo()
	e.version++
	v := e.version
	e.mu.Unlock()

	e.publish(Event{Kind: EventRolledBack, Op: op, GoalID: goalID, Version: v})
	e.log.Warn("mutation rolled back", "op", op, "goal", goalID, "entity", entityID, "err", cause)
	e.record(ctx, Outcome{
		Op:       op,
		GoalID:   goalID,
		EntityID: entityID,
		Status:   StatusRolledBack,
		Error:    cause.Error(),
	})
	return &MutationError{Op: op, GoalID: goalID, Err: cause}
}

func (e *Engine) record(ctx context.Context, o Outcome) {
	if e.recorder == nil {
		return
	}
	o.At = e.now()
	if err := e.recorder.Record(context.WithoutCancel(ctx), o); err != nil {
		e.log.Warn("journal write failed", "op", o.Op, "err", err)
	}
}

// afterCommit runs the refresh policy. A failed refresh never undoes the
// committed mutation.
func (e *Engine) afterCommit(ctx context.Context, ev ProgressEvent) {
	if e.policy == nil || !e.policy(ev) {
		return
	}
	if err := e.RefreshActivity(ctx); err != nil {
		e.log.Warn("activity refresh failed", "op", ev.Op, "goal", ev.GoalID, "err", err)
	}
}

func (e *Engine) goalIndexLocked(id string) int {
	for i := range e.goals {
		if e.goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) goalLocked(id string) *model.Goal {
	if i := e.goalIndexLocked(id); i >= 0 {
		return &e.goals[i]
	}
	return nil
}

func (e *Engine) planLocked(goalID string) *model.Plan {
	g := e.goalLocked(goalID)
	if g == nil {
		return nil
	}
	p, ok := g.Plan()
	if !ok {
		return nil
	}
	return p
}

func (e *Engine) monthLocked(goalID, monthID string) *model.Month {
	p := e.planLocked(goalID)
	if p == nil {
		return nil
	}
	for i := range p.Months {
		if p.Months[i].ID == monthID {
			return &p.Months[i]
		}
	}
	return nil
}

func (e *Engine) subGoalsLocked(goalID string) *model.SubGoalsPayload {
	g := e.goalLocked(goalID)
	if g == nil {
		return nil
	}
	s, ok := g.SubGoals()
	if !ok {
		return nil
	}
	return s
}

// replaceGoalLocked swaps the goal with the given ID for g. It reports
// whether a goal was replaced.
func (e *Engine) replaceGoalLocked(id string, g model.Goal) bool {
	if i := e.goalIndexLocked(id); i >= 0 {
		e.goals[i] = g
		return true
	}
	return false
}
