package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Op names a mutation kind.
type Op string

const (
	OpAddGoal       Op = "add_goal"
	OpUpdateGoal    Op = "update_goal"
	OpUpdateSavings Op = "update_savings"
	OpDeleteGoal    Op = "delete_goal"
	OpAddMonth      Op = "add_month"
	OpDeleteMonth   Op = "delete_month"
	OpAddTask       Op = "add_task"
	OpToggleTask    Op = "toggle_task"
	OpDeleteTask    Op = "delete_task"
	OpAddSubGoal    Op = "add_subgoal"
	OpToggleSubGoal Op = "toggle_subgoal"
	OpDeleteSubGoal Op = "delete_subgoal"
	OpRefresh       Op = "refresh"
)

// EventKind is the lifecycle stage an Event reports.
type EventKind string

const (
	EventApplied    EventKind = "applied"
	EventCommitted  EventKind = "committed"
	EventRolledBack EventKind = "rolled_back"
	EventRefreshed  EventKind = "refreshed"
)

// Event is published after every state change.
type Event struct {
	Kind    EventKind `json:"kind"`
	Op      Op        `json:"op"`
	GoalID  string    `json:"goal_id,omitempty"`
	Version uint64    `json:"version"`
}

const subscriberBuffer = 32

// Subscribe returns a channel of state-change events and a function that
// cancels the subscription. Slow subscribers miss events rather than block
// the engine.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
		e.subMu.Unlock()
	}
}

func (e *Engine) publish(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// OutcomeStatus is the final state of one mutation.
type OutcomeStatus string

const (
	StatusCommitted  OutcomeStatus = "committed"
	StatusRolledBack OutcomeStatus = "rolled_back"
)

// Outcome is one journal entry.
type Outcome struct {
	Op       Op
	GoalID   string
	EntityID string
	Status   OutcomeStatus
	Error    string
	At       time.Time
}

// Recorder persists mutation outcomes.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// ErrInvalidMonth is returned by AddMonth for input rejected before any
// state change.
var ErrInvalidMonth = errors.New("invalid month")

// ErrInvalidType is returned by AddGoal for an unknown goal type.
var ErrInvalidType = errors.New("invalid goal type")

// MutationError reports a mutation the remote service rejected. State has
// already been rolled back when it is returned.
type MutationError struct {
	Op     Op
	GoalID string
	Err    error
}

func (e *MutationError) Error() string {
	if e.GoalID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on goal %s failed: %v", e.Op, e.GoalID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
