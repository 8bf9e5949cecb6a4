package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// GoalType discriminates the payload a Goal carries.
type GoalType string

const (
	GoalPlan     GoalType = "plan"
	GoalSubGoals GoalType = "subgoals"
	GoalSavings  GoalType = "savings"
)

// GoalTypes lists every known goal type in display order.
var GoalTypes = []GoalType{GoalPlan, GoalSubGoals, GoalSavings}

// ErrUnknownGoalType is returned by ParseGoalType for anything outside GoalTypes.
var ErrUnknownGoalType = errors.New("unknown goal type")

// ParseGoalType converts a user or wire string into a GoalType.
func ParseGoalType(s string) (GoalType, error) {
	t := GoalType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range GoalTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGoalType, s)
}

// TempIDPrefix marks identifiers allocated locally before the server has
// confirmed an entity. Server-assigned IDs never start with it.
const TempIDPrefix = "temp_"

// IsTemporaryID reports whether id was allocated locally.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Goal is the root tracked entity. Exactly one payload kind is attached,
// selected by Payload; Type is derived from it.
type Goal struct {
	ID          string
	Title       string
	Description string
	Year        int
	Category    Category
	CreatedAt   time.Time
	Payload     Payload
}

// Payload is the variant-specific body of a Goal. It is implemented only by
// *PlanPayload, *SubGoalsPayload and *SavingsPayload.
type Payload interface {
	goalType() GoalType
	clone() Payload
}

// PlanPayload is the body of a plan goal.
type PlanPayload struct {
	Plan Plan
}

// SubGoalsPayload is the body of a subgoals goal.
type SubGoalsPayload struct {
	SubGoals []SubGoal
}

// SavingsPayload is the body of a savings goal. TargetAmount is nil when the
// user never set one.
type SavingsPayload struct {
	TargetAmount  *float64
	CurrentAmount float64
}

func (*PlanPayload) goalType() GoalType     { return GoalPlan }
func (*SubGoalsPayload) goalType() GoalType { return GoalSubGoals }
func (*SavingsPayload) goalType() GoalType  { return GoalSavings }

func (p *PlanPayload) clone() Payload {
	return &PlanPayload{Plan: p.Plan.Clone()}
}

func (p *SubGoalsPayload) clone() Payload {
	return &SubGoalsPayload{SubGoals: CloneSubGoals(p.SubGoals)}
}

func (p *SavingsPayload) clone() Payload {
	c := &SavingsPayload{CurrentAmount: p.CurrentAmount}
	if p.TargetAmount != nil {
		v := *p.TargetAmount
		c.TargetAmount = &v
	}
	return c
}

// Type returns the goal's discriminator, or "" when no payload is attached.
func (g Goal) Type() GoalType {
	if g.Payload == nil {
		return ""
	}
	return g.Payload.goalType()
}

// Plan narrows the goal to its plan. The returned pointer aliases the goal's
// payload.
func (g Goal) Plan() (*Plan, bool) {
	p, ok := g.Payload.(*PlanPayload)
	if !ok || p == nil {
		return nil, false
	}
	return &p.Plan, true
}

// SubGoals narrows the goal to its checklist payload.
func (g Goal) SubGoals() (*SubGoalsPayload, bool) {
	p, ok := g.Payload.(*SubGoalsPayload)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// Savings narrows the goal to its savings payload.
func (g Goal) Savings() (*SavingsPayload, bool) {
	p, ok := g.Payload.(*SavingsPayload)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// Clone returns a deep copy that shares no mutable memory with g.
func (g Goal) Clone() Goal {
	c := g
	if g.Payload != nil {
		c.Payload = g.Payload.clone()
	}
	return c
}

// CloneGoals deep-copies a goal list. A nil input stays nil.
func CloneGoals(goals []Goal) []Goal {
	if goals == nil {
		return nil
	}
	out := make([]Goal, len(goals))
	for i, g := range goals {
		out[i] = g.Clone()
	}
	return out
}

// Plan is the month-by-month body of a plan goal.
type Plan struct {
	ID     string
	Months []Month
}

// Clone deep-copies the plan.
func (p Plan) Clone() Plan {
	c := Plan{ID: p.ID}
	if p.Months != nil {
		c.Months = make([]Month, len(p.Months))
		for i, m := range p.Months {
			c.Months[i] = m.Clone()
		}
	}
	return c
}

// Month groups tasks under a calendar month. Name is a month key and Order
// is 1..12.
type Month struct {
	ID    string
	Name  string
	Order int
	Tasks []Task
}

// Clone deep-copies the month.
func (m Month) Clone() Month {
	c := m
	if m.Tasks != nil {
		c.Tasks = make([]Task, len(m.Tasks))
		for i, t := range m.Tasks {
			c.Tasks[i] = t.Clone()
		}
	}
	return c
}

// Task is a checklist item inside a Month.
type Task struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *time.Time
}

// Clone deep-copies the task.
func (t Task) Clone() Task {
	t.CompletedAt = cloneTime(t.CompletedAt)
	return t
}

// SubGoal is a checklist item on a subgoals goal.
type SubGoal struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *time.Time
}

// Clone deep-copies the sub-goal.
func (s SubGoal) Clone() SubGoal {
	s.CompletedAt = cloneTime(s.CompletedAt)
	return s
}

// CloneSubGoals deep-copies a sub-goal list. A nil input stays nil.
func CloneSubGoals(in []SubGoal) []SubGoal {
	if in == nil {
		return nil
	}
	out := make([]SubGoal, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Normalize returns a copy of g whose checklist slices are non-nil, so that
// an emptied list and a never-filled list compare equal, and whose months
// are ordered.
func Normalize(g Goal) Goal {
	g = g.Clone()
	switch p := g.Payload.(type) {
	case *PlanPayload:
		if p.Plan.Months == nil {
			p.Plan.Months = []Month{}
		}
		for i := range p.Plan.Months {
			p.Plan.Months[i] = NormalizeMonth(p.Plan.Months[i])
		}
		slices.SortStableFunc(p.Plan.Months, func(a, b Month) int { return cmp.Compare(a.Order, b.Order) })
	case *SubGoalsPayload:
		if p.SubGoals == nil {
			p.SubGoals = []SubGoal{}
		}
	}
	return g
}

// NormalizeMonth gives m a non-nil task list.
func NormalizeMonth(m Month) Month {
	if m.Tasks == nil {
		m.Tasks = []Task{}
	}
	return m
}

// NewPayload returns an empty payload for the given type.
func NewPayload(t GoalType) (Payload, error) {
	switch t {
	case GoalPlan:
		return &PlanPayload{Plan: Plan{Months: []Month{}}}, nil
	case GoalSubGoals:
		return &SubGoalsPayload{SubGoals: []SubGoal{}}, nil
	case GoalSavings:
		return &SavingsPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGoalType, t)
	}
}

// Validate checks the structural invariants of a goal.
func Validate(g Goal) error {
	if g.Payload == nil {
		return fmt.Errorf("goal %s: missing payload", g.ID)
	}
	plan, ok := g.Plan()
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(plan.Months))
	for _, m := range plan.Months {
		if m.Order < 1 || m.Order > 12 {
			return fmt.Errorf("goal %s: month %s has order %d outside 1..12", g.ID, m.Name, m.Order)
		}
		if seen[m.Name] {
			return fmt.Errorf("goal %s: duplicate month %s", g.ID, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}
