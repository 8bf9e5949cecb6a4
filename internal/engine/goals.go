package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// AddGoal prepends a temporary goal, creates it remotely and replaces the
// temporary entry with the server's goal. The created goal is in state
// exactly once afterwards, even if a refresh replaced the list meanwhile.
func (e *Engine) AddGoal(ctx context.Context, in NewGoal) (model.Goal, error) {
	payload, err := model.NewPayload(in.Type)
	if err != nil {
		return model.Goal{}, fmt.Errorf("%w: %v", ErrInvalidType, err)
	}

	now := e.now()
	if in.Year == nil {
		y := now.Year()
		in.Year = &y
	}
	in.Category = model.NormalizeCategory(string(in.Category))
	if in.Type == model.GoalSavings {
		if in.CurrentAmount == nil {
			zero := 0.0
			in.CurrentAmount = &zero
		}
	} else {
		in.TargetAmount, in.CurrentAmount = nil, nil
	}

	tempID := e.ids.Next()
	switch p := payload.(type) {
	case *model.PlanPayload:
		p.Plan.ID = tempID
	case *model.SavingsPayload:
		if in.TargetAmount != nil {
			v := *in.TargetAmount
			p.TargetAmount = &v
		}
		p.CurrentAmount = *in.CurrentAmount
	}
	temp := model.Goal{
		ID:          tempID,
		Title:       in.Title,
		Description: in.Description,
		Year:        *in.Year,
		Category:    in.Category,
		CreatedAt:   now,
		Payload:     payload,
	}

	e.mutate(OpAddGoal, tempID, func() bool {
		e.goals = slices.Insert(e.goals, 0, temp)
		return true
	})

	created, err := e.remote.CreateGoal(ctx, in)
	if err != nil {
		return model.Goal{}, e.rollback(ctx, OpAddGoal, "", tempID, err, func() {
			e.goals = drop(e.goals, goalKey, tempID)
		})
	}

	created = model.Normalize(created)
	e.commit(ctx, OpAddGoal, created.ID, created.ID, func() {
		e.goals = settle(e.goals, goalKey, tempID, created.Clone(), true)
	})
	return created, nil
}

// UpdateGoal edits a goal's fields. A rejected update restores the exact
// prior goal.
func (e *Engine) UpdateGoal(ctx context.Context, goalID string, edit GoalEdit) (model.Goal, error) {
	unlock := e.lockEntity(goalID)
	defer unlock()

	edit.Category = model.NormalizeCategory(string(edit.Category))

	var original model.Goal
	applied := e.mutate(OpUpdateGoal, goalID, func() bool {
		g := e.goalLocked(goalID)
		if g == nil {
			return false
		}
		original = g.Clone()
		g.Title = edit.Title
		g.Description = edit.Description
		g.Category = edit.Category
		if s, ok := g.Savings(); ok {
			s.TargetAmount = cloneAmount(edit.TargetAmount)
			if edit.CurrentAmount != nil {
				s.CurrentAmount = *edit.CurrentAmount
			}
		} else {
			edit.TargetAmount, edit.CurrentAmount = nil, nil
		}
		return true
	})
	if !applied {
		return model.Goal{}, nil
	}

	updated, err := e.remote.UpdateGoal(ctx, goalID, edit)
	if err != nil {
		return model.Goal{}, e.rollback(ctx, OpUpdateGoal, goalID, goalID, err, func() {
			e.replaceGoalLocked(goalID, original)
		})
	}

	updated = model.Normalize(updated)
	e.commit(ctx, OpUpdateGoal, goalID, goalID, func() {
		e.replaceGoalLocked(goalID, updated.Clone())
	})
	return updated, nil
}

// UpdateSavingsAmount adds delta (negative to withdraw) to a savings goal's
// current amount. It is a no-op for unknown or non-savings goals.
func (e *Engine) UpdateSavingsAmount(ctx context.Context, goalID string, delta float64) error {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var (
		original model.Goal
		edit     GoalEdit
	)
	applied := e.mutate(OpUpdateSavings, goalID, func() bool {
		g := e.goalLocked(goalID)
		if g == nil {
			return false
		}
		s, ok := g.Savings()
		if !ok {
			return false
		}
		original = g.Clone()
		s.CurrentAmount += delta
		current := s.CurrentAmount
		edit = GoalEdit{
			Title:         g.Title,
			Description:   g.Description,
			Category:      g.Category,
			TargetAmount:  cloneAmount(s.TargetAmount),
			CurrentAmount: &current,
		}
		return true
	})
	if !applied {
		return nil
	}

	updated, err := e.remote.UpdateGoal(ctx, goalID, edit)
	if err != nil {
		return e.rollback(ctx, OpUpdateSavings, goalID, goalID, err, func() {
			e.replaceGoalLocked(goalID, original)
		})
	}

	updated = model.Normalize(updated)
	e.commit(ctx, OpUpdateSavings, goalID, goalID, func() {
		e.replaceGoalLocked(goalID, updated)
	})
	e.afterCommit(ctx, ProgressEvent{Op: OpUpdateSavings, GoalID: goalID, Positive: delta > 0})
	return nil
}

// DeleteGoal removes a goal. A rejected delete puts it back at its previous
// position.
func (e *Engine) DeleteGoal(ctx context.Context, goalID string) error {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var (
		removed model.Goal
		index   int
	)
	applied := e.mutate(OpDeleteGoal, goalID, func() bool {
		index = e.goalIndexLocked(goalID)
		if index < 0 {
			return false
		}
		removed = e.goals[index]
		e.goals = slices.Delete(e.goals, index, index+1)
		return true
	})
	if !applied {
		return nil
	}

	if err := e.remote.DeleteGoal(ctx, goalID); err != nil {
		return e.rollback(ctx, OpDeleteGoal, goalID, goalID, err, func() {
			e.goals = restore(e.goals, goalKey, index, removed)
		})
	}

	e.commit(ctx, OpDeleteGoal, goalID, goalID, func() {
		e.goals = drop(e.goals, goalKey, goalID)
	})
	return nil
}

func cloneAmount(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
