package engine

import (
	"context"
	"slices"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// AddSubGoal appends a temporary sub-goal to a subgoals goal.
func (e *Engine) AddSubGoal(ctx context.Context, goalID, text string) (model.SubGoal, error) {
	unlock := e.lockEntity(goalID)
	defer unlock()

	tempID := e.ids.Next()
	applied := e.mutate(OpAddSubGoal, goalID, func() bool {
		s := e.subGoalsLocked(goalID)
		if s == nil {
			return false
		}
		s.SubGoals = append(s.SubGoals, model.SubGoal{ID: tempID, Text: text})
		return true
	})
	if !applied {
		return model.SubGoal{}, nil
	}

	sub, err := e.remote.AddSubGoal(ctx, goalID, text)
	if err != nil {
		return model.SubGoal{}, e.rollback(ctx, OpAddSubGoal, goalID, tempID, err, func() {
			if s := e.subGoalsLocked(goalID); s != nil {
				s.SubGoals = drop(s.SubGoals, subGoalKey, tempID)
			}
		})
	}

	e.commit(ctx, OpAddSubGoal, goalID, sub.ID, func() {
		if s := e.subGoalsLocked(goalID); s != nil {
			s.SubGoals = settle(s.SubGoals, subGoalKey, tempID, sub.Clone(), false)
		}
	})
	return sub, nil
}

// ToggleSubGoal flips a sub-goal's completion, restoring the captured value
// if the remote rejects it.
func (e *Engine) ToggleSubGoal(ctx context.Context, goalID, subGoalID string) (model.SubGoal, error) {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var original model.SubGoal
	applied := e.mutate(OpToggleSubGoal, goalID, func() bool {
		sg := e.subGoalLocked(goalID, subGoalID)
		if sg == nil {
			return false
		}
		original = sg.Clone()
		sg.Completed, sg.CompletedAt = flip(sg.Completed, e.now())
		return true
	})
	if !applied {
		return model.SubGoal{}, nil
	}

	sub, err := e.remote.ToggleSubGoal(ctx, goalID, subGoalID)
	if err != nil {
		return model.SubGoal{}, e.rollback(ctx, OpToggleSubGoal, goalID, subGoalID, err, func() {
			if sg := e.subGoalLocked(goalID, subGoalID); sg != nil {
				sg.Completed = original.Completed
				sg.CompletedAt = original.CompletedAt
			}
		})
	}

	e.commit(ctx, OpToggleSubGoal, goalID, subGoalID, func() {
		if s := e.subGoalsLocked(goalID); s != nil {
			replaceSubGoal(s.SubGoals, subGoalID, sub)
		}
	})
	e.afterCommit(ctx, ProgressEvent{Op: OpToggleSubGoal, GoalID: goalID, Positive: sub.Completed})
	return sub, nil
}

// DeleteSubGoal removes a sub-goal, restoring it in place on rejection.
func (e *Engine) DeleteSubGoal(ctx context.Context, goalID, subGoalID string) error {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var (
		removed model.SubGoal
		index   int
	)
	applied := e.mutate(OpDeleteSubGoal, goalID, func() bool {
		s := e.subGoalsLocked(goalID)
		if s == nil {
			return false
		}
		index = slices.IndexFunc(s.SubGoals, func(sg model.SubGoal) bool { return sg.ID == subGoalID })
		if index < 0 {
			return false
		}
		removed = s.SubGoals[index]
		s.SubGoals = slices.Delete(s.SubGoals, index, index+1)
		return true
	})
	if !applied {
		return nil
	}

	if err := e.remote.DeleteSubGoal(ctx, goalID, subGoalID); err != nil {
		return e.rollback(ctx, OpDeleteSubGoal, goalID, subGoalID, err, func() {
			if s := e.subGoalsLocked(goalID); s != nil {
				s.SubGoals = restore(s.SubGoals, subGoalKey, index, removed)
			}
		})
	}

	e.commit(ctx, OpDeleteSubGoal, goalID, subGoalID, func() {
		if s := e.subGoalsLocked(goalID); s != nil {
			s.SubGoals = drop(s.SubGoals, subGoalKey, subGoalID)
		}
	})
	return nil
}

func (e *Engine) subGoalLocked(goalID, subGoalID string) *model.SubGoal {
	s := e.subGoalsLocked(goalID)
	if s == nil {
		return nil
	}
	for i := range s.SubGoals {
		if s.SubGoals[i].ID == subGoalID {
			return &s.SubGoals[i]
		}
	}
	return nil
}

func replaceSubGoal(subs []model.SubGoal, id string, sg model.SubGoal) {
	for i := range subs {
		if subs[i].ID == id {
			subs[i] = sg.Clone()
		}
	}
}
