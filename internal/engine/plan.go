package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

func sortMonths(months []model.Month) {
	slices.SortStableFunc(months, func(a, b model.Month) int { return cmp.Compare(a.Order, b.Order) })
}

// AddMonth inserts a temporary month into a plan goal, keeping months
// ordered. name must be a month key whose order matches. Unknown goals and
// non-plan goals are ignored.
func (e *Engine) AddMonth(ctx context.Context, goalID, name string, order int) (model.Month, error) {
	if key, ok := model.LookupMonth(name); !ok || key.Key != name || key.Order != order {
		return model.Month{}, fmt.Errorf("%w: %q order %d", ErrInvalidMonth, name, order)
	}

	unlock := e.lockEntity(goalID)
	defer unlock()

	tempID := e.ids.Next()
	var dup bool
	applied := e.mutate(OpAddMonth, goalID, func() bool {
		p := e.planLocked(goalID)
		if p == nil {
			return false
		}
		if slices.ContainsFunc(p.Months, func(m model.Month) bool { return m.Name == name }) {
			dup = true
			return false
		}
		p.Months = append(p.Months, model.Month{ID: tempID, Name: name, Order: order, Tasks: []model.Task{}})
		sortMonths(p.Months)
		return true
	})
	if dup {
		return model.Month{}, fmt.Errorf("%w: %s already planned", ErrInvalidMonth, name)
	}
	if !applied {
		return model.Month{}, nil
	}

	month, err := e.remote.AddMonth(ctx, goalID, name, order)
	if err != nil {
		return model.Month{}, e.rollback(ctx, OpAddMonth, goalID, tempID, err, func() {
			if p := e.planLocked(goalID); p != nil {
				p.Months = drop(p.Months, monthKey, tempID)
			}
		})
	}

	month = model.NormalizeMonth(month)
	e.commit(ctx, OpAddMonth, goalID, month.ID, func() {
		p := e.planLocked(goalID)
		if p == nil {
			return
		}
		p.Months = settle(p.Months, monthKey, tempID, month.Clone(), false)
		sortMonths(p.Months)
	})
	return month, nil
}

// DeleteMonth removes a month from a plan goal.
func (e *Engine) DeleteMonth(ctx context.Context, goalID, monthID string) error {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var (
		removed model.Month
		index   int
	)
	applied := e.mutate(OpDeleteMonth, goalID, func() bool {
		p := e.planLocked(goalID)
		if p == nil {
			return false
		}
		index = slices.IndexFunc(p.Months, func(m model.Month) bool { return m.ID == monthID })
		if index < 0 {
			return false
		}
		removed = p.Months[index]
		p.Months = slices.Delete(p.Months, index, index+1)
		return true
	})
	if !applied {
		return nil
	}

	if err := e.remote.DeleteMonth(ctx, goalID, monthID); err != nil {
		return e.rollback(ctx, OpDeleteMonth, goalID, monthID, err, func() {
			if p := e.planLocked(goalID); p != nil {
				p.Months = restore(p.Months, monthKey, index, removed)
				sortMonths(p.Months)
			}
		})
	}

	e.commit(ctx, OpDeleteMonth, goalID, monthID, func() {
		if p := e.planLocked(goalID); p != nil {
			p.Months = drop(p.Months, monthKey, monthID)
		}
	})
	return nil
}

// AddTask appends a temporary task to a month.
func (e *Engine) AddTask(ctx context.Context, goalID, monthID, text string) (model.Task, error) {
	unlock := e.lockEntity(goalID)
	defer unlock()

	tempID := e.ids.Next()
	applied := e.mutate(OpAddTask, goalID, func() bool {
		m := e.monthLocked(goalID, monthID)
		if m == nil {
			return false
		}
		m.Tasks = append(m.Tasks, model.Task{ID: tempID, Text: text})
		return true
	})
	if !applied {
		return model.Task{}, nil
	}

	task, err := e.remote.AddTask(ctx, goalID, monthID, text)
	if err != nil {
		return model.Task{}, e.rollback(ctx, OpAddTask, goalID, tempID, err, func() {
			if m := e.monthLocked(goalID, monthID); m != nil {
				m.Tasks = drop(m.Tasks, taskKey, tempID)
			}
		})
	}

	e.commit(ctx, OpAddTask, goalID, task.ID, func() {
		if m := e.monthLocked(goalID, monthID); m != nil {
			m.Tasks = settle(m.Tasks, taskKey, tempID, task.Clone(), false)
		}
	})
	return task, nil
}

// ToggleTask flips a task's completion. A rejected toggle restores the value
// captured before this call flipped it.
func (e *Engine) ToggleTask(ctx context.Context, goalID, monthID, taskID string) (model.Task, error) {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var original model.Task
	applied := e.mutate(OpToggleTask, goalID, func() bool {
		t := e.taskLocked(goalID, monthID, taskID)
		if t == nil {
			return false
		}
		original = t.Clone()
		t.Completed, t.CompletedAt = flip(t.Completed, e.now())
		return true
	})
	if !applied {
		return model.Task{}, nil
	}

	task, err := e.remote.ToggleTask(ctx, goalID, taskID)
	if err != nil {
		return model.Task{}, e.rollback(ctx, OpToggleTask, goalID, taskID, err, func() {
			if t := e.taskLocked(goalID, monthID, taskID); t != nil {
				t.Completed = original.Completed
				t.CompletedAt = original.CompletedAt
			}
		})
	}

	e.commit(ctx, OpToggleTask, goalID, taskID, func() {
		if m := e.monthLocked(goalID, monthID); m != nil {
			replaceTask(m.Tasks, taskID, task)
		}
	})
	e.afterCommit(ctx, ProgressEvent{Op: OpToggleTask, GoalID: goalID, Positive: task.Completed})
	return task, nil
}

// DeleteTask removes a task. A rejected delete restores it at its previous
// position in the same month.
func (e *Engine) DeleteTask(ctx context.Context, goalID, monthID, taskID string) error {
	unlock := e.lockEntity(goalID)
	defer unlock()

	var (
		removed model.Task
		index   int
	)
	applied := e.mutate(OpDeleteTask, goalID, func() bool {
		m := e.monthLocked(goalID, monthID)
		if m == nil {
			return false
		}
		index = slices.IndexFunc(m.Tasks, func(t model.Task) bool { return t.ID == taskID })
		if index < 0 {
			return false
		}
		removed = m.Tasks[index]
		m.Tasks = slices.Delete(m.Tasks, index, index+1)
		return true
	})
	if !applied {
		return nil
	}

	if err := e.remote.DeleteTask(ctx, goalID, monthID, taskID); err != nil {
		return e.rollback(ctx, OpDeleteTask, goalID, taskID, err, func() {
			if m := e.monthLocked(goalID, monthID); m != nil {
				m.Tasks = restore(m.Tasks, taskKey, index, removed)
			}
		})
	}

	e.commit(ctx, OpDeleteTask, goalID, taskID, func() {
		if m := e.monthLocked(goalID, monthID); m != nil {
			m.Tasks = drop(m.Tasks, taskKey, taskID)
		}
	})
	return nil
}

func (e *Engine) taskLocked(goalID, monthID, taskID string) *model.Task {
	m := e.monthLocked(goalID, monthID)
	if m == nil {
		return nil
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == taskID {
			return &m.Tasks[i]
		}
	}
	return nil
}

func replaceTask(tasks []model.Task, id string, t model.Task) {
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i] = t.Clone()
		}
	}
}

// flip returns the toggled completion state and its timestamp.
func flip(completed bool, now time.Time) (bool, *time.Time) {
	if completed {
		return false, nil
	}
	return true, &now
}
