package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// findGoal resolves a goal by ID, then by case-insensitive title, then by
// unique title prefix.
func findGoal(goals []model.Goal, ref string) (model.Goal, error) {
	ref = strings.TrimSpace(ref)
	for _, g := range goals {
		if g.ID == ref {
			return g, nil
		}
	}

	lower := strings.ToLower(ref)
	var prefix []model.Goal
	for _, g := range goals {
		title := strings.ToLower(g.Title)
		if title == lower {
			return g, nil
		}
		if strings.HasPrefix(title, lower) {
			prefix = append(prefix, g)
		}
	}
	switch len(prefix) {
	case 1:
		return prefix[0], nil
	case 0:
		return model.Goal{}, fmt.Errorf("no goal matches %q", ref)
	}
	return model.Goal{}, fmt.Errorf("%q matches %d goals; use the ID", ref, len(prefix))
}

// findMonth resolves a plan month by ID or month name.
func findMonth(g model.Goal, ref string) (model.Month, error) {
	plan, ok := g.Plan()
	if !ok {
		return model.Month{}, fmt.Errorf("%q is a %s goal, not a plan", g.Title, g.Type())
	}
	key, isMonth := model.LookupMonth(ref)
	for _, m := range plan.Months {
		if m.ID == ref || (isMonth && m.Name == key.Key) {
			return m, nil
		}
	}
	return model.Month{}, fmt.Errorf("%q has no month %q", g.Title, ref)
}

// findTask resolves a task inside a month by ID or exact text.
func findTask(m model.Month, ref string) (model.Task, error) {
	for _, t := range m.Tasks {
		if t.ID == ref {
			return t, nil
		}
	}
	for _, t := range m.Tasks {
		if strings.EqualFold(t.Text, ref) {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("%s has no task %q", model.MonthLabel(m.Name), ref)
}

// findSubGoal resolves a subgoal by ID or exact text.
func findSubGoal(g model.Goal, ref string) (model.SubGoal, error) {
	subs, ok := g.SubGoals()
	if !ok {
		return model.SubGoal{}, fmt.Errorf("%q is a %s goal, not a checklist", g.Title, g.Type())
	}
	for _, s := range subs.SubGoals {
		if s.ID == ref {
			return s, nil
		}
	}
	for _, s := range subs.SubGoals {
		if strings.EqualFold(s.Text, ref) {
			return s, nil
		}
	}
	return model.SubGoal{}, fmt.Errorf("%q has no subgoal %q", g.Title, ref)
}
