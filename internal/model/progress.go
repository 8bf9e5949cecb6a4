package model

import "math"

// Progress returns the completion percentage of g in [0, 100].
func Progress(g Goal) int {
	switch p := g.Payload.(type) {
	case *PlanPayload:
		if p == nil {
			return 0
		}
		total, done := PlanTaskCounts(p.Plan)
		return ratio(done, total)
	case *SubGoalsPayload:
		if p == nil {
			return 0
		}
		total, done := SubGoalCounts(p.SubGoals)
		return ratio(done, total)
	case *SavingsPayload:
		if p == nil || p.TargetAmount == nil || *p.TargetAmount == 0 {
			return 0
		}
		pct := math.Round(100 * p.CurrentAmount / *p.TargetAmount)
		return int(math.Max(0, math.Min(100, pct)))
	default:
		return 0
	}
}

// PlanTaskCounts flattens every task in the plan.
func PlanTaskCounts(p Plan) (total, completed int) {
	for _, m := range p.Months {
		for _, t := range m.Tasks {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed
}

// SubGoalCounts counts sub-goals and completed sub-goals.
func SubGoalCounts(subs []SubGoal) (total, completed int) {
	for _, s := range subs {
		total++
		if s.Completed {
			completed++
		}
	}
	return total, completed
}

// TaskCounts returns the checklist size of any goal: plan tasks for plan
// goals, sub-goals for subgoals goals, and zero for savings goals.
func TaskCounts(g Goal) (total, completed int) {
	switch p := g.Payload.(type) {
	case *PlanPayload:
		return PlanTaskCounts(p.Plan)
	case *SubGoalsPayload:
		return SubGoalCounts(p.SubGoals)
	}
	return 0, 0
}

func ratio(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
