package model

import (
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func planGoal(tasks ...bool) Goal {
	m := Month{ID: "m1", Name: "january", Order: 1}
	for i, done := range tasks {
		m.Tasks = append(m.Tasks, Task{ID: string(rune('a' + i)), Completed: done})
	}
	return Goal{ID: "g1", Payload: &PlanPayload{Plan: Plan{ID: "g1", Months: []Month{m}}}}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		want int
	}{
		{"plan half done", planGoal(true, false), 50},
		{"plan empty", planGoal(), 0},
		{"plan thirds round", planGoal(true, true, false), 67},
		{"plan across months", Goal{Payload: &PlanPayload{Plan: Plan{Months: []Month{
			{Order: 1, Tasks: []Task{{Completed: true}}},
			{Order: 2, Tasks: []Task{{Completed: false}, {Completed: false}, {Completed: true}}},
		}}}}, 50},
		{"subgoals empty", Goal{Payload: &SubGoalsPayload{}}, 0},
		{"subgoals one of three", Goal{Payload: &SubGoalsPayload{SubGoals: []SubGoal{
			{Completed: true}, {}, {},
		}}}, 33},
		{"savings no target", Goal{Payload: &SavingsPayload{CurrentAmount: 50}}, 0},
		{"savings zero target", Goal{Payload: &SavingsPayload{TargetAmount: f64(0), CurrentAmount: 50}}, 0},
		{"savings partial", Goal{Payload: &SavingsPayload{TargetAmount: f64(1000), CurrentAmount: 255}}, 26},
		{"savings overshoot clamps", Goal{Payload: &SavingsPayload{TargetAmount: f64(1000), CurrentAmount: 1200}}, 100},
		{"savings negative clamps", Goal{Payload: &SavingsPayload{TargetAmount: f64(1000), CurrentAmount: -10}}, 0},
		{"no payload", Goal{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.goal); got != tt.want {
				t.Fatalf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProgressBounds(t *testing.T) {
	for current := -500.0; current <= 5000; current += 125 {
		for _, target := range []float64{1, 10, 999, 1000, 4000} {
			g := Goal{Payload: &SavingsPayload{TargetAmount: f64(target), CurrentAmount: current}}
			if p := Progress(g); p < 0 || p > 100 {
				t.Fatalf("Progress(current=%v, target=%v) = %d, outside [0,100]", current, target, p)
			}
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	done := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	orig := planGoal(true)
	plan, _ := orig.Plan()
	plan.Months[0].Tasks[0].CompletedAt = &done

	c := orig.Clone()
	cp, _ := c.Plan()
	cp.Months[0].Tasks[0].Completed = false
	cp.Months[0].Tasks = append(cp.Months[0].Tasks, Task{ID: "z"})
	*cp.Months[0].Tasks[0].CompletedAt = done.AddDate(1, 0, 0)

	if !plan.Months[0].Tasks[0].Completed {
		t.Fatal("mutating clone changed original task")
	}
	if len(plan.Months[0].Tasks) != 1 {
		t.Fatalf("original tasks len = %d, want 1", len(plan.Months[0].Tasks))
	}
	if !plan.Months[0].Tasks[0].CompletedAt.Equal(done) {
		t.Fatal("mutating clone changed original CompletedAt")
	}

	s := Goal{Payload: &SavingsPayload{TargetAmount: f64(10)}}
	sc := s.Clone()
	sp, _ := sc.Savings()
	*sp.TargetAmount = 20
	op, _ := s.Savings()
	if *op.TargetAmount != 10 {
		t.Fatalf("original TargetAmount = %v, want 10", *op.TargetAmount)
	}
}

func TestPayloadNarrowing(t *testing.T) {
	g := planGoal()
	if g.Type() != GoalPlan {
		t.Fatalf("Type() = %q, want plan", g.Type())
	}
	if _, ok := g.SubGoals(); ok {
		t.Fatal("plan goal narrowed to subgoals")
	}
	if _, ok := g.Savings(); ok {
		t.Fatal("plan goal narrowed to savings")
	}
	if (Goal{}).Type() != "" {
		t.Fatal("goal without payload reported a type")
	}
}

func TestIsTemporaryID(t *testing.T) {
	if !IsTemporaryID(TempIDPrefix + "abc") {
		t.Fatal("prefixed id not temporary")
	}
	if IsTemporaryID("t-42") {
		t.Fatal("server id reported temporary")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(planGoal(true)); err != nil {
		t.Fatalf("Validate(valid plan) = %v", err)
	}
	if err := Validate(Goal{ID: "x"}); err == nil {
		t.Fatal("Validate accepted goal without payload")
	}
	dup := Goal{ID: "d", Payload: &PlanPayload{Plan: Plan{Months: []Month{
		{Name: "may", Order: 5}, {Name: "may", Order: 5},
	}}}}
	if err := Validate(dup); err == nil {
		t.Fatal("Validate accepted duplicate month names")
	}
	bad := Goal{ID: "b", Payload: &PlanPayload{Plan: Plan{Months: []Month{{Name: "x", Order: 13}}}}}
	if err := Validate(bad); err == nil {
		t.Fatal("Validate accepted month order 13")
	}
}

func TestParseGoalTypeAndCategory(t *testing.T) {
	if got, err := ParseGoalType(" Savings "); err != nil || got != GoalSavings {
		t.Fatalf("ParseGoalType(Savings) = %q, %v", got, err)
	}
	if _, err := ParseGoalType("habit"); err == nil {
		t.Fatal("ParseGoalType accepted habit")
	}
	if got := NormalizeCategory("career"); got != CategoryCareer {
		t.Fatalf("NormalizeCategory(career) = %q, want Career", got)
	}
	if got := NormalizeCategory(""); got != CategoryOther {
		t.Fatalf("NormalizeCategory(\"\") = %q, want Other", got)
	}
	if m, ok := LookupMonth("Mar"); !ok || m.Order != 3 {
		t.Fatalf("LookupMonth(Mar) = %+v, %v", m, ok)
	}
}
