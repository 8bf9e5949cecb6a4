package cmd

import (
	"errors"
	"testing"

	"github.com/theirongolddev/yeargoals/internal/api"
	"github.com/theirongolddev/yeargoals/internal/model"
)

var testGoals = []model.Goal{
	{ID: "g1", Title: "Read 12 books", Payload: &model.PlanPayload{Plan: model.Plan{Months: []model.Month{
		{ID: "m3", Name: "march", Order: 3, Tasks: []model.Task{{ID: "t1", Text: "Dune"}}},
	}}}},
	{ID: "g2", Title: "Run a marathon", Payload: &model.SubGoalsPayload{SubGoals: []model.SubGoal{
		{ID: "s1", Text: "Buy shoes"},
	}}},
	{ID: "g3", Title: "Rainy day fund", Payload: &model.SavingsPayload{}},
}

func TestFindGoal(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"g2", "g2", false},
		{"read 12 books", "g1", false},
		{"Rai", "g3", false},
		{"R", "", true}, // ambiguous
		{"swim", "", true},
	}
	for _, tt := range tests {
		g, err := findGoal(testGoals, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Fatalf("findGoal(%q) err = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
		if !tt.wantErr && g.ID != tt.want {
			t.Fatalf("findGoal(%q) = %s, want %s", tt.ref, g.ID, tt.want)
		}
	}
}

func TestFindMonthAndTask(t *testing.T) {
	m, err := findMonth(testGoals[0], "Mar")
	if err != nil || m.ID != "m3" {
		t.Fatalf("findMonth(Mar) = %+v, %v", m, err)
	}
	if _, err := findMonth(testGoals[0], "april"); err == nil {
		t.Fatal("findMonth(april) found a month that is not planned")
	}
	if _, err := findMonth(testGoals[1], "march"); err == nil {
		t.Fatal("findMonth on a subgoals goal succeeded")
	}

	task, err := findTask(m, "dune")
	if err != nil || task.ID != "t1" {
		t.Fatalf("findTask(dune) = %+v, %v", task, err)
	}
}

func TestFindSubGoal(t *testing.T) {
	s, err := findSubGoal(testGoals[1], "s1")
	if err != nil || s.Text != "Buy shoes" {
		t.Fatalf("findSubGoal(s1) = %+v, %v", s, err)
	}
	if _, err := findSubGoal(testGoals[2], "s1"); err == nil {
		t.Fatal("findSubGoal on a savings goal succeeded")
	}
}

func TestParseAmount(t *testing.T) {
	if v, err := parseAmount("1,250.50"); err != nil || v != 1250.5 {
		t.Fatalf("parseAmount = %v, %v", v, err)
	}
	for _, bad := range []string{"", "abc", "-5", "0"} {
		if _, err := parseAmount(bad); err == nil {
			t.Fatalf("parseAmount(%q) accepted", bad)
		}
	}
}

func TestFriendlyError(t *testing.T) {
	if got := friendlyError(api.ErrUnauthorized); got == api.ErrUnauthorized.Error() {
		t.Fatalf("unauthorized not translated: %q", got)
	}
	err := &api.StatusError{Status: 500, Message: "boom"}
	if got := friendlyError(err); got != err.Error() {
		t.Fatalf("friendlyError = %q, want %q", got, err.Error())
	}
	plain := errors.New("plain")
	if got := friendlyError(plain); got != "plain" {
		t.Fatalf("friendlyError = %q", got)
	}
}

func TestSavingsBalance(t *testing.T) {
	target := 500.0
	tests := []struct {
		name string
		goal model.Goal
		want string
	}{
		{
			name: "with target",
			goal: model.Goal{Title: "Fund", Payload: &model.SavingsPayload{TargetAmount: &target, CurrentAmount: 250}},
			want: "Fund balance: 250 of 500 (50%)",
		},
		{
			name: "no target",
			goal: model.Goal{Title: "Fund", Payload: &model.SavingsPayload{CurrentAmount: 40}},
			want: "Fund balance: 40",
		},
		{
			name: "returned as another type",
			goal: model.Goal{Title: "Fund", Payload: &model.SubGoalsPayload{}},
			want: "Fund is no longer a savings goal",
		},
		{
			name: "no payload",
			goal: model.Goal{Title: "Fund"},
			want: "Fund is no longer a savings goal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := savingsBalance(tt.goal); got != tt.want {
				t.Errorf("savingsBalance() = %q, want %q", got, tt.want)
			}
		})
	}
}
