package pipeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

func f64(v float64) *float64 { return &v }

func planGoal(id string, year int, c model.Category, months ...model.Month) model.Goal {
	return model.Goal{
		ID: id, Title: id, Year: year, Category: c,
		Payload: &model.PlanPayload{Plan: model.Plan{ID: id, Months: months}},
	}
}

func month(order int, done ...bool) model.Month {
	m := model.Month{ID: model.MonthKeys[order-1].Key, Name: model.MonthKeys[order-1].Key, Order: order}
	for _, d := range done {
		m.Tasks = append(m.Tasks, model.Task{Completed: d})
	}
	return m
}

func sampleGoals() []model.Goal {
	return []model.Goal{
		planGoal("reading", 2026, model.CategoryPersonalDevelopment,
			month(1, true, true), month(3, true, false, false, false)),
		{
			ID: "fitness", Title: "fitness", Year: 2026, Category: model.CategorySport,
			Payload: &model.SubGoalsPayload{SubGoals: []model.SubGoal{{Completed: true}, {Completed: true}}},
		},
		{
			ID: "fund", Title: "fund", Year: 2026, Category: model.CategoryFinance,
			Payload: &model.SavingsPayload{TargetAmount: f64(1000), CurrentAmount: 0},
		},
		planGoal("career", 2026, model.CategoryCareer, month(3, true, true)),
		planGoal("old", 2024, model.CategoryCareer, month(1, true)),
	}
}

func TestYears(t *testing.T) {
	got := Years(sampleGoals(), 2025)
	want := []int{2026, 2025, 2024}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Years = %v, want %v", got, want)
	}
	if got := Years(nil, 2030); !reflect.DeepEqual(got, []int{2030}) {
		t.Fatalf("Years(nil) = %v, want [2030]", got)
	}
}

func TestGoalsByYear(t *testing.T) {
	byYear := GoalsByYear(sampleGoals())
	if len(byYear[2026]) != 4 || len(byYear[2024]) != 1 {
		t.Fatalf("byYear sizes = %d/%d, want 4/1", len(byYear[2026]), len(byYear[2024]))
	}
	if byYear[2026][0].ID != "reading" || byYear[2026][3].ID != "career" {
		t.Fatal("year group lost list order")
	}
}

func TestGroupByCategory(t *testing.T) {
	goals := FilterByYear(sampleGoals(), 2026)
	goals = append(goals, model.Goal{ID: "misc", Year: 2026, Payload: &model.SubGoalsPayload{}})

	groups := GroupByCategory(goals)
	var cats []model.Category
	for _, g := range groups {
		cats = append(cats, g.Category)
	}
	want := []model.Category{
		model.CategoryPersonalDevelopment, model.CategoryCareer, model.CategoryFinance,
		model.CategorySport, model.CategoryOther,
	}
	if !reflect.DeepEqual(cats, want) {
		t.Fatalf("categories = %v, want %v", cats, want)
	}
	// reading: 3 of 6 tasks.
	if groups[0].Progress != 50 {
		t.Fatalf("PersonalDevelopment progress = %d, want 50", groups[0].Progress)
	}
	if groups[3].Progress != 100 {
		t.Fatalf("Sport progress = %d, want 100", groups[3].Progress)
	}
}

func TestSummarizeYear(t *testing.T) {
	s := SummarizeYear(2026, FilterByYear(sampleGoals(), 2026))
	// progresses: 50, 100, 0, 100 -> mean 62.5 -> 63
	if s.Goals != 4 || s.Completed != 2 || s.AverageProgress != 63 {
		t.Fatalf("SummarizeYear = %+v, want 4 goals, 2 completed, 63%%", s)
	}
}

func TestAnalyze(t *testing.T) {
	activity := []model.DailyActivity{
		{Date: "2026-03-12", TasksCompleted: 2},
		{Date: "2026-03-13", TasksCompleted: 1},
		{Date: "2026-03-14", TasksCompleted: 4},
		{Date: "2025-12-31", TasksCompleted: 9},
	}
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	a := Analyze(sampleGoals(), activity, 2026, now)

	if a.TotalGoals != 4 {
		t.Fatalf("TotalGoals = %d, want 4", a.TotalGoals)
	}
	if a.CompletedGoals != 2 {
		t.Fatalf("CompletedGoals = %d, want 2", a.CompletedGoals)
	}
	if a.InProgressGoals != 1 {
		t.Fatalf("InProgressGoals = %d, want 1", a.InProgressGoals)
	}
	if a.OverallProgress != 63 {
		t.Fatalf("OverallProgress = %d, want 63", a.OverallProgress)
	}
	// 6 reading tasks + 2 sub-goals + 2 career tasks
	if a.TotalTasks != 10 || a.CompletedTasks != 7 {
		t.Fatalf("tasks = %d/%d, want 7/10", a.CompletedTasks, a.TotalTasks)
	}
	if a.Goals[2].TotalTasks != 0 || a.Goals[2].Type != model.GoalSavings {
		t.Fatalf("savings breakdown = %+v", a.Goals[2])
	}

	if len(a.Months) != 12 {
		t.Fatalf("Months len = %d, want 12", len(a.Months))
	}
	jan, mar := a.Months[0], a.Months[2]
	if jan.Total != 2 || jan.Completed != 2 || jan.Percentage != 100 {
		t.Fatalf("January = %+v", jan)
	}
	if mar.Total != 6 || mar.Completed != 3 || mar.Percentage != 50 {
		t.Fatalf("March = %+v", mar)
	}
	if feb := a.Months[1]; feb.Total != 0 || feb.Percentage != 0 {
		t.Fatalf("February = %+v, want empty", feb)
	}

	if len(a.Activity) != 3 || a.ActiveDays != 3 || a.TasksDone != 7 {
		t.Fatalf("activity = %d entries, %d active days, %d done", len(a.Activity), a.ActiveDays, a.TasksDone)
	}
	if a.CurrentStreak != 3 {
		t.Fatalf("CurrentStreak = %d, want 3", a.CurrentStreak)
	}
}

func TestAnalyzeEmptyYear(t *testing.T) {
	a := Analyze(sampleGoals(), nil, 2019, time.Now())
	if a.TotalGoals != 0 || a.OverallProgress != 0 {
		t.Fatalf("empty year = %+v", a)
	}
	for _, m := range a.Months {
		if m.Percentage != 0 {
			t.Fatalf("month %d percentage = %d, want 0", m.Order, m.Percentage)
		}
	}
}

func TestStreaks(t *testing.T) {
	activity := []model.DailyActivity{
		{Date: "2026-01-01", TasksCompleted: 1},
		{Date: "2026-01-02", TasksCompleted: 1},
		{Date: "2026-01-03", TasksCompleted: 1},
		{Date: "2026-01-04", TasksCompleted: 1},
		{Date: "2026-01-10", TasksCompleted: 0},
		{Date: "2026-02-09", TasksCompleted: 3},
		{Date: "2026-02-10", TasksCompleted: 1},
	}

	current, longest := Streaks(activity, time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC))
	if current != 2 || longest != 4 {
		t.Fatalf("Streaks = %d/%d, want 2/4", current, longest)
	}
	current, _ = Streaks(activity, time.Date(2026, 2, 13, 8, 0, 0, 0, time.UTC))
	if current != 0 {
		t.Fatalf("stale current streak = %d, want 0", current)
	}
}

func TestTierFor(t *testing.T) {
	tests := map[int]ProgressTier{100: TierDone, 99: TierHigh, 70: TierHigh, 69: TierMedium, 40: TierMedium, 39: TierLow, 0: TierLow}
	for p, want := range tests {
		if got := TierFor(p); got != want {
			t.Fatalf("TierFor(%d) = %d, want %d", p, got, want)
		}
	}
}

func TestHeatmapLayout(t *testing.T) {
	activity := []model.DailyActivity{
		{Date: "2025-01-01", TasksCompleted: 3},
		{Date: "2025-12-31", TasksCompleted: 8},
		{Date: "2024-12-30", TasksCompleted: 5},
	}
	h := Heatmap(activity, 2025)

	if len(h.Weeks) != 53 {
		t.Fatalf("weeks = %d, want 53", len(h.Weeks))
	}
	first := h.Weeks[0]
	if first[0].Date.Weekday() != time.Sunday {
		t.Fatalf("grid starts on %s, want Sunday", first[0].Date.Weekday())
	}
	for i := 0; i < 3; i++ {
		if first[i].InYear() {
			t.Fatalf("cell %d of first week (%s) should be padding", i, first[i].Date.Format(model.DateLayout))
		}
	}
	if first[3].Count != 3 || first[3].Date.Format(model.DateLayout) != "2025-01-01" {
		t.Fatalf("Jan 1 cell = %+v", first[3])
	}

	last := h.Weeks[len(h.Weeks)-1]
	if last[6].Date.Weekday() != time.Saturday || last[6].Date.Format(model.DateLayout) != "2026-01-03" {
		t.Fatalf("grid ends on %s", last[6].Date.Format(model.DateLayout))
	}
	if last[3].Count != 8 {
		t.Fatalf("Dec 31 count = %d, want 8", last[3].Count)
	}
	if last[4].Count != model.OutOfYear {
		t.Fatal("Jan 1 of next year not marked as padding")
	}

	if h.Months[0] != (model.MonthSpan{Month: time.January, Weeks: 5}) {
		t.Fatalf("January span = %+v, want 5 weeks", h.Months[0])
	}
	if h.Months[1] != (model.MonthSpan{Month: time.February, Weeks: 4}) {
		t.Fatalf("February span = %+v, want 4 weeks", h.Months[1])
	}
	if len(h.Months) != 12 {
		t.Fatalf("month spans = %d, want 12", len(h.Months))
	}
	spanWeeks := 0
	for _, m := range h.Months {
		spanWeeks += m.Weeks
	}
	if spanWeeks != len(h.Weeks) {
		t.Fatalf("month spans cover %d weeks, grid has %d", spanWeeks, len(h.Weeks))
	}
	if h.Total != 11 || h.Max != 8 {
		t.Fatalf("Total/Max = %d/%d, want 11/8", h.Total, h.Max)
	}
}

func TestHeatmapLeapYear(t *testing.T) {
	h := Heatmap(nil, 2024)
	days := 0
	for _, w := range h.Weeks {
		for _, d := range w {
			if d.InYear() {
				days++
				if d.Count != 0 {
					t.Fatalf("empty activity produced count %d", d.Count)
				}
			}
		}
	}
	if days != 366 {
		t.Fatalf("in-year cells = %d, want 366", days)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct{ count, want int }{
		{-1, -1}, {0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {6, 3}, {7, 4}, {40, 4},
	}
	for _, tt := range tests {
		if got := Level(tt.count); got != tt.want {
			t.Fatalf("Level(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
