package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// GoalResponse is the raw goal document returned by the server.
type GoalResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Type          string            `json:"type"`
	Year          int               `json:"year"`
	Category      string            `json:"category,omitempty"`
	CreatedAt     string            `json:"createdAt"`
	Months        []MonthResponse   `json:"months,omitempty"`
	SubGoals      []SubGoalResponse `json:"subGoals,omitempty"`
	TargetAmount  json.RawMessage   `json:"targetAmount,omitempty"`
	CurrentAmount json.RawMessage   `json:"currentAmount,omitempty"`
	Progress      int               `json:"progress"`
}

// MonthResponse is a raw month inside a plan goal.
type MonthResponse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Order int            `json:"order"`
	Tasks []TaskResponse `json:"tasks"`
}

// TaskResponse is a raw plan task.
type TaskResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

// SubGoalResponse is a raw checklist item.
type SubGoalResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

// AnalyticsResponse is the raw activity summary.
type AnalyticsResponse struct {
	Activity []struct {
		Date           string `json:"date"`
		TasksCompleted int    `json:"tasksCompleted"`
	} `json:"activity"`
	TotalGoals     int `json:"totalGoals"`
	CompletedTasks int `json:"completedTasks"`
	TotalTasks     int `json:"totalTasks"`
	CurrentStreak  int `json:"currentStreak"`
}

type createGoalRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Category      string   `json:"category"`
	Year          *int     `json:"year,omitempty"`
	TargetAmount  *float64 `json:"targetAmount,omitempty"`
	CurrentAmount *float64 `json:"currentAmount,omitempty"`
}

type updateGoalRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	TargetAmount  *float64 `json:"targetAmount,omitempty"`
	CurrentAmount *float64 `json:"currentAmount,omitempty"`
}

type monthRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type textRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// parseGoal converts a raw goal into the model. Any type other than plan
// or savings is read as a checklist goal.
func parseGoal(r GoalResponse) model.Goal {
	g := model.Goal{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Year:        r.Year,
		Category:    model.NormalizeCategory(r.Category),
		CreatedAt:   parseTimestamp(r.CreatedAt),
	}

	switch model.GoalType(strings.ToLower(r.Type)) {
	case model.GoalPlan:
		months := make([]model.Month, 0, len(r.Months))
		for _, m := range r.Months {
			months = append(months, parseMonth(m))
		}
		g.Payload = &model.PlanPayload{Plan: model.Plan{ID: r.ID, Months: months}}
	case model.GoalSavings:
		s := &model.SavingsPayload{}
		if v, ok := parseAmount(r.TargetAmount); ok {
			s.TargetAmount = &v
		}
		if v, ok := parseAmount(r.CurrentAmount); ok {
			s.CurrentAmount = v
		}
		g.Payload = s
	default:
		subs := make([]model.SubGoal, 0, len(r.SubGoals))
		for _, s := range r.SubGoals {
			subs = append(subs, parseSubGoal(s))
		}
		g.Payload = &model.SubGoalsPayload{SubGoals: subs}
	}
	return g
}

func parseMonth(r MonthResponse) model.Month {
	tasks := make([]model.Task, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		tasks = append(tasks, parseTask(t))
	}
	return model.Month{ID: r.ID, Name: r.Name, Order: r.Order, Tasks: tasks}
}

func parseTask(r TaskResponse) model.Task {
	return model.Task{
		ID:          r.ID,
		Text:        r.Text,
		Completed:   r.Completed,
		CompletedAt: parseOptionalTimestamp(r.CompletedAt),
	}
}

func parseSubGoal(r SubGoalResponse) model.SubGoal {
	return model.SubGoal{
		ID:          r.ID,
		Text:        r.Text,
		Completed:   r.Completed,
		CompletedAt: parseOptionalTimestamp(r.CompletedAt),
	}
}

func parseAnalytics(r AnalyticsResponse) model.AnalyticsFeed {
	feed := model.AnalyticsFeed{
		Activity:       make([]model.DailyActivity, 0, len(r.Activity)),
		TotalGoals:     r.TotalGoals,
		CompletedTasks: r.CompletedTasks,
		TotalTasks:     r.TotalTasks,
		CurrentStreak:  r.CurrentStreak,
	}
	for _, a := range r.Activity {
		date := a.Date
		if len(date) > len(model.DateLayout) {
			date = date[:len(model.DateLayout)]
		}
		feed.Activity = append(feed.Activity, model.DailyActivity{Date: date, TasksCompleted: a.TasksCompleted})
	}
	return feed
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

func parseOptionalTimestamp(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTimestamp(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// parseAmount reads a money field that may arrive as a JSON number or as a
// decimal string ("1200.50"). Null and empty values report false.
func parseAmount(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
