package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
)

const goalsJSON = `[
  {"id":"g1","title":"Read","type":"plan","year":2026,"category":"PersonalDevelopment",
   "createdAt":"2026-01-02T10:00:00.000Z","progress":50,
   "months":[{"id":"m3","name":"march","order":3,"tasks":[]},
             {"id":"m1","name":"january","order":1,"tasks":[
                {"id":"t1","text":"Book","completed":true,"completedAt":"2026-01-20T08:00:00Z"},
                {"id":"t2","text":"Book 2","completed":false}]}]},
  {"id":"g2","title":"Gym","type":"subgoals","year":2026,"createdAt":"2026-01-03T00:00:00Z",
   "subGoals":[{"id":"s1","text":"Join","completed":false}]},
  {"id":"g3","title":"Fund","type":"savings","year":2025,"category":"Finance","createdAt":"2025-06-01T00:00:00Z",
   "targetAmount":"1000.50","currentAmount":250}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api/", "tok-123", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestListGoals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/goals" {
			t.Errorf("request = %s %s, want GET /api/goals", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, goalsJSON)
	})

	goals, err := c.ListGoals(context.Background())
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("goals = %d, want 3", len(goals))
	}

	plan, ok := goals[0].Plan()
	if !ok || len(plan.Months) != 2 {
		t.Fatalf("plan goal = %+v", goals[0])
	}
	if plan.ID != "g1" {
		t.Fatalf("plan ID = %q, want goal ID", plan.ID)
	}
	task := plan.Months[1].Tasks[0]
	if !task.Completed || task.CompletedAt == nil || task.CompletedAt.Day() != 20 {
		t.Fatalf("task = %+v", task)
	}
	if goals[0].CreatedAt.IsZero() {
		t.Fatal("CreatedAt not parsed")
	}

	if goals[1].Type() != model.GoalSubGoals || goals[1].Category != model.CategoryOther {
		t.Fatalf("subgoals goal = %+v", goals[1])
	}

	s, ok := goals[2].Savings()
	if !ok || s.TargetAmount == nil || *s.TargetAmount != 1000.50 || s.CurrentAmount != 250 {
		t.Fatalf("savings payload = %+v", s)
	}
}

func TestCreateGoalSendsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/goals" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["type"] != "savings" || body["year"] != float64(2026) || body["targetAmount"] != float64(500) {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"g9","title":"Fund","type":"savings","year":2026,"targetAmount":500,"currentAmount":0}`)
	})

	year, target, current := 2026, 500.0, 0.0
	g, err := c.CreateGoal(context.Background(), engine.NewGoal{
		Title: "Fund", Type: model.GoalSavings, Category: model.CategoryFinance,
		Year: &year, TargetAmount: &target, CurrentAmount: &current,
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if g.ID != "g9" || g.Type() != model.GoalSavings {
		t.Fatalf("goal = %+v", g)
	}
}

func TestRoutes(t *testing.T) {
	type route struct{ method, path string }
	var (
		mu  sync.Mutex
		got []route
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, route{r.Method, r.URL.Path})
		mu.Unlock()
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPatch:
			_, _ = io.WriteString(w, `{"id":"x","text":"t","completed":true}`)
		default:
			_, _ = io.WriteString(w, `{"id":"x","name":"may","order":5,"tasks":[],"text":"t"}`)
		}
	})
	ctx := context.Background()

	calls := []func() error{
		func() error { return c.DeleteGoal(ctx, "g1") },
		func() error { _, err := c.AddMonth(ctx, "g1", "may", 5); return err },
		func() error { return c.DeleteMonth(ctx, "g1", "m1") },
		func() error { _, err := c.AddTask(ctx, "g1", "m1", "t"); return err },
		func() error { _, err := c.ToggleTask(ctx, "g1", "t1"); return err },
		func() error { return c.DeleteTask(ctx, "g1", "m1", "t1") },
		func() error { _, err := c.AddSubGoal(ctx, "g1", "t"); return err },
		func() error { _, err := c.ToggleSubGoal(ctx, "g1", "s1"); return err },
		func() error { return c.DeleteSubGoal(ctx, "g1", "s1") },
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []route{
		{http.MethodDelete, "/api/goals/g1"},
		{http.MethodPost, "/api/goals/g1/months"},
		{http.MethodDelete, "/api/goals/g1/months/m1"},
		{http.MethodPost, "/api/goals/g1/months/m1/tasks"},
		{http.MethodPatch, "/api/goals/g1/tasks/t1/toggle"},
		{http.MethodDelete, "/api/goals/g1/months/m1/tasks/t1"},
		{http.MethodPost, "/api/goals/g1/subgoals"},
		{http.MethodPatch, "/api/goals/g1/subgoals/s1/toggle"},
		{http.MethodDelete, "/api/goals/g1/subgoals/s1"},
	}
	if len(got) != len(want) {
		t.Fatalf("routes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("route %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("status with message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"title required"}`)
		})
		_, err := c.AddSubGoal(ctx, "g1", "")
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.Status != http.StatusBadRequest || se.Message != "title required" {
			t.Fatalf("StatusError = %+v", se)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		if _, err := c.ListGoals(ctx); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"activity": [`)
		})
		if _, err := c.GetAnalytics(ctx); !errors.Is(err, ErrMalformed) {
			t.Fatalf("error = %v, want ErrMalformed", err)
		}
	})

	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		c, err := NewClient(srv.URL, "", time.Second)
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		srv.Close()
		if err := c.DeleteGoal(ctx, "g1"); !errors.Is(err, ErrNetwork) {
			t.Fatalf("error = %v, want ErrNetwork", err)
		}
	})

	t.Run("no base url", func(t *testing.T) {
		if _, err := NewClient("  ", "tok", 0); !errors.Is(err, ErrNoBaseURL) {
			t.Fatalf("error = %v, want ErrNoBaseURL", err)
		}
	})
}

func TestGetAnalytics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analytics/activity" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"activity":[{"date":"2026-03-01T00:00:00.000Z","tasksCompleted":3}],
			"totalGoals":4,"completedTasks":7,"totalTasks":10,"currentStreak":2}`)
	})
	feed, err := c.GetAnalytics(context.Background())
	if err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}
	if len(feed.Activity) != 1 || feed.Activity[0].Date != "2026-03-01" || feed.Activity[0].TasksCompleted != 3 {
		t.Fatalf("activity = %+v", feed.Activity)
	}
	if feed.CurrentStreak != 2 || feed.TotalTasks != 10 {
		t.Fatalf("feed = %+v", feed)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`1200`, 1200, true},
		{`12.5`, 12.5, true},
		{`"99.90"`, 99.90, true},
		{`null`, 0, false},
		{`"abc"`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(json.RawMessage(tt.raw))
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseAmount(%s) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEntityRepliesWithoutBodyAreMalformed(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		handle http.HandlerFunc
		call   func(c *Client) error
	}{
		{
			name:   "toggle task 204",
			handle: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
			call:   func(c *Client) error { _, err := c.ToggleTask(ctx, "g1", "t1"); return err },
		},
		{
			name:   "add task empty 200",
			handle: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			call:   func(c *Client) error { _, err := c.AddTask(ctx, "g1", "m1", "t"); return err },
		},
		{
			name:   "add sub-goal without id",
			handle: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"text":"t"}`) },
			call:   func(c *Client) error { _, err := c.AddSubGoal(ctx, "g1", "t"); return err },
		},
		{
			name:   "toggle sub-goal whitespace",
			handle: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "  \n") },
			call:   func(c *Client) error { _, err := c.ToggleSubGoal(ctx, "g1", "s1"); return err },
		},
		{
			name:   "update goal without id",
			handle: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"title":"x"}`) },
			call: func(c *Client) error {
				_, err := c.UpdateGoal(ctx, "g1", engine.GoalEdit{Title: "x"})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handle)
			if err := tt.call(c); !errors.Is(err, ErrMalformed) {
				t.Fatalf("error = %v, want ErrMalformed", err)
			}
		})
	}

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if err := c.DeleteTask(ctx, "g1", "m1", "t1"); err != nil {
		t.Fatalf("DeleteTask with 204 = %v, want nil", err)
	}
}
