package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/yeargoals/internal/engine"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	outcomes := []engine.Outcome{
		{Op: engine.OpAddTask, GoalID: "g1", EntityID: "t9", Status: engine.StatusCommitted, At: base},
		{Op: engine.OpDeleteGoal, GoalID: "g2", Status: engine.StatusRolledBack, Error: "boom", At: base.Add(time.Minute)},
		{Op: engine.OpToggleSubGoal, GoalID: "g3", EntityID: "s1", Status: engine.StatusCommitted, At: base.Add(2 * time.Minute)},
	}
	for _, o := range outcomes {
		if err := j.Record(ctx, o); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Op != engine.OpToggleSubGoal || got[1].Op != engine.OpDeleteGoal {
		t.Fatalf("order = %s, %s; want newest first", got[0].Op, got[1].Op)
	}
	if got[1].Error != "boom" || got[1].Status != engine.StatusRolledBack {
		t.Fatalf("entry = %+v", got[1])
	}
	if !got[0].At.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("At = %v, want %v", got[0].At, base.Add(2*time.Minute))
	}

	all, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}

	counts, err := j.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[engine.StatusCommitted] != 2 || counts[engine.StatusRolledBack] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Record(ctx, engine.Outcome{Op: engine.OpAddGoal, GoalID: "g1", Status: engine.StatusCommitted}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = j.Close() }()
	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].GoalID != "g1" || got[0].At.IsZero() {
		t.Fatalf("entries = %+v", got)
	}
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{old, old.Add(time.Hour), recent} {
		if err := j.Record(ctx, engine.Outcome{Op: engine.OpAddTask, GoalID: "g", Status: engine.StatusCommitted, At: at}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := j.Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned = %d, want 2", n)
	}
	left, _ := j.Recent(ctx, 0)
	if len(left) != 1 {
		t.Fatalf("left = %d, want 1", len(left))
	}
}
