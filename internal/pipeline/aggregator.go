// Package pipeline derives read-only views (year groups, analytics, the
// activity heatmap) from engine snapshots. Nothing here mutates its input.
package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// ProgressTier buckets a progress value for colouring.
type ProgressTier int

const (
	TierLow ProgressTier = iota
	TierMedium
	TierHigh
	TierDone
)

// TierFor maps progress onto a tier: 100 is done, 70+ high, 40+ medium.
func TierFor(progress int) ProgressTier {
	switch {
	case progress >= 100:
		return TierDone
	case progress >= 70:
		return TierHigh
	case progress >= 40:
		return TierMedium
	default:
		return TierLow
	}
}

// Analyze computes the dashboard figures for year. Streaks are measured
// back from now.
func Analyze(goals []model.Goal, activity []model.DailyActivity, year int, now time.Time) model.Analytics {
	yearGoals := FilterByYear(goals, year)

	a := model.Analytics{
		Year:       year,
		TotalGoals: len(yearGoals),
		Goals:      make([]model.GoalProgress, 0, len(yearGoals)),
	}

	progressSum := 0
	for _, g := range yearGoals {
		p := model.Progress(g)
		total, done := model.TaskCounts(g)

		a.Goals = append(a.Goals, model.GoalProgress{
			GoalID:         g.ID,
			Title:          g.Title,
			Type:           g.Type(),
			Category:       g.Category,
			Progress:       p,
			TotalTasks:     total,
			CompletedTasks: done,
		})
		a.TotalTasks += total
		a.CompletedTasks += done
		progressSum += p

		switch {
		case p == 100:
			a.CompletedGoals++
		case p > 0:
			a.InProgressGoals++
		}
	}
	if len(yearGoals) > 0 {
		a.OverallProgress = int(math.Round(float64(progressSum) / float64(len(yearGoals))))
	}

	a.Months = MonthlyHistogram(yearGoals)

	a.Activity = ActivityForYear(activity, year)
	for _, d := range a.Activity {
		if d.TasksCompleted > 0 {
			a.ActiveDays++
			a.TasksDone += d.TasksCompleted
		}
	}
	a.CurrentStreak, a.LongestStreak = Streaks(activity, now)

	return a
}

// MonthlyHistogram buckets plan tasks by month order. Only plan goals
// contribute; months with an order outside 1..12 are ignored.
func MonthlyHistogram(goals []model.Goal) []model.MonthBucket {
	buckets := make([]model.MonthBucket, 12)
	for i := range buckets {
		buckets[i].Order = i + 1
		buckets[i].Key = model.MonthKeys[i].Key
	}

	for _, g := range goals {
		plan, ok := g.Plan()
		if !ok {
			continue
		}
		for _, m := range plan.Months {
			idx := m.Order - 1
			if idx < 0 || idx >= 12 {
				continue
			}
			for _, t := range m.Tasks {
				buckets[idx].Total++
				if t.Completed {
					buckets[idx].Completed++
				}
			}
		}
	}

	for i := range buckets {
		if buckets[i].Total > 0 {
			buckets[i].Percentage = int(math.Round(100 * float64(buckets[i].Completed) / float64(buckets[i].Total)))
		}
	}
	return buckets
}

// ActivityForYear keeps the activity entries dated in year.
func ActivityForYear(activity []model.DailyActivity, year int) []model.DailyActivity {
	prefix := strconv.Itoa(year)
	var result []model.DailyActivity
	for _, a := range activity {
		if strings.HasPrefix(a.Date, prefix) {
			result = append(result, a)
		}
	}
	return result
}

// Streaks returns the run of consecutive active days ending today (or
// yesterday, when today has no activity yet) and the longest run overall.
func Streaks(activity []model.DailyActivity, now time.Time) (current, longest int) {
	active := make(map[string]bool, len(activity))
	var days []time.Time
	for _, a := range activity {
		if a.TasksCompleted <= 0 || active[a.Date] {
			continue
		}
		d, err := time.Parse(model.DateLayout, a.Date)
		if err != nil {
			continue
		}
		active[a.Date] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0, 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	day := civilDate(now)
	if !active[day.Format(model.DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	for active[day.Format(model.DateLayout)] {
		current++
		day = day.AddDate(0, 0, -1)
	}
	return current, longest
}

// civilDate drops the clock and zone of t, keeping its calendar day.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
