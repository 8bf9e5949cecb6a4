package model

import "time"

// Analytics holds the derived dashboard figures for one year.
type Analytics struct {
	Year            int
	TotalGoals      int
	CompletedGoals  int
	InProgressGoals int
	OverallProgress int
	TotalTasks      int
	CompletedTasks  int

	Goals  []GoalProgress
	Months []MonthBucket // always 12, January first

	Activity      []DailyActivity
	ActiveDays    int
	TasksDone     int
	CurrentStreak int
	LongestStreak int
}

// GoalProgress is one row of the per-goal breakdown.
type GoalProgress struct {
	GoalID         string
	Title          string
	Type           GoalType
	Category       Category
	Progress       int
	TotalTasks     int
	CompletedTasks int
}

// MonthBucket accumulates plan tasks scheduled in one calendar month.
type MonthBucket struct {
	Order      int
	Key        string
	Total      int
	Completed  int
	Percentage int
}

// CategoryGroup is the set of a year's goals sharing a category.
type CategoryGroup struct {
	Category Category
	Goals    []Goal
	Progress int // rounded mean of member progress
}

// YearSummary is the header line of a year section.
type YearSummary struct {
	Year            int
	Goals           int
	Completed       int
	AverageProgress int
}

// OutOfYear marks heatmap cells that pad the grid outside the target year.
const OutOfYear = -1

// HeatmapDay is one cell of the activity calendar.
type HeatmapDay struct {
	Date  time.Time
	Count int // OutOfYear for padding cells
}

// InYear reports whether the cell belongs to the rendered year.
func (d HeatmapDay) InYear() bool { return d.Count != OutOfYear }

// HeatmapWeek is a Sunday-first column of seven days.
type HeatmapWeek [7]HeatmapDay

// MonthSpan labels a run of week columns.
type MonthSpan struct {
	Month time.Month
	Weeks int
}

// HeatmapLayout is the week-major activity calendar for one year.
type HeatmapLayout struct {
	Year   int
	Weeks  []HeatmapWeek
	Months []MonthSpan
	Total  int
	Max    int
}
