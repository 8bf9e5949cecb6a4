package model

import "strings"

// DateLayout is the calendar-day format used by the activity feed.
const DateLayout = "2006-01-02"

// DailyActivity counts completions on one calendar day.
type DailyActivity struct {
	Date           string // YYYY-MM-DD
	TasksCompleted int
}

// AnalyticsFeed is the server's activity summary.
type AnalyticsFeed struct {
	Activity       []DailyActivity
	TotalGoals     int
	CompletedTasks int
	TotalTasks     int
	CurrentStreak  int
}

// MonthKey identifies a calendar month as stored in Month.Name.
type MonthKey struct {
	Key   string
	Order int
	Label string
}

// MonthKeys lists the twelve month keys in calendar order.
var MonthKeys = []MonthKey{
	{"january", 1, "January"},
	{"february", 2, "February"},
	{"march", 3, "March"},
	{"april", 4, "April"},
	{"may", 5, "May"},
	{"june", 6, "June"},
	{"july", 7, "July"},
	{"august", 8, "August"},
	{"september", 9, "September"},
	{"october", 10, "October"},
	{"november", 11, "November"},
	{"december", 12, "December"},
}

// LookupMonth finds a month by key, label, or three-letter abbreviation.
func LookupMonth(s string) (MonthKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range MonthKeys {
		if s == m.Key || (len(s) >= 3 && strings.HasPrefix(m.Key, s)) {
			return m, true
		}
	}
	return MonthKey{}, false
}

// MonthLabel returns the display label for a month key, or the key itself.
func MonthLabel(key string) string {
	if m, ok := LookupMonth(key); ok && m.Key == key {
		return m.Label
	}
	return key
}
