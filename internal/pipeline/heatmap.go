package pipeline

import (
	"time"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// Heatmap lays out year as Sunday-first week columns running from the
// Sunday on or before January 1 through the Saturday on or after
// December 31. Padding days carry model.OutOfYear. Each week is labelled
// with the month of its first in-year day.
func Heatmap(activity []model.DailyActivity, year int) model.HeatmapLayout {
	counts := make(map[string]int, len(activity))
	for _, a := range activity {
		counts[a.Date] = a.TasksCompleted
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	start := jan1.AddDate(0, 0, -int(jan1.Weekday()))
	end := dec31.AddDate(0, 0, int(time.Saturday-dec31.Weekday()))

	layout := model.HeatmapLayout{Year: year}
	for weekStart := start; !weekStart.After(end); weekStart = weekStart.AddDate(0, 0, 7) {
		var (
			week  model.HeatmapWeek
			label time.Month
		)
		for i := range week {
			day := weekStart.AddDate(0, 0, i)
			cell := model.HeatmapDay{Date: day, Count: model.OutOfYear}
			if day.Year() == year {
				cell.Count = counts[day.Format(model.DateLayout)]
				layout.Total += cell.Count
				layout.Max = max(layout.Max, cell.Count)
				if label == 0 {
					label = day.Month()
				}
			}
			week[i] = cell
		}
		layout.Weeks = append(layout.Weeks, week)

		if n := len(layout.Months); n > 0 && layout.Months[n-1].Month == label {
			layout.Months[n-1].Weeks++
		} else {
			layout.Months = append(layout.Months, model.MonthSpan{Month: label, Weeks: 1})
		}
	}
	return layout
}

// Level buckets a day's completions into intensity 0..4: 0, 1-2, 3-4, 5-6
// and 7+. Padding cells return -1.
func Level(count int) int {
	switch {
	case count < 0:
		return -1
	case count == 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}
