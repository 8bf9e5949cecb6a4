package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// Years returns every year that has a goal plus currentYear, newest first.
func Years(goals []model.Goal, currentYear int) []int {
	seen := map[int]struct{}{currentYear: {}}
	for _, g := range goals {
		seen[g.Year] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// GoalsByYear indexes goals by year, keeping list order within a year.
func GoalsByYear(goals []model.Goal) map[int][]model.Goal {
	byYear := make(map[int][]model.Goal)
	for _, g := range goals {
		byYear[g.Year] = append(byYear[g.Year], g)
	}
	return byYear
}

// FilterByYear returns the goals set in year.
func FilterByYear(goals []model.Goal, year int) []model.Goal {
	var result []model.Goal
	for _, g := range goals {
		if g.Year == year {
			result = append(result, g)
		}
	}
	return result
}

// FilterByCategory returns goals with the given category. An empty category
// matches everything.
func FilterByCategory(goals []model.Goal, c model.Category) []model.Goal {
	if c == "" {
		return goals
	}
	var result []model.Goal
	for _, g := range goals {
		if model.NormalizeCategory(string(g.Category)) == c {
			result = append(result, g)
		}
	}
	return result
}

// GroupByCategory partitions goals by category in the fixed category order,
// omitting empty categories.
func GroupByCategory(goals []model.Goal) []model.CategoryGroup {
	buckets := make(map[model.Category][]model.Goal)
	for _, g := range goals {
		c := model.NormalizeCategory(string(g.Category))
		buckets[c] = append(buckets[c], g)
	}

	var groups []model.CategoryGroup
	for _, info := range model.Categories {
		members := buckets[info.ID]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, model.CategoryGroup{
			Category: info.ID,
			Goals:    members,
			Progress: meanProgress(members),
		})
	}
	return groups
}

// SummarizeYear computes the header figures for one year's goals.
func SummarizeYear(year int, goals []model.Goal) model.YearSummary {
	s := model.YearSummary{Year: year, Goals: len(goals)}
	for _, g := range goals {
		if model.Progress(g) == 100 {
			s.Completed++
		}
	}
	s.AverageProgress = meanProgress(goals)
	return s
}

func meanProgress(goals []model.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += model.Progress(g)
	}
	return int(math.Round(float64(sum) / float64(len(goals))))
}
