package model

import "strings"

// Category is a fixed tag attached to a goal.
type Category string

const (
	CategoryPersonalDevelopment Category = "PersonalDevelopment"
	CategoryCareer              Category = "Career"
	CategoryFinance             Category = "Finance"
	CategoryHealth              Category = "Health"
	CategorySport               Category = "Sport"
	CategoryNutrition           Category = "Nutrition"
	CategoryRelationships       Category = "Relationships"
	CategoryHabits              Category = "Habits"
	CategoryTravel              Category = "Travel"
	CategoryOther               Category = "Other"
)

// CategoryInfo describes how a category is presented.
type CategoryInfo struct {
	ID          Category
	Label       string
	Description string
	Color       string
}

// Categories is the closed set of categories in display order.
var Categories = []CategoryInfo{
	{CategoryPersonalDevelopment, "Personal development", "Books, courses, skills", "#10B981"},
	{CategoryCareer, "Career", "Promotion, new project", "#3B82F6"},
	{CategoryFinance, "Finance", "Savings, investments", "#F59E0B"},
	{CategoryHealth, "Health", "Check-ups, treatment", "#EF4444"},
	{CategorySport, "Sport", "Training, activity", "#8B5CF6"},
	{CategoryNutrition, "Nutrition", "Diet, water intake", "#EC4899"},
	{CategoryRelationships, "Relationships", "Family, friends", "#EC4899"},
	{CategoryHabits, "Habits", "Daily routine, meditation", "#6366F1"},
	{CategoryTravel, "Travel", "Trips, vacation", "#0EA5E9"},
	{CategoryOther, "Other", "Everything else", "#64748B"},
}

// NormalizeCategory maps any input onto a known category, falling back to
// CategoryOther. Matching is case-insensitive.
func NormalizeCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c.ID), s) {
			return c.ID
		}
	}
	return CategoryOther
}

// Info returns the presentation record for c.
func (c Category) Info() CategoryInfo {
	for _, info := range Categories {
		if info.ID == c {
			return info
		}
	}
	return Categories[len(Categories)-1]
}
