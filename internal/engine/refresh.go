package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// Refresh loads goals and analytics concurrently and replaces the canonical
// state wholesale. State is left untouched if either call fails.
func (e *Engine) Refresh(ctx context.Context) error {
	var (
		goals []model.Goal
		feed  model.AnalyticsFeed
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = e.remote.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("listing goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		feed, err = e.remote.GetAnalytics(gctx)
		if err != nil {
			return fmt.Errorf("loading analytics: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	normalized := make([]model.Goal, 0, len(goals))
	for _, goal := range goals {
		if err := model.Validate(goal); err != nil {
			e.log.Warn("server returned malformed goal", "goal", goal.ID, "err", err)
		}
		normalized = append(normalized, model.Normalize(goal))
	}

	e.mu.Lock()
	e.goals = normalized
	e.setFeedLocked(feed)
	e.version++
	v := e.version
	e.mu.Unlock()

	e.log.Debug("state refreshed", "goals", len(normalized), "activity_days", len(feed.Activity))
	e.publish(Event{Kind: EventRefreshed, Op: OpRefresh, Version: v})
	return nil
}

// RefreshActivity re-fetches only the analytics feed.
func (e *Engine) RefreshActivity(ctx context.Context) error {
	feed, err := e.remote.GetAnalytics(ctx)
	if err != nil {
		return fmt.Errorf("loading analytics: %w", err)
	}

	e.mu.Lock()
	e.setFeedLocked(feed)
	e.version++
	v := e.version
	e.mu.Unlock()

	e.publish(Event{Kind: EventRefreshed, Op: OpRefresh, Version: v})
	return nil
}

func (e *Engine) setFeedLocked(feed model.AnalyticsFeed) {
	e.activity = cloneActivity(feed.Activity)
	if e.activity == nil {
		e.activity = []model.DailyActivity{}
	}
	feed.Activity = nil
	e.feed = feed
}
