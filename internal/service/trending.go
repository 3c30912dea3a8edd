package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/models"
)

// Trending ranks entities by mention velocity over a sliding window ending
// now: mentions in the most recent third of the window, divided by the mean
// daily mention rate over the whole window. Entities accelerating in
// coverage outrank merely frequent ones.
func (e *Engine) Trending(ctx context.Context, windowDays, limit int) ([]models.TrendingTopic, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be positive", models.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	opStart := time.Now()

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -windowDays)
	recentStart := now.Add(-time.Duration(windowDays) * 24 * time.Hour / 3)

	events, err := e.entities.MentionEventsSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	type tally struct {
		entity models.Entity
		window int
		recent int
	}
	tallies := map[string]*tally{}

	for _, ev := range events {
		t, ok := tallies[ev.EntityKey]
		if !ok {
			t = &tally{entity: models.Entity{
				Name:         ev.Name,
				Type:         ev.Type,
				MentionCount: ev.MentionCount,
			}}
			tallies[ev.EntityKey] = t
		}
		t.window++
		if !ev.SeenAt.Before(recentStart) {
			t.recent++
		}
	}

	topics := make([]models.TrendingTopic, 0, len(tallies))
	for _, t := range tallies {
		dailyAverage := float64(t.window) / float64(windowDays)
		denominator := dailyAverage
		if denominator < 1 {
			denominator = 1
		}
		topics = append(topics, models.TrendingTopic{
			Entity:         t.entity,
			Score:          float64(t.recent) / denominator,
			RecentMentions: t.recent,
			WindowMentions: t.window,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		if topics[i].Entity.MentionCount != topics[j].Entity.MentionCount {
			return topics[i].Entity.MentionCount > topics[j].Entity.MentionCount
		}
		return topics[i].Entity.Key() < topics[j].Entity.Key()
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}

	e.collector.RecordTiming(metrics.OpGraphQuery, time.Since(opStart))
	return topics, nil
}
