package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/models"
)

const topCoMentionLimit = 5

// Timeline buckets an entity's mentions by UTC calendar day over [start, end]
// and classifies the activity trend. Zero start/end default to the entity's
// first-seen-to-last-seen span. Fails with ErrEntityNotFound when the name
// has no graph presence.
func (e *Engine) Timeline(ctx context.Context, entityName string, start, end time.Time, limit int) (*models.Timeline, error) {
	if entityName == "" {
		return nil, fmt.Errorf("%w: entity name is required", models.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	opStart := time.Now()

	entity, err := e.entities.FindEntity(ctx, entityName)
	if err != nil {
		return nil, err
	}

	if start.IsZero() {
		start = entity.FirstSeen
	}
	if end.IsZero() {
		end = entity.LastSeen
	}
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end precedes start", models.ErrInvalidArgument)
	}

	// Aggregates cover every event in the range; limit only bounds the
	// entry list handed back. Truncating first would drop the oldest events
	// and skew the trend.
	entries, err := e.entities.TimelineForEntity(ctx, entity.Key(), start, end, 0)
	if err != nil {
		return nil, err
	}

	coMentions, err := e.entities.CoMentioned(ctx, entity.Key(), topCoMentionLimit)
	if err != nil {
		return nil, err
	}

	buckets := bucketByDay(entries)
	total := len(entries)
	trend := classifyTrend(buckets, start, end)
	if len(entries) > limit {
		entries = entries[:limit]
	}

	timeline := &models.Timeline{
		Entity:        *entity,
		Start:         start,
		End:           end,
		Entries:       entries,
		Buckets:       buckets,
		TotalMentions: total,
		Trend:         trend,
		TopCoMentions: coMentions,
	}
	if day, ok := mostActiveDay(buckets); ok {
		timeline.MostActiveDay = day
	}

	e.collector.RecordTiming(metrics.OpGraphQuery, time.Since(opStart))
	return timeline, nil
}

// bucketByDay groups entries by UTC calendar day, ascending.
func bucketByDay(entries []models.TimelineEntry) []models.DayBucket {
	counts := map[time.Time]int{}
	for _, entry := range entries {
		day := entry.PublishedAt.UTC().Truncate(24 * time.Hour)
		counts[day]++
	}

	buckets := make([]models.DayBucket, 0, len(counts))
	for day, n := range counts {
		buckets = append(buckets, models.DayBucket{Day: day, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets
}

// mostActiveDay returns the day with the highest count; earlier day wins a
// tie.
func mostActiveDay(buckets []models.DayBucket) (time.Time, bool) {
	var best time.Time
	bestCount := 0
	for _, b := range buckets {
		if b.Count > bestCount {
			best = b.Day
			bestCount = b.Count
		}
	}
	return best, bestCount > 0
}

// classifyTrend compares the mean daily mention count in the first half of
// the range against the second half. A difference above 10% either way
// breaks "stable".
func classifyTrend(buckets []models.DayBucket, start, end time.Time) models.Trend {
	if len(buckets) == 0 {
		return models.TrendStable
	}

	mid := start.Add(end.Sub(start) / 2)

	var firstSum, secondSum int
	for _, b := range buckets {
		if b.Day.Before(mid) {
			firstSum += b.Count
		} else {
			secondSum += b.Count
		}
	}

	// Half-window lengths in days, at least one each so single-day ranges
	// stay well-defined.
	halfDays := end.Sub(start).Hours() / 48
	if halfDays < 1 {
		halfDays = 1
	}

	firstMean := float64(firstSum) / halfDays
	secondMean := float64(secondSum) / halfDays

	switch {
	case secondMean > firstMean*1.1:
		return models.TrendIncreasing
	case secondMean < firstMean*0.9:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
