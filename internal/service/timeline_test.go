package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsmesh/newsgraph/internal/graph"
	"github.com/newsmesh/newsgraph/internal/models"
	"github.com/newsmesh/newsgraph/internal/vector"
)

// ingestOn ingests one article mentioning the given entities on a day.
func ingestOn(t *testing.T, e *Engine, id string, day time.Time, names ...string) {
	t.Helper()
	mentions := make([]models.ExtractedMention, len(names))
	for i, n := range names {
		mentions[i] = extracted(n, models.EntityOrganization, 0.9)
	}
	mustIngest(t, e, newsArticle(id, day, unitVec(0)), mentions...)
}

func TestTimeline_BucketsAndMostActiveDay(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())
	day1 := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	ingestOn(t, engine, "a1", day1, "Tesla")
	ingestOn(t, engine, "a2", day2, "Tesla")
	ingestOn(t, engine, "a3", day2.Add(3*time.Hour), "Tesla")

	timeline, err := engine.Timeline(context.Background(), "Tesla", time.Time{}, time.Time{}, 50)
	require.NoError(t, err)

	assert.Equal(t, 3, timeline.TotalMentions)
	require.Len(t, timeline.Buckets, 2)
	assert.Equal(t, 1, timeline.Buckets[0].Count)
	assert.Equal(t, 2, timeline.Buckets[1].Count)
	assert.Equal(t, day2.Truncate(24*time.Hour), timeline.MostActiveDay)

	// Default range is the entity's full seen span.
	assert.True(t, timeline.Start.Equal(day1))
	assert.True(t, timeline.End.Equal(day2.Add(3*time.Hour)))

	// Newest first.
	assert.Equal(t, "a3", timeline.Entries[0].ArticleID)
}

func TestTimeline_EntityNotFound(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())

	_, err := engine.Timeline(context.Background(), "Nobody", time.Time{}, time.Time{}, 10)
	require.ErrorIs(t, err, models.ErrEntityNotFound)
}

func TestTimeline_TrendClassification(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)

	tests := []struct {
		name    string
		counts  []int // mentions per day, index = day offset from start
		want    models.Trend
	}{
		{
			name:   "increasing",
			counts: []int{1, 0, 0, 0, 0, 2, 2, 2, 2, 2},
			want:   models.TrendIncreasing,
		},
		{
			name:   "decreasing",
			counts: []int{2, 2, 2, 2, 2, 0, 0, 0, 0, 1},
			want:   models.TrendDecreasing,
		},
		{
			// Exactly equal halves stay stable, the boundary case.
			name:   "stable on equal halves",
			counts: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			want:   models.TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buckets []models.DayBucket
			for offset, n := range tt.counts {
				if n > 0 {
					buckets = append(buckets, models.DayBucket{
						Day:   start.AddDate(0, 0, offset),
						Count: n,
					})
				}
			}
			assert.Equal(t, tt.want, classifyTrend(buckets, start, end))
		})
	}
}

func TestTimeline_ExplicitRangeFilters(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())
	day1 := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	day5 := day1.AddDate(0, 0, 4)

	ingestOn(t, engine, "a1", day1, "Tesla")
	ingestOn(t, engine, "a2", day5, "Tesla")

	timeline, err := engine.Timeline(context.Background(), "Tesla", day1, day1.Add(24*time.Hour), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, timeline.TotalMentions)
}

func TestTimeline_AggregatesIgnoreEntryLimit(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())
	start := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	// One mention per day for 12 days, a perfectly uniform series.
	for i := 0; i < 12; i++ {
		ingestOn(t, engine, fmt.Sprintf("a%d", i), start.AddDate(0, 0, i), "Tesla")
	}

	timeline, err := engine.Timeline(context.Background(), "Tesla", time.Time{}, time.Time{}, 6)
	require.NoError(t, err)

	// The limit bounds the entry list only; totals, buckets and the trend
	// cover the whole range.
	assert.Len(t, timeline.Entries, 6)
	assert.Equal(t, 12, timeline.TotalMentions)
	assert.Len(t, timeline.Buckets, 12)
	assert.Equal(t, models.TrendStable, timeline.Trend)

	// Entries stay newest first after truncation.
	assert.Equal(t, "a11", timeline.Entries[0].ArticleID)
}

func TestTimeline_TopCoMentions(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	ingestOn(t, engine, "a1", day, "Tesla", "Panasonic")
	ingestOn(t, engine, "a2", day.AddDate(0, 0, 1), "Tesla", "Panasonic")
	ingestOn(t, engine, "a3", day.AddDate(0, 0, 2), "Tesla", "Ford")

	timeline, err := engine.Timeline(context.Background(), "Tesla", time.Time{}, time.Time{}, 50)
	require.NoError(t, err)

	require.NotEmpty(t, timeline.TopCoMentions)
	assert.Equal(t, "Panasonic", timeline.TopCoMentions[0].Entity.Name)
	assert.Equal(t, 2, timeline.TopCoMentions[0].Count)
}

func TestTimeline_InvalidRange(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	ingestOn(t, engine, "a1", day, "Tesla")

	_, err := engine.Timeline(context.Background(), "Tesla", day, day.AddDate(0, 0, -1), 10)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}
