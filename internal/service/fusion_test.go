package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsmesh/newsgraph/internal/models"
)

var testWeights = FusionWeights{
	Vector:          0.6,
	Graph:           0.4,
	EntityCoeff:     0.15,
	ConfidenceCoeff: 0.05,
}

func TestFuse(t *testing.T) {
	v, g := 0.8, 0.5

	assert.InDelta(t, 0.68, Fuse(&v, &g, testWeights), 1e-9)

	// A single signal passes through unscaled.
	assert.Equal(t, 0.8, Fuse(&v, nil, testWeights))
	assert.Equal(t, 0.5, Fuse(nil, &g, testWeights))
	assert.Equal(t, 0.0, Fuse(nil, nil, testWeights))
}

func TestGraphScore(t *testing.T) {
	// 2 entities with confidences 0.9 and 0.7:
	// 0.15*2 + 0.05*1.6 = 0.38
	assert.InDelta(t, 0.38, GraphScore(2, 1.6, testWeights), 1e-9)

	// Heavy evidence saturates at 1.
	assert.Equal(t, 1.0, GraphScore(10, 10, testWeights))

	assert.Equal(t, 0.0, GraphScore(0, 0, testWeights))
}

func TestSortRanked_Determinism(t *testing.T) {
	older := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 3)

	results := []models.RankedResult{
		{Article: models.Article{ID: "b", PublishedAt: older}, Score: 0.5},
		{Article: models.Article{ID: "a", PublishedAt: older}, Score: 0.5},
		{Article: models.Article{ID: "c", PublishedAt: newer}, Score: 0.5},
		{Article: models.Article{ID: "d", PublishedAt: older}, Score: 0.9},
	}

	sortRanked(results)

	ids := []string{results[0].Article.ID, results[1].Article.ID, results[2].Article.ID, results[3].Article.ID}
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids)
}

func TestMergeResults_DedupAndFuse(t *testing.T) {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	v1, v2 := 0.8, 0.6
	g1, g2 := 0.5, 0.3

	vectorHits := []models.RankedResult{
		{Article: models.Article{ID: "both", PublishedAt: day}, VectorScore: &v1, Signals: []models.Signal{models.SignalVector}},
		{Article: models.Article{ID: "vector-only", PublishedAt: day}, VectorScore: &v2, Signals: []models.Signal{models.SignalVector}},
	}
	graphHits := []models.RankedResult{
		{Article: models.Article{ID: "both", PublishedAt: day}, GraphScore: &g1, Signals: []models.Signal{models.SignalGraph}, MatchedEntities: []string{"tesla|ORGANIZATION"}},
		{Article: models.Article{ID: "graph-only", PublishedAt: day}, GraphScore: &g2, Signals: []models.Signal{models.SignalGraph}},
	}

	merged := mergeResults(vectorHits, graphHits, testWeights)

	assert.Len(t, merged, 3, "shared article appears once")

	assert.Equal(t, "both", merged[0].Article.ID)
	assert.InDelta(t, 0.68, merged[0].Score, 1e-9)
	assert.Len(t, merged[0].Signals, 2)
	assert.Equal(t, []string{"tesla|ORGANIZATION"}, merged[0].MatchedEntities)

	assert.Equal(t, "vector-only", merged[1].Article.ID)
	assert.Equal(t, 0.6, merged[1].Score)

	assert.Equal(t, "graph-only", merged[2].Article.ID)
	assert.Equal(t, 0.3, merged[2].Score)
}
