package service

import (
	"sort"

	"github.com/newsmesh/newsgraph/internal/models"
)

// FusionWeights parameterize the score fusion. The weights must sum to 1;
// the coefficients bound how fast graph evidence saturates.
type FusionWeights struct {
	Vector          float64
	Graph           float64
	EntityCoeff     float64
	ConfidenceCoeff float64
}

// GraphScore maps graph evidence for one article onto [0,1]. Breadth
// (distinct matched entities) and confidence both contribute; the cap keeps
// graph evidence from dominating on its own.
func GraphScore(matchedEntities int, confidenceSum float64, w FusionWeights) float64 {
	score := w.EntityCoeff*float64(matchedEntities) + w.ConfidenceCoeff*confidenceSum
	if score > 1 {
		return 1
	}
	return score
}

// Fuse combines per-signal scores for one article. An article seen by only
// one signal keeps that signal's score unscaled.
func Fuse(vectorScore, graphScore *float64, w FusionWeights) float64 {
	switch {
	case vectorScore != nil && graphScore != nil:
		return w.Vector*(*vectorScore) + w.Graph*(*graphScore)
	case vectorScore != nil:
		return *vectorScore
	case graphScore != nil:
		return *graphScore
	default:
		return 0
	}
}

// sortRanked orders results descending by score, ties broken by more recent
// publication, then ascending article ID.
func sortRanked(results []models.RankedResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		pi, pj := results[i].Article.PublishedAt, results[j].Article.PublishedAt
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		return results[i].Article.ID < results[j].Article.ID
	})
}

// mergeResults deduplicates vector and graph hits by article ID and fuses
// their scores.
func mergeResults(vectorHits []models.RankedResult, graphHits []models.RankedResult, w FusionWeights) []models.RankedResult {
	byID := make(map[string]*models.RankedResult, len(vectorHits)+len(graphHits))
	var order []string

	for _, r := range vectorHits {
		r := r
		byID[r.Article.ID] = &r
		order = append(order, r.Article.ID)
	}
	for _, g := range graphHits {
		if existing, ok := byID[g.Article.ID]; ok {
			existing.GraphScore = g.GraphScore
			existing.Signals = append(existing.Signals, models.SignalGraph)
			existing.MatchedEntities = g.MatchedEntities
			continue
		}
		g := g
		byID[g.Article.ID] = &g
		order = append(order, g.Article.ID)
	}

	merged := make([]models.RankedResult, 0, len(order))
	for _, id := range order {
		r := byID[id]
		r.Score = Fuse(r.VectorScore, r.GraphScore, w)
		merged = append(merged, *r)
	}
	sortRanked(merged)
	return merged
}
