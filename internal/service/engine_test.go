package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsmesh/newsgraph/internal/config"
	"github.com/newsmesh/newsgraph/internal/graph"
	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/models"
	"github.com/newsmesh/newsgraph/internal/vector"
)

const testDim = 4

func testConfig() config.Config {
	return config.Config{
		EmbedDim:         testDim,
		VectorWeight:     0.6,
		GraphWeight:      0.4,
		EntityCoeff:      0.15,
		ConfidenceCoeff:  0.05,
		DefaultThreshold: 0.35,
		DefaultLimit:     10,
		DefaultMaxHops:   2,
		AdapterTimeout:   time.Second,
	}
}

func newTestEngine(t *testing.T, idx vector.Index, store graph.Store, opts ...Option) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return NewEngine(idx, store, testConfig(), metrics.NewCollector(), logger, opts...)
}

// unitVec returns a dim-4 unit vector pointing along the given axis.
func unitVec(axis int) []float32 {
	v := make([]float32, testDim)
	v[axis] = 1
	return v
}

func newsArticle(id string, published time.Time, embedding []float32) models.Article {
	return models.Article{
		ID:          id,
		Title:       "title " + id,
		Content:     "content " + id,
		Source:      "test-wire",
		PublishedAt: published,
		Embedding:   embedding,
	}
}

func extracted(name string, typ models.EntityType, confidence float64) models.ExtractedMention {
	return models.ExtractedMention{Name: name, Type: typ, Confidence: confidence}
}

// mustIngest ingests an article through the full pipeline.
func mustIngest(t *testing.T, e *Engine, a models.Article, mentions ...models.ExtractedMention) *IngestResult {
	t.Helper()
	result, err := e.Ingest(context.Background(), a, mentions)
	require.NoError(t, err)
	return result
}
