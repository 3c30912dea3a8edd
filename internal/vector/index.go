// Package vector holds the semantic index adapters. Articles live here with
// their embeddings; similarity search is cosine-based with a hard dimension
// check on every write and query.
package vector

import (
	"context"
	"fmt"

	"github.com/newsmesh/newsgraph/internal/models"
)

// Hit is one similarity-search result.
type Hit struct {
	Article    models.Article
	Similarity float64
}

// Index is the semantic-index adapter contract. The pgvector-backed index
// and the in-memory index both satisfy it.
type Index interface {
	// Dimension returns the embedding dimensionality the index was created
	// with. All vectors passing through the index must match it.
	Dimension() int

	// Upsert stores or replaces the article keyed by its ID. Returns
	// models.ErrDimensionMismatch when the embedding length differs from
	// Dimension().
	Upsert(ctx context.Context, a models.Article) error

	// Exists reports whether an article with the given ID is indexed. The
	// vector index is the existence leader for ingestion idempotence.
	Exists(ctx context.Context, id string) (bool, error)

	// Get returns the indexed article, embedding included, or
	// models.ErrEntityNotFound when absent.
	Get(ctx context.Context, id string) (*models.Article, error)

	// Search returns up to limit articles whose cosine similarity to the
	// query embedding meets the threshold, most similar first.
	Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Hit, error)

	// Count returns the number of indexed articles.
	Count(ctx context.Context) (int, error)
}

// checkDimension is the shared write/query guard.
func checkDimension(want int, embedding []float32) error {
	if len(embedding) != want {
		return fmt.Errorf("%w: got %d, index expects %d", models.ErrDimensionMismatch, len(embedding), want)
	}
	return nil
}
