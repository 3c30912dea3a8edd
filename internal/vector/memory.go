package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/newsmesh/newsgraph/internal/models"
)

// MemoryIndex is an in-process Index. It brute-forces cosine similarity over
// all stored embeddings, which is plenty for tests and small corpora.
type MemoryIndex struct {
	mu       sync.RWMutex
	dim      int
	articles map[string]models.Article
}

// NewMemoryIndex returns an empty index expecting embeddings of the given
// dimensionality.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{dim: dim, articles: map[string]models.Article{}}
}

var _ Index = (*MemoryIndex)(nil)

func (x *MemoryIndex) Dimension() int { return x.dim }

func (x *MemoryIndex) Upsert(_ context.Context, a models.Article) error {
	if err := checkDimension(x.dim, a.Embedding); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	emb := make([]float32, len(a.Embedding))
	copy(emb, a.Embedding)
	a.Embedding = emb
	x.articles[a.ID] = a
	return nil
}

func (x *MemoryIndex) Exists(_ context.Context, id string) (bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.articles[id]
	return ok, nil
}

func (x *MemoryIndex) Get(_ context.Context, id string) (*models.Article, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	a, ok := x.articles[id]
	if !ok {
		return nil, models.ErrEntityNotFound
	}
	return &a, nil
}

func (x *MemoryIndex) Search(_ context.Context, embedding []float32, threshold float64, limit int) ([]Hit, error) {
	if err := checkDimension(x.dim, embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", models.ErrInvalidArgument)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []Hit
	for _, a := range x.articles {
		sim := CosineSimilarity(embedding, a.Embedding)
		if sim < threshold {
			continue
		}
		hits = append(hits, Hit{Article: a, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if !hits[i].Article.PublishedAt.Equal(hits[j].Article.PublishedAt) {
			return hits[i].Article.PublishedAt.After(hits[j].Article.PublishedAt)
		}
		return hits[i].Article.ID < hits[j].Article.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (x *MemoryIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.articles), nil
}

// CosineSimilarity computes the cosine of the angle between two equal-length
// vectors. A zero vector yields similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	dot := float64(vek32.Dot(a, b))
	na := math.Sqrt(float64(vek32.Dot(a, a)))
	nb := math.Sqrt(float64(vek32.Dot(b, b)))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
