package service

import (
	"context"

	"github.com/newsmesh/newsgraph/internal/metrics"
)

// Stats reports corpus size plus the collector's runtime counters.
type Stats struct {
	Articles int
	Runtime  metrics.Snapshot
}

// Stats returns the current engine statistics.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	articles, err := e.vectors.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Articles: articles,
		Runtime:  e.collector.Snapshot(),
	}, nil
}
