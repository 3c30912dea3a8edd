package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/models"
	"github.com/newsmesh/newsgraph/internal/vector"
)

// Search runs the vector and graph signals in parallel, fuses their scores
// and returns a deterministic ranking. A timed-out signal is retried once;
// if it still fails with a timeout, the other signal's results are returned
// with the Partial flag set.
func (e *Engine) Search(ctx context.Context, q models.Query) (*models.ResultSet, error) {
	start := time.Now()

	q = e.applyQueryDefaults(q)
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", models.ErrInvalidArgument)
	}
	if q.Threshold < 0 || q.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0,1]", models.ErrInvalidArgument)
	}

	if len(q.Embedding) == 0 && q.Text != "" && e.embedder != nil {
		emb, err := e.embedText(ctx, q.Text)
		if err != nil {
			return nil, err
		}
		q.Embedding = emb
	}

	wantVector := len(q.Embedding) > 0
	wantGraph := q.FocusEntity != ""
	if !wantVector && !wantGraph {
		return nil, fmt.Errorf("%w: query needs an embedding or a focus entity", models.ErrInvalidArgument)
	}

	type signalResult struct {
		hits []models.RankedResult
		err  error
	}

	vectorCh := make(chan signalResult, 1)
	graphCh := make(chan signalResult, 1)

	if wantVector {
		go func() {
			hits, err := e.vectorSignal(ctx, q)
			vectorCh <- signalResult{hits, err}
		}()
	} else {
		vectorCh <- signalResult{}
	}

	if wantGraph {
		go func() {
			hits, err := e.graphSignal(ctx, q)
			graphCh <- signalResult{hits, err}
		}()
	} else {
		graphCh <- signalResult{}
	}

	vectorRes := <-vectorCh
	graphRes := <-graphCh

	vectorOK := wantVector && vectorRes.err == nil
	graphOK := wantGraph && graphRes.err == nil

	// Timeouts degrade to the surviving signal; anything else is fatal.
	if vectorRes.err != nil && !errors.Is(vectorRes.err, models.ErrTimeout) {
		return nil, vectorRes.err
	}
	if graphRes.err != nil && !errors.Is(graphRes.err, models.ErrTimeout) {
		return nil, graphRes.err
	}
	if wantVector && !vectorOK && (!wantGraph || !graphOK) {
		return nil, vectorRes.err
	}
	if wantGraph && !graphOK && !wantVector {
		return nil, graphRes.err
	}

	weights := FusionWeights{
		Vector:          e.cfg.VectorWeight,
		Graph:           e.cfg.GraphWeight,
		EntityCoeff:     e.cfg.EntityCoeff,
		ConfidenceCoeff: e.cfg.ConfidenceCoeff,
	}
	results := mergeResults(vectorRes.hits, graphRes.hits, weights)
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}

	set := &models.ResultSet{
		Results: results,
		Signal:  resultSignal(vectorOK, graphOK),
		Partial: (wantVector && !vectorOK) || (wantGraph && !graphOK),
	}

	e.collector.RecordTiming(metrics.OpSearch, time.Since(start))
	e.logger.Debug("search complete",
		"results", len(results),
		"signal", set.Signal,
		"partial", set.Partial,
		"took", time.Since(start))
	return set, nil
}

func (e *Engine) applyQueryDefaults(q models.Query) models.Query {
	if q.Threshold == 0 {
		q.Threshold = e.cfg.DefaultThreshold
	}
	if q.Limit == 0 {
		q.Limit = e.cfg.DefaultLimit
	}
	if q.MaxHops == 0 {
		q.MaxHops = e.cfg.DefaultMaxHops
	}
	return q
}

func resultSignal(vectorOK, graphOK bool) models.Signal {
	switch {
	case vectorOK && graphOK:
		return models.SignalFused
	case graphOK:
		return models.SignalGraph
	default:
		return models.SignalVector
	}
}

func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	emb, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.collector.RecordError(metrics.OpEmbedding)
		return nil, err
	}
	e.collector.RecordTiming(metrics.OpEmbedding, time.Since(start))
	return emb, nil
}

// vectorSignal runs the similarity query with a per-call timeout, retrying
// once on timeout.
func (e *Engine) vectorSignal(ctx context.Context, q models.Query) ([]models.RankedResult, error) {
	var hits []vector.Hit
	err := e.withRetry(ctx, metrics.OpVectorQuery, func(callCtx context.Context) error {
		var err error
		hits, err = e.vectors.Search(callCtx, q.Embedding, q.Threshold, q.Limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]models.RankedResult, 0, len(hits))
	for _, h := range hits {
		score := h.Similarity
		results = append(results, models.RankedResult{
			Article:     h.Article,
			VectorScore: &score,
			Signals:     []models.Signal{models.SignalVector},
		})
	}
	return results, nil
}

// graphSignal resolves the focus entity, expands it through the relationship
// graph and scores the articles mentioning any entity in the expansion. A
// focus entity with no graph presence yields an empty signal, not an error.
func (e *Engine) graphSignal(ctx context.Context, q models.Query) ([]models.RankedResult, error) {
	var results []models.RankedResult
	err := e.withRetry(ctx, metrics.OpGraphQuery, func(callCtx context.Context) error {
		focus, err := e.entities.FindEntity(callCtx, q.FocusEntity)
		if errors.Is(err, models.ErrEntityNotFound) {
			results = nil
			return nil
		}
		if err != nil {
			return err
		}

		keys := []string{focus.Key()}
		if q.MaxHops > 0 {
			related, err := e.entities.RelatedEntities(callCtx, focus.Key(), q.MaxHops, q.Limit*4)
			if err != nil {
				return err
			}
			for _, r := range related {
				keys = append(keys, r.Entity.Key())
			}
		}

		matches, err := e.entities.ArticlesMentioning(callCtx, keys, q.Limit*4)
		if err != nil {
			return err
		}

		weights := FusionWeights{
			EntityCoeff:     e.cfg.EntityCoeff,
			ConfidenceCoeff: e.cfg.ConfidenceCoeff,
		}
		results = make([]models.RankedResult, 0, len(matches))
		for _, m := range matches {
			var confidenceSum float64
			for _, c := range m.Confidences {
				confidenceSum += c
			}
			score := GraphScore(len(m.MatchedEntities), confidenceSum, weights)
			results = append(results, models.RankedResult{
				Article:         m.Article,
				GraphScore:      &score,
				Signals:         []models.Signal{models.SignalGraph},
				MatchedEntities: m.MatchedEntities,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// withRetry runs one adapter call under the configured timeout, retrying
// exactly once when the call times out.
func (e *Engine) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
		err := call(callCtx)
		cancel()

		if err == nil {
			e.collector.RecordTiming(op, time.Since(start))
			return nil
		}
		e.collector.RecordError(op)
		if !errors.Is(err, models.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == 0 {
			e.logger.Warn("adapter call timed out, retrying", "op", op)
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", models.ErrTimeout, op)
		}
		return err
	}
	return nil
}
