package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/models"
)

// RelCoMentioned is the relationship type written between entities sharing
// an article.
const RelCoMentioned = "related_to"

// IngestResult reports what one ingest call changed.
type IngestResult struct {
	ArticleID string

	// Created is true when the article was new to the vector index, false
	// on re-ingestion.
	Created bool

	// NewMentions counts mention edges created by this call; repeat edges
	// only refresh confidence and context.
	NewMentions int

	// Relationships counts relationship upserts performed by this call.
	Relationships int
}

// Ingest writes one article into both stores. Every sub-step is a keyed
// upsert, so retrying after a partial failure is safe. The vector index is
// written first and is the leader for existence: a failure there aborts
// before the graph is touched.
func (e *Engine) Ingest(ctx context.Context, article models.Article, mentions []models.ExtractedMention) (*IngestResult, error) {
	start := time.Now()

	if article.ID == "" {
		return nil, fmt.Errorf("%w: article ID is required", models.ErrInvalidArgument)
	}
	if len(article.Embedding) != e.vectors.Dimension() {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, index expects %d",
			models.ErrDimensionMismatch, len(article.Embedding), e.vectors.Dimension())
	}

	existed, err := e.vectors.Exists(ctx, article.ID)
	if err != nil {
		e.collector.RecordError(metrics.OpIngest)
		return nil, fmt.Errorf("ingest %s: %w", article.ID, err)
	}
	if err := e.vectors.Upsert(ctx, article); err != nil {
		e.collector.RecordError(metrics.OpIngest)
		return nil, fmt.Errorf("ingest %s: %w", article.ID, err)
	}

	if err := e.entities.UpsertArticle(ctx, article); err != nil {
		e.collector.RecordError(metrics.OpIngest)
		return nil, fmt.Errorf("ingest %s: %w", article.ID, err)
	}

	result := &IngestResult{ArticleID: article.ID, Created: !existed}

	// newEdges tracks which entities gained a mention edge in this call;
	// relationship strength only advances for pairs with fresh evidence, so
	// re-ingesting an unchanged article leaves the graph counts alone.
	newEdges := map[string]bool{}
	var keys []string
	seen := map[string]bool{}

	for _, m := range mentions {
		key := m.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)

		var description *string
		if m.Context != "" {
			description = &m.Context
		}
		if err := e.entities.UpsertEntity(ctx, m.Name, m.Type, description, article.PublishedAt); err != nil {
			e.collector.RecordError(metrics.OpIngest)
			return nil, fmt.Errorf("ingest %s: upsert entity %s: %w", article.ID, key, err)
		}

		created, err := e.entities.UpsertMention(ctx, models.Mention{
			ArticleID:  article.ID,
			EntityName: m.Name,
			EntityType: m.Type,
			Confidence: m.Confidence,
			Context:    m.Context,
			SeenAt:     article.PublishedAt,
		})
		if err != nil {
			e.collector.RecordError(metrics.OpIngest)
			return nil, fmt.Errorf("ingest %s: upsert mention %s: %w", article.ID, key, err)
		}
		if created {
			newEdges[key] = true
			result.NewMentions++
		}
	}

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if !newEdges[keys[i]] && !newEdges[keys[j]] {
				continue
			}
			if err := e.entities.UpsertRelationship(ctx, keys[i], keys[j], RelCoMentioned); err != nil {
				e.collector.RecordError(metrics.OpIngest)
				return nil, fmt.Errorf("ingest %s: relate %s and %s: %w", article.ID, keys[i], keys[j], err)
			}
			result.Relationships++
		}
	}

	e.collector.RecordTiming(metrics.OpIngest, time.Since(start))
	e.logger.Info("article ingested",
		"article", article.ID,
		"created", result.Created,
		"new_mentions", result.NewMentions,
		"relationships", result.Relationships,
		"took", time.Since(start))
	return result, nil
}

// IngestDocument is the convenience path for raw article text: it fills in
// the embedding and, when no pre-annotated mentions are supplied, runs the
// extraction collaborator.
func (e *Engine) IngestDocument(ctx context.Context, article models.Article, mentions []models.ExtractedMention) (*IngestResult, error) {
	if len(article.Embedding) == 0 {
		if e.embedder == nil {
			return nil, fmt.Errorf("%w: article has no embedding and no embedder is configured", models.ErrInvalidArgument)
		}
		emb, err := e.embedText(ctx, embedInput(article))
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", article.ID, err)
		}
		article.Embedding = emb
	}

	if len(mentions) == 0 && e.extractor != nil {
		start := time.Now()
		extracted, err := e.extractor.Extract(ctx, article.Title, article.Content)
		if err != nil {
			e.collector.RecordError(metrics.OpExtraction)
			return nil, fmt.Errorf("extract %s: %w", article.ID, err)
		}
		e.collector.RecordTiming(metrics.OpExtraction, time.Since(start))
		mentions = extracted
	}

	return e.Ingest(ctx, article, mentions)
}

// embedInput is the text handed to the embedder: title plus body, title
// first so it carries weight in truncating models.
func embedInput(a models.Article) string {
	if a.Title == "" {
		return a.Content
	}
	return strings.TrimSpace(a.Title + "\n\n" + a.Content)
}
