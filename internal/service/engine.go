// Package service implements the retrieval engine: ingestion, fused search,
// timelines and trending scores over the vector index and the entity graph.
package service

import (
	"log/slog"

	"github.com/newsmesh/newsgraph/internal/config"
	"github.com/newsmesh/newsgraph/internal/graph"
	"github.com/newsmesh/newsgraph/internal/llm"
	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/vector"
)

// Engine bundles the two store adapters with the fusion, timeline and
// trending logic. All operations are request-scoped; the engine keeps no
// background state of its own.
type Engine struct {
	vectors  vector.Index
	entities graph.Store

	// Embedder and extractor are optional collaborators. Search and ingest
	// accept ready embeddings/mentions, so a nil collaborator only disables
	// the convenience paths that produce them.
	embedder  llm.Embedder
	extractor llm.Extractor
	model     *llm.Model

	cfg       config.Config
	collector *metrics.Collector
	logger    *slog.Logger
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithEmbedder attaches an embedding collaborator, enabling text-only
// queries and ingest-from-file.
func WithEmbedder(e llm.Embedder) Option {
	return func(eng *Engine) { eng.embedder = e }
}

// WithExtractor attaches an entity-extraction collaborator, used when an
// article arrives without pre-annotated mentions.
func WithExtractor(x llm.Extractor) Option {
	return func(eng *Engine) { eng.extractor = x }
}

// WithModel attaches a generation model, enabling retrieval-augmented
// answering.
func WithModel(m *llm.Model) Option {
	return func(eng *Engine) { eng.model = m }
}

// NewEngine wires the engine onto its two adapters.
func NewEngine(vectors vector.Index, entities graph.Store, cfg config.Config, collector *metrics.Collector, logger *slog.Logger, opts ...Option) *Engine {
	eng := &Engine{
		vectors:   vectors,
		entities:  entities,
		cfg:       cfg,
		collector: collector,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}
