// Package models defines data structures shared across the newsgraph engine.
package models

import (
	"strings"
	"time"
)

// Article represents a single news item in the corpus.
// The ID is the stable identity key for both stores: re-ingesting the same
// ID overwrites, never duplicates.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         *string   `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`

	// Embedding is populated by the embedding collaborator before ingestion.
	// Its length must match the configured index dimension.
	Embedding []float32 `json:"embedding,omitempty"`
}

// ExtractedMention is one entity occurrence reported by the entity-extraction
// collaborator for an article. The engine consumes these as opaque input.
type ExtractedMention struct {
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
	Context    string     `json:"context,omitempty"`
}

// Key returns the graph identity key for the mentioned entity.
func (m ExtractedMention) Key() string {
	return EntityKey(m.Name, m.Type)
}

// TimelineEntry is a single article appearance of an entity, as returned by
// the graph adapter's timeline query (newest first).
type TimelineEntry struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// NormalizeEntityName lowercases an entity surface form and collapses
// internal whitespace so that "Elon  Musk" and "elon musk" share identity.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// EntityKey builds the composite identity key for an entity. The same
// surface name with a different type is a distinct entity.
func EntityKey(name string, typ EntityType) string {
	return NormalizeEntityName(name) + "|" + string(typ)
}
