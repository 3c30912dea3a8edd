package graph

import (
	"context"
	"time"

	"github.com/newsmesh/newsgraph/internal/models"
)

// ArticleMatch is one article discovered through the graph signal, with the
// entities that connected it to the query.
type ArticleMatch struct {
	Article         models.Article
	MatchedEntities []string
	Confidences     []float64
}

// MentionEvent is one raw mention occurrence inside a time window, used by
// the trending scorer.
type MentionEvent struct {
	EntityKey    string
	Name         string
	Type         models.EntityType
	MentionCount int
	SeenAt       time.Time
}

// Store is the entity-graph adapter contract. The SurrealDB client and the
// in-memory store both satisfy it, so either can back the engine services.
type Store interface {
	// UpsertArticle creates or replaces the graph-side article node.
	UpsertArticle(ctx context.Context, a models.Article) error

	// UpsertEntity creates the entity on first sight, otherwise extends its
	// first/last-seen span. Mention counting happens in UpsertMention so the
	// edge-uniqueness invariant drives it.
	UpsertEntity(ctx context.Context, name string, typ models.EntityType, description *string, seen time.Time) error

	// UpsertMention writes the article->entity edge. Returns true when the
	// edge is new, in which case the entity's mention count was incremented;
	// a repeat upsert only refreshes confidence and context.
	UpsertMention(ctx context.Context, m models.Mention) (bool, error)

	// UpsertRelationship creates the typed edge with strength 1 or
	// increments its strength. Direction-insensitive: (a,b) and (b,a)
	// address the same edge.
	UpsertRelationship(ctx context.Context, fromKey, toKey, relType string) error

	// FindEntity resolves a surface name to the most prominent entity
	// carrying it (highest mention count across types). Returns
	// models.ErrEntityNotFound when the name has no graph presence.
	FindEntity(ctx context.Context, name string) (*models.Entity, error)

	// EntitiesForArticle returns all entities mentioned by an article.
	EntitiesForArticle(ctx context.Context, articleID string) ([]models.Entity, error)

	// TimelineForEntity returns mention events for an entity inside
	// [start, end], newest first.
	TimelineForEntity(ctx context.Context, key string, start, end time.Time, limit int) ([]models.TimelineEntry, error)

	// RelatedEntities traverses relationship edges from an entity, up to
	// maxHops. Ordered by ascending hop distance, then descending mention
	// count.
	RelatedEntities(ctx context.Context, key string, maxHops, limit int) ([]models.RelatedEntity, error)

	// CoMentioned returns entities sharing articles with the given entity,
	// ordered by shared-article count descending.
	CoMentioned(ctx context.Context, key string, limit int) ([]models.CoMention, error)

	// ArticlesMentioning returns articles mentioning any of the given
	// entities, newest first, bounded by limit.
	ArticlesMentioning(ctx context.Context, keys []string, limit int) ([]ArticleMatch, error)

	// MentionEventsSince returns all mention events at or after the given
	// instant.
	MentionEventsSince(ctx context.Context, since time.Time) ([]MentionEvent, error)
}

// Compile-time check that the SurrealDB client implements Store.
var _ Store = (*Client)(nil)
