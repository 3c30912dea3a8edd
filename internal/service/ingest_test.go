package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsmesh/newsgraph/internal/graph"
	"github.com/newsmesh/newsgraph/internal/models"
	"github.com/newsmesh/newsgraph/internal/vector"
)

func TestIngest_CreatesBothSides(t *testing.T) {
	idx := vector.NewMemoryIndex(testDim)
	store := graph.NewMemoryStore()
	engine := newTestEngine(t, idx, store)
	ctx := context.Background()

	day := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	result := mustIngest(t, engine, newsArticle("a1", day, unitVec(0)),
		extracted("Tesla", models.EntityOrganization, 0.9),
		extracted("Elon Musk", models.EntityPerson, 0.8))

	assert.True(t, result.Created)
	assert.Equal(t, 2, result.NewMentions)
	assert.Equal(t, 1, result.Relationships)

	exists, err := idx.Exists(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, exists)

	entities, err := store.EntitiesForArticle(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestIngest_Idempotent(t *testing.T) {
	idx := vector.NewMemoryIndex(testDim)
	store := graph.NewMemoryStore()
	engine := newTestEngine(t, idx, store)
	ctx := context.Background()

	day := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	article := newsArticle("a1", day, unitVec(0))
	mentions := []models.ExtractedMention{
		extracted("Tesla", models.EntityOrganization, 0.9),
		extracted("Elon Musk", models.EntityPerson, 0.8),
	}

	first, err := engine.Ingest(ctx, article, mentions)
	require.NoError(t, err)
	second, err := engine.Ingest(ctx, article, mentions)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, 0, second.NewMentions, "repeat ingestion creates no edges")
	assert.Equal(t, 0, second.Relationships, "repeat ingestion adds no relationship strength")

	tesla, err := store.FindEntity(ctx, "Tesla")
	require.NoError(t, err)
	assert.Equal(t, 1, tesla.MentionCount, "mention count must not double-count")

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngest_DuplicateMentionsCollapse(t *testing.T) {
	idx := vector.NewMemoryIndex(testDim)
	store := graph.NewMemoryStore()
	engine := newTestEngine(t, idx, store)

	day := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	result := mustIngest(t, engine, newsArticle("a1", day, unitVec(0)),
		extracted("Tesla", models.EntityOrganization, 0.9),
		extracted("  TESLA ", models.EntityOrganization, 0.7))

	assert.Equal(t, 1, result.NewMentions, "same entity key collapses")
	assert.Equal(t, 0, result.Relationships)
}

// relRecordingStore captures the relationship types written during ingest.
type relRecordingStore struct {
	graph.Store
	relTypes []string
}

func (s *relRecordingStore) UpsertRelationship(ctx context.Context, fromKey, toKey, relType string) error {
	s.relTypes = append(s.relTypes, relType)
	return s.Store.UpsertRelationship(ctx, fromKey, toKey, relType)
}

func TestIngest_CoMentionEdgesUseRelatedTo(t *testing.T) {
	store := &relRecordingStore{Store: graph.NewMemoryStore()}
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), store)

	day := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	result := mustIngest(t, engine, newsArticle("a1", day, unitVec(0)),
		extracted("Tesla", models.EntityOrganization, 0.9),
		extracted("Elon Musk", models.EntityPerson, 0.8))

	assert.Equal(t, 1, result.Relationships)
	require.Len(t, store.relTypes, 1)
	assert.Equal(t, "related_to", store.relTypes[0])
}

func TestIngest_DimensionMismatch(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())

	_, err := engine.Ingest(context.Background(),
		newsArticle("a1", time.Now(), []float32{1, 2}), nil)
	require.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestIngest_MissingID(t *testing.T) {
	engine := newTestEngine(t, vector.NewMemoryIndex(testDim), graph.NewMemoryStore())

	a := newsArticle("", time.Now(), unitVec(0))
	_, err := engine.Ingest(context.Background(), a, nil)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

// The canonical end-to-end scenario: two articles across two days, one
// shared entity, graph traversal and trending both pick it up.
func TestIngest_EndToEnd(t *testing.T) {
	idx := vector.NewMemoryIndex(testDim)
	store := graph.NewMemoryStore()
	engine := newTestEngine(t, idx, store)
	ctx := context.Background()

	now := time.Now().UTC()
	day1 := now.AddDate(0, 0, -2)
	day2 := now.AddDate(0, 0, -1)

	mustIngest(t, engine, newsArticle("a1", day1, unitVec(0)),
		extracted("Tesla", models.EntityOrganization, 0.9),
		extracted("Elon Musk", models.EntityPerson, 0.9))
	mustIngest(t, engine, newsArticle("a2", day2, unitVec(1)),
		extracted("Tesla", models.EntityOrganization, 0.8))

	musk, err := store.FindEntity(ctx, "Elon Musk")
	require.NoError(t, err)
	related, err := store.RelatedEntities(ctx, musk.Key(), 1, 10)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Tesla", related[0].Entity.Name)
	assert.Equal(t, 1, related[0].Hops)

	topics, err := engine.Trending(ctx, 7, 10)
	require.NoError(t, err)
	require.NotEmpty(t, topics)
	assert.Equal(t, "Tesla", topics[0].Entity.Name,
		"twice-mentioned entity must outrank single-mention entities")
	assert.Equal(t, 2, topics[0].WindowMentions)
}
