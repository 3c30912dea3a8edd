package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsmesh/newsgraph/internal/models"
)

func seedArticle(t *testing.T, s *MemoryStore, id string, published time.Time, mentions ...models.Mention) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpsertArticle(ctx, models.Article{
		ID:          id,
		Title:       "title " + id,
		Source:      "test",
		PublishedAt: published,
	}))
	for _, m := range mentions {
		m.ArticleID = id
		m.SeenAt = published
		require.NoError(t, s.UpsertEntity(ctx, m.EntityName, m.EntityType, nil, published))
		_, err := s.UpsertMention(ctx, m)
		require.NoError(t, err)
	}
}

func mention(name string, typ models.EntityType, confidence float64) models.Mention {
	return models.Mention{EntityName: name, EntityType: typ, Confidence: confidence}
}

func TestMemoryStore_MentionIdempotence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertEntity(ctx, "Tesla", models.EntityOrganization, nil, day))

	m := models.Mention{
		ArticleID:  "a1",
		EntityName: "Tesla",
		EntityType: models.EntityOrganization,
		Confidence: 0.9,
		SeenAt:     day,
	}

	created, err := s.UpsertMention(ctx, m)
	require.NoError(t, err)
	assert.True(t, created)

	// Repeat upsert refreshes but never double-counts.
	m.Confidence = 0.95
	created, err = s.UpsertMention(ctx, m)
	require.NoError(t, err)
	assert.False(t, created)

	e, err := s.FindEntity(ctx, "tesla")
	require.NoError(t, err)
	assert.Equal(t, 1, e.MentionCount)
}

func TestMemoryStore_RelationshipDirectionInsensitive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := models.EntityKey("Tesla", models.EntityOrganization)
	b := models.EntityKey("Elon Musk", models.EntityPerson)

	require.NoError(t, s.UpsertRelationship(ctx, a, b, "related_to"))
	require.NoError(t, s.UpsertRelationship(ctx, b, a, "related_to"))

	require.Len(t, s.relationships, 1)
	assert.Equal(t, 2, s.relationships[0].strength)
}

func TestMemoryStore_FindEntity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := time.Now()

	require.NoError(t, s.UpsertEntity(ctx, "Paris", models.EntityLocation, nil, day))
	require.NoError(t, s.UpsertEntity(ctx, "Paris", models.EntityPerson, nil, day))

	// Bump the location's prominence.
	_, err := s.UpsertMention(ctx, models.Mention{
		ArticleID: "a1", EntityName: "Paris", EntityType: models.EntityLocation, Confidence: 1, SeenAt: day,
	})
	require.NoError(t, err)

	e, err := s.FindEntity(ctx, "PARIS")
	require.NoError(t, err)
	assert.Equal(t, models.EntityLocation, e.Type, "higher mention count wins across types")

	_, err = s.FindEntity(ctx, "nowhere")
	require.ErrorIs(t, err, models.ErrEntityNotFound)
}

func TestMemoryStore_EntitySeenSpan(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 2, 0)

	require.NoError(t, s.UpsertEntity(ctx, "Tesla", models.EntityOrganization, nil, late))
	require.NoError(t, s.UpsertEntity(ctx, "Tesla", models.EntityOrganization, nil, early))

	e, err := s.FindEntity(ctx, "Tesla")
	require.NoError(t, err)
	assert.True(t, e.FirstSeen.Equal(early))
	assert.True(t, e.LastSeen.Equal(late))
}

func TestMemoryStore_RelatedEntitiesBFS(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := time.Now()

	names := []string{"A", "B", "C", "D"}
	keys := make([]string, len(names))
	for i, n := range names {
		require.NoError(t, s.UpsertEntity(ctx, n, models.EntityOther, nil, day))
		keys[i] = models.EntityKey(n, models.EntityOther)
	}

	// Chain A-B-C plus a shortcut A-C; D stays unreachable.
	require.NoError(t, s.UpsertRelationship(ctx, keys[0], keys[1], "related_to"))
	require.NoError(t, s.UpsertRelationship(ctx, keys[1], keys[2], "related_to"))
	require.NoError(t, s.UpsertRelationship(ctx, keys[0], keys[2], "related_to"))

	related, err := s.RelatedEntities(ctx, keys[0], 2, 10)
	require.NoError(t, err)
	require.Len(t, related, 2)

	// Both B and C are one hop away thanks to the shortcut.
	for _, r := range related {
		assert.Equal(t, 1, r.Hops, "%s should be one hop away", r.Entity.Name)
	}

	related, err = s.RelatedEntities(ctx, keys[3], 3, 10)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestMemoryStore_CoMentioned(t *testing.T) {
	s := NewMemoryStore()
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	seedArticle(t, s, "a1", day,
		mention("Tesla", models.EntityOrganization, 0.9),
		mention("Elon Musk", models.EntityPerson, 0.9),
		mention("Nevada", models.EntityLocation, 0.7))
	seedArticle(t, s, "a2", day.AddDate(0, 0, 1),
		mention("Tesla", models.EntityOrganization, 0.9),
		mention("Elon Musk", models.EntityPerson, 0.8))

	co, err := s.CoMentioned(context.Background(), models.EntityKey("Tesla", models.EntityOrganization), 10)
	require.NoError(t, err)
	require.Len(t, co, 2)
	assert.Equal(t, "Elon Musk", co[0].Entity.Name)
	assert.Equal(t, 2, co[0].Count)
	assert.Equal(t, "Nevada", co[1].Entity.Name)
	assert.Equal(t, 1, co[1].Count)
}

func TestMemoryStore_TimelineAndArticlesMentioning(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day1 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	seedArticle(t, s, "a1", day1, mention("Tesla", models.EntityOrganization, 0.9))
	seedArticle(t, s, "a2", day2, mention("Tesla", models.EntityOrganization, 0.8))

	key := models.EntityKey("Tesla", models.EntityOrganization)

	entries, err := s.TimelineForEntity(ctx, key, day1.Add(-time.Hour), day2.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a2", entries[0].ArticleID, "newest first")

	// Window excluding the second day.
	entries, err = s.TimelineForEntity(ctx, key, day1.Add(-time.Hour), day1.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	matches, err := s.ArticlesMentioning(ctx, []string{key}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a2", matches[0].Article.ID)
	assert.Equal(t, []string{key}, matches[0].MatchedEntities)

	events, err := s.MentionEventsSince(ctx, day2.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, key, events[0].EntityKey)
}
