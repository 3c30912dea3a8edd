package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newsmesh/newsgraph/internal/models"
)

type memoryMention struct {
	articleID  string
	entityKey  string
	confidence float64
	context    string
	seenAt     time.Time
}

type memoryRelationship struct {
	a, b     string
	relType  string
	strength int
}

// MemoryStore is an in-process Store used by tests and by the engine when no
// SurrealDB endpoint is configured. It applies the same edge-uniqueness and
// mention-count rules as the persistent client.
type MemoryStore struct {
	mu            sync.RWMutex
	articles      map[string]models.Article
	entities      map[string]*models.Entity
	mentions      map[string]*memoryMention // keyed articleID+"->"+entityKey
	relationships []*memoryRelationship
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: map[string]models.Article{},
		entities: map[string]*models.Entity{},
		mentions: map[string]*memoryMention{},
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) UpsertArticle(_ context.Context, a models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Embedding = nil
	s.articles[a.ID] = a
	return nil
}

func (s *MemoryStore) UpsertEntity(_ context.Context, name string, typ models.EntityType, description *string, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey(name, typ)
	e, ok := s.entities[key]
	if !ok {
		s.entities[key] = &models.Entity{
			Name:        strings.TrimSpace(name),
			Type:        typ,
			Description: description,
			FirstSeen:   seen,
			LastSeen:    seen,
		}
		return nil
	}
	if seen.Before(e.FirstSeen) {
		e.FirstSeen = seen
	}
	if seen.After(e.LastSeen) {
		e.LastSeen = seen
	}
	if description != nil {
		e.Description = description
	}
	return nil
}

func (s *MemoryStore) UpsertMention(_ context.Context, m models.Mention) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entityKey := models.EntityKey(m.EntityName, m.EntityType)
	key := m.ArticleID + "->" + entityKey
	if existing, ok := s.mentions[key]; ok {
		existing.confidence = m.Confidence
		existing.context = m.Context
		return false, nil
	}

	s.mentions[key] = &memoryMention{
		articleID:  m.ArticleID,
		entityKey:  entityKey,
		confidence: m.Confidence,
		context:    m.Context,
		seenAt:     m.SeenAt,
	}
	if e, ok := s.entities[entityKey]; ok {
		e.MentionCount++
	}
	return true, nil
}

func (s *MemoryStore) UpsertRelationship(_ context.Context, fromKey, toKey, relType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, b := fromKey, toKey
	if b < a {
		a, b = b, a
	}
	for _, r := range s.relationships {
		if r.a == a && r.b == b && r.relType == relType {
			r.strength++
			return nil
		}
	}
	s.relationships = append(s.relationships, &memoryRelationship{a: a, b: b, relType: relType, strength: 1})
	return nil
}

func (s *MemoryStore) FindEntity(_ context.Context, name string) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm := models.NormalizeEntityName(name)
	var best *models.Entity
	for _, e := range s.entities {
		if models.NormalizeEntityName(e.Name) != norm {
			continue
		}
		if best == nil || e.MentionCount > best.MentionCount {
			best = e
		}
	}
	if best == nil {
		return nil, models.ErrEntityNotFound
	}
	copied := *best
	return &copied, nil
}

func (s *MemoryStore) EntitiesForArticle(_ context.Context, articleID string) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entities []models.Entity
	for _, m := range s.mentions {
		if m.articleID != articleID {
			continue
		}
		if e, ok := s.entities[m.entityKey]; ok {
			entities = append(entities, *e)
		}
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Key() < entities[j].Key() })
	return entities, nil
}

func (s *MemoryStore) TimelineForEntity(_ context.Context, key string, start, end time.Time, limit int) ([]models.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []models.TimelineEntry
	for _, m := range s.mentions {
		if m.entityKey != key || m.seenAt.Before(start) || m.seenAt.After(end) {
			continue
		}
		a, ok := s.articles[m.articleID]
		if !ok {
			continue
		}
		entries = append(entries, models.TimelineEntry{
			ArticleID:   a.ID,
			Title:       a.Title,
			PublishedAt: a.PublishedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].PublishedAt.Equal(entries[j].PublishedAt) {
			return entries[i].PublishedAt.After(entries[j].PublishedAt)
		}
		return entries[i].ArticleID < entries[j].ArticleID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *MemoryStore) RelatedEntities(_ context.Context, key string, maxHops, limit int) ([]models.RelatedEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := map[string]bool{key: true}
	frontier := []string{key}
	var related []models.RelatedEntity

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		var next []string
		var level []models.RelatedEntity
		for _, cur := range frontier {
			for _, r := range s.relationships {
				var neighbor string
				switch {
				case r.a == cur:
					neighbor = r.b
				case r.b == cur:
					neighbor = r.a
				default:
					continue
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
				if e, ok := s.entities[neighbor]; ok {
					level = append(level, models.RelatedEntity{Entity: *e, Hops: hop})
				}
			}
		}
		sort.SliceStable(level, func(i, j int) bool {
			return level[i].Entity.MentionCount > level[j].Entity.MentionCount
		})
		related = append(related, level...)
		frontier = next
	}

	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

func (s *MemoryStore) CoMentioned(_ context.Context, key string, limit int) ([]models.CoMention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sharedArticles := map[string]bool{}
	for _, m := range s.mentions {
		if m.entityKey == key {
			sharedArticles[m.articleID] = true
		}
	}

	counts := map[string]int{}
	for _, m := range s.mentions {
		if m.entityKey != key && sharedArticles[m.articleID] {
			counts[m.entityKey]++
		}
	}

	coMentions := make([]models.CoMention, 0, len(counts))
	for k, n := range counts {
		e, ok := s.entities[k]
		if !ok {
			continue
		}
		coMentions = append(coMentions, models.CoMention{Entity: *e, Count: n})
	}
	sort.Slice(coMentions, func(i, j int) bool {
		if coMentions[i].Count != coMentions[j].Count {
			return coMentions[i].Count > coMentions[j].Count
		}
		return coMentions[i].Entity.Key() < coMentions[j].Entity.Key()
	})
	if limit > 0 && len(coMentions) > limit {
		coMentions = coMentions[:limit]
	}
	return coMentions, nil
}

func (s *MemoryStore) ArticlesMentioning(_ context.Context, keys []string, limit int) ([]ArticleMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := map[string]bool{}
	for _, k := range keys {
		wanted[k] = true
	}

	byArticle := map[string]*ArticleMatch{}
	for _, m := range s.mentions {
		if !wanted[m.entityKey] {
			continue
		}
		a, ok := s.articles[m.articleID]
		if !ok {
			continue
		}
		match, ok := byArticle[m.articleID]
		if !ok {
			match = &ArticleMatch{Article: a}
			byArticle[m.articleID] = match
		}
		match.MatchedEntities = append(match.MatchedEntities, m.entityKey)
		match.Confidences = append(match.Confidences, m.confidence)
	}

	matches := make([]ArticleMatch, 0, len(byArticle))
	for _, m := range byArticle {
		sort.Sort(&matchPairs{keys: m.MatchedEntities, confidences: m.Confidences})
		matches = append(matches, *m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Article.PublishedAt.Equal(matches[j].Article.PublishedAt) {
			return matches[i].Article.PublishedAt.After(matches[j].Article.PublishedAt)
		}
		return matches[i].Article.ID < matches[j].Article.ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// matchPairs sorts matched entity keys and their confidences in lockstep.
type matchPairs struct {
	keys        []string
	confidences []float64
}

func (p *matchPairs) Len() int           { return len(p.keys) }
func (p *matchPairs) Less(i, j int) bool { return p.keys[i] < p.keys[j] }
func (p *matchPairs) Swap(i, j int) {
	p.keys[i], p.keys[j] = p.keys[j], p.keys[i]
	p.confidences[i], p.confidences[j] = p.confidences[j], p.confidences[i]
}

func (s *MemoryStore) MentionEventsSince(_ context.Context, since time.Time) ([]MentionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []MentionEvent
	for _, m := range s.mentions {
		if m.seenAt.Before(since) {
			continue
		}
		e, ok := s.entities[m.entityKey]
		if !ok {
			continue
		}
		events = append(events, MentionEvent{
			EntityKey:    m.entityKey,
			Name:         e.Name,
			Type:         e.Type,
			MentionCount: e.MentionCount,
			SeenAt:       m.seenAt,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].SeenAt.Equal(events[j].SeenAt) {
			return events[i].SeenAt.Before(events[j].SeenAt)
		}
		return events[i].EntityKey < events[j].EntityKey
	})
	return events, nil
}
