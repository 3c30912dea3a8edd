package graph

import (
	"context"
	"sort"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/newsmesh/newsgraph/internal/models"
)

// countRow carries a single count aggregate.
type countRow struct {
	C int `json:"c"`
}

// entityRow mirrors the entity table fields selected by queries.
type entityRow struct {
	Name         string            `json:"name"`
	Type         models.EntityType `json:"type"`
	Description  *string           `json:"description,omitempty"`
	FirstSeen    time.Time         `json:"first_seen"`
	LastSeen     time.Time         `json:"last_seen"`
	MentionCount int               `json:"mention_count"`
}

func (r entityRow) toEntity() models.Entity {
	return models.Entity{
		Name:         r.Name,
		Type:         r.Type,
		Description:  r.Description,
		FirstSeen:    r.FirstSeen,
		LastSeen:     r.LastSeen,
		MentionCount: r.MentionCount,
	}
}

func articleRecord(id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("article", id)
}

func entityRecord(key string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("entity", key)
}

// UpsertArticle creates or replaces the graph-side article node.
func (c *Client) UpsertArticle(ctx context.Context, a models.Article) error {
	sql := `
		UPSERT type::record("article", $id) SET
			title = $title,
			source = $source,
			url = $url,
			published = type::datetime($published)
	`
	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":        a.ID,
		"title":     a.Title,
		"source":    a.Source,
		"url":       a.URL,
		"published": a.PublishedAt.UTC().Format(time.RFC3339Nano),
	})
	return wrapQueryError("upsert article", err)
}

// UpsertEntity creates the entity on first sight, otherwise extends its
// seen span. The name field keeps the first trimmed surface form; identity
// lives in the record key.
func (c *Client) UpsertEntity(ctx context.Context, name string, typ models.EntityType, description *string, seen time.Time) error {
	sql := `
		UPSERT type::record("entity", $key) SET
			name = name ?? $name,
			norm_name = $norm_name,
			type = $type,
			description = $description ?? description,
			first_seen = array::min([first_seen ?? type::datetime($seen), type::datetime($seen)]),
			last_seen = array::max([last_seen ?? type::datetime($seen), type::datetime($seen)]),
			mention_count = mention_count ?? 0
	`
	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"key":         models.EntityKey(name, typ),
		"name":        name,
		"norm_name":   models.NormalizeEntityName(name),
		"type":        string(typ),
		"description": description,
		"seen":        seen.UTC().Format(time.RFC3339Nano),
	})
	return wrapQueryError("upsert entity", err)
}

// UpsertMention writes the article->entity edge. The mention count of the
// entity advances only when the edge is created, so repeat ingestion of the
// same (article, entity) pair never double-counts.
func (c *Client) UpsertMention(ctx context.Context, m models.Mention) (bool, error) {
	article := articleRecord(m.ArticleID)
	entity := entityRecord(models.EntityKey(m.EntityName, m.EntityType))

	existsSQL := `SELECT count() AS c FROM mentions WHERE in = $article AND out = $entity`
	existsResult, err := surrealdb.Query[[]countRow](ctx, c.db, existsSQL, map[string]any{
		"article": article,
		"entity":  entity,
	})
	if err != nil {
		return false, wrapQueryError("check mention exists", err)
	}

	exists := false
	if existsResult != nil && len(*existsResult) > 0 && len((*existsResult)[0].Result) > 0 {
		exists = (*existsResult)[0].Result[0].C > 0
	}

	vars := map[string]any{
		"article":    article,
		"entity":     entity,
		"confidence": m.Confidence,
		"context":    m.Context,
		"seen_at":    m.SeenAt.UTC().Format(time.RFC3339Nano),
	}

	if exists {
		sql := `
			UPDATE mentions SET
				confidence = $confidence,
				context = $context
			WHERE in = $article AND out = $entity
		`
		if _, err := surrealdb.Query[any](ctx, c.db, sql, vars); err != nil {
			return false, wrapQueryError("update mention", err)
		}
		return false, nil
	}

	sql := `
		RELATE $article->mentions->$entity SET
			confidence = $confidence,
			context = $context,
			seen_at = type::datetime($seen_at);
		UPDATE $entity SET mention_count += 1;
	`
	if _, err := surrealdb.Query[any](ctx, c.db, sql, vars); err != nil {
		return false, wrapQueryError("create mention", err)
	}
	return true, nil
}

// UpsertRelationship creates the typed edge with strength 1 or increments
// its strength. The unique_key index treats (a,b) and (b,a) as the same
// edge.
func (c *Client) UpsertRelationship(ctx context.Context, fromKey, toKey, relType string) error {
	from := entityRecord(fromKey)
	to := entityRecord(toKey)

	existsSQL := `
		SELECT count() AS c FROM related_to
		WHERE rel_type = $rel_type
			AND ((in = $from AND out = $to) OR (in = $to AND out = $from))
	`
	vars := map[string]any{
		"from":     from,
		"to":       to,
		"rel_type": relType,
	}

	existsResult, err := surrealdb.Query[[]countRow](ctx, c.db, existsSQL, vars)
	if err != nil {
		return wrapQueryError("check relationship exists", err)
	}

	exists := false
	if existsResult != nil && len(*existsResult) > 0 && len((*existsResult)[0].Result) > 0 {
		exists = (*existsResult)[0].Result[0].C > 0
	}

	var sql string
	if exists {
		sql = `
			UPDATE related_to SET strength += 1
			WHERE rel_type = $rel_type
				AND ((in = $from AND out = $to) OR (in = $to AND out = $from))
		`
	} else {
		sql = `RELATE $from->related_to->$to SET rel_type = $rel_type, strength = 1`
	}

	if _, err := surrealdb.Query[any](ctx, c.db, sql, vars); err != nil {
		return wrapQueryError("upsert relationship", err)
	}
	return nil
}

// FindEntity resolves a surface name to the most prominent entity carrying
// it. Lookup matches the normalized name, so casing and stray whitespace do
// not matter; ties across types resolve to the higher mention count.
func (c *Client) FindEntity(ctx context.Context, name string) (*models.Entity, error) {
	sql := `
		SELECT name, type, description, first_seen, last_seen, mention_count
		FROM entity
		WHERE norm_name = $name
		ORDER BY mention_count DESC
		LIMIT 1
	`
	results, err := surrealdb.Query[[]entityRow](ctx, c.db, sql, map[string]any{
		"name": models.NormalizeEntityName(name),
	})
	if err != nil {
		return nil, wrapQueryError("find entity", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, models.ErrEntityNotFound
	}
	entity := (*results)[0].Result[0].toEntity()
	return &entity, nil
}

// EntitiesForArticle returns all entities mentioned by an article.
func (c *Client) EntitiesForArticle(ctx context.Context, articleID string) ([]models.Entity, error) {
	sql := `
		SELECT
			out.name AS name,
			out.type AS type,
			out.description AS description,
			out.first_seen AS first_seen,
			out.last_seen AS last_seen,
			out.mention_count AS mention_count
		FROM mentions WHERE in = $article
	`
	results, err := surrealdb.Query[[]entityRow](ctx, c.db, sql, map[string]any{
		"article": articleRecord(articleID),
	})
	if err != nil {
		return nil, wrapQueryError("entities for article", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Entity{}, nil
	}
	entities := make([]models.Entity, 0, len((*results)[0].Result))
	for _, row := range (*results)[0].Result {
		entities = append(entities, row.toEntity())
	}
	return entities, nil
}

// timelineRow mirrors one mention edge joined with its article.
type timelineRow struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published"`
}

// TimelineForEntity returns mention events for an entity inside [start, end],
// newest first. A non-positive limit returns every event in the range.
func (c *Client) TimelineForEntity(ctx context.Context, key string, start, end time.Time, limit int) ([]models.TimelineEntry, error) {
	sql := `
		SELECT
			record::id(in) AS article_id,
			in.title AS title,
			in.published AS published
		FROM mentions
		WHERE out = $entity
			AND seen_at >= type::datetime($start)
			AND seen_at <= type::datetime($end)
		ORDER BY published DESC
	`
	vars := map[string]any{
		"entity": entityRecord(key),
		"start":  start.UTC().Format(time.RFC3339Nano),
		"end":    end.UTC().Format(time.RFC3339Nano),
	}
	if limit > 0 {
		sql += ` LIMIT $limit`
		vars["limit"] = limit
	}
	results, err := surrealdb.Query[[]timelineRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, wrapQueryError("timeline for entity", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.TimelineEntry{}, nil
	}
	entries := make([]models.TimelineEntry, 0, len((*results)[0].Result))
	for _, row := range (*results)[0].Result {
		entries = append(entries, models.TimelineEntry{
			ArticleID:   row.ArticleID,
			Title:       row.Title,
			PublishedAt: row.PublishedAt,
		})
	}
	return entries, nil
}

// neighborRow carries an entity row plus its record key.
type neighborRow struct {
	Key string `json:"key"`
	entityRow
}

// RelatedEntities walks relationship edges breadth-first from the focus
// entity. Hop distances are assembled client-side so they stay exact even
// when a closer path to the same entity exists.
func (c *Client) RelatedEntities(ctx context.Context, key string, maxHops, limit int) ([]models.RelatedEntity, error) {
	visited := map[string]bool{key: true}
	frontier := []surrealmodels.RecordID{entityRecord(key)}

	var related []models.RelatedEntity

	sql := `
		SELECT
			record::id(id) AS key,
			name, type, description, first_seen, last_seen, mention_count
		FROM entity
		WHERE id IN (SELECT VALUE out FROM related_to WHERE in IN $frontier)
			OR id IN (SELECT VALUE in FROM related_to WHERE out IN $frontier)
	`

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		results, err := surrealdb.Query[[]neighborRow](ctx, c.db, sql, map[string]any{
			"frontier": frontier,
		})
		if err != nil {
			return nil, wrapQueryError("related entities", err)
		}

		var next []surrealmodels.RecordID
		var level []models.RelatedEntity
		if results != nil && len(*results) > 0 {
			for _, row := range (*results)[0].Result {
				if visited[row.Key] {
					continue
				}
				visited[row.Key] = true
				next = append(next, entityRecord(row.Key))
				level = append(level, models.RelatedEntity{Entity: row.toEntity(), Hops: hop})
			}
		}

		// More prominent entities rank first within the same hop.
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

// coMentionRow is one grouped co-mention aggregate.
type coMentionRow struct {
	Name         string            `json:"name"`
	Type         models.EntityType `json:"type"`
	MentionCount int               `json:"mention_count"`
	Count        int               `json:"count"`
}

// CoMentioned returns entities sharing articles with the given entity.
func (c *Client) CoMentioned(ctx context.Context, key string, limit int) ([]models.CoMention, error) {
	sql := `
		SELECT
			out.name AS name,
			out.type AS type,
			out.mention_count AS mention_count,
			count() AS count
		FROM mentions
		WHERE in IN (SELECT VALUE in FROM mentions WHERE out = $entity)
			AND out != $entity
		GROUP BY name, type, mention_count
		ORDER BY count DESC
		LIMIT $limit
	`
	results, err := surrealdb.Query[[]coMentionRow](ctx, c.db, sql, map[string]any{
		"entity": entityRecord(key),
		"limit":  limit,
	})
	if err != nil {
		return nil, wrapQueryError("co-mentioned", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.CoMention{}, nil
	}
	coMentions := make([]models.CoMention, 0, len((*results)[0].Result))
	for _, row := range (*results)[0].Result {
		coMentions = append(coMentions, models.CoMention{
			Entity: models.Entity{
				Name:         row.Name,
				Type:         row.Type,
				MentionCount: row.MentionCount,
			},
			Count: row.Count,
		})
	}
	return coMentions, nil
}

// matchRow joins one mention edge with its article fields.
type matchRow struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         *string   `json:"url,omitempty"`
	PublishedAt time.Time `json:"published"`
	EntityKey   string    `json:"entity_key"`
	Confidence  float64   `json:"confidence"`
}

// ArticlesMentioning returns articles mentioning any of the given entities,
// grouped per article, newest first.
func (c *Client) ArticlesMentioning(ctx context.Context, keys []string, limit int) ([]ArticleMatch, error) {
	if len(keys) == 0 {
		return []ArticleMatch{}, nil
	}

	records := make([]surrealmodels.RecordID, len(keys))
	for i, k := range keys {
		records[i] = entityRecord(k)
	}

	sql := `
		SELECT
			record::id(in) AS article_id,
			in.title AS title,
			in.source AS source,
			in.url AS url,
			in.published AS published,
			record::id(out) AS entity_key,
			confidence
		FROM mentions
		WHERE out IN $keys
		ORDER BY published DESC
	`
	results, err := surrealdb.Query[[]matchRow](ctx, c.db, sql, map[string]any{
		"keys": records,
	})
	if err != nil {
		return nil, wrapQueryError("articles mentioning", err)
	}

	if results == nil || len(*results) == 0 {
		return []ArticleMatch{}, nil
	}

	// Group edges per article, keeping the published-desc encounter order.
	byArticle := map[string]*ArticleMatch{}
	var order []string
	for _, row := range (*results)[0].Result {
		match, ok := byArticle[row.ArticleID]
		if !ok {
			match = &ArticleMatch{
				Article: models.Article{
					ID:          row.ArticleID,
					Title:       row.Title,
					Source:      row.Source,
					URL:         row.URL,
					PublishedAt: row.PublishedAt,
				},
			}
			byArticle[row.ArticleID] = match
			order = append(order, row.ArticleID)
		}
		match.MatchedEntities = append(match.MatchedEntities, row.EntityKey)
		match.Confidences = append(match.Confidences, row.Confidence)
	}

	matches := make([]ArticleMatch, 0, len(order))
	for _, id := range order {
		matches = append(matches, *byArticle[id])
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// eventRow is one raw mention occurrence.
type eventRow struct {
	EntityKey    string            `json:"entity_key"`
	Name         string            `json:"name"`
	Type         models.EntityType `json:"type"`
	MentionCount int               `json:"mention_count"`
	SeenAt       time.Time         `json:"seen_at"`
}

// MentionEventsSince returns all mention events at or after the given
// instant.
func (c *Client) MentionEventsSince(ctx context.Context, since time.Time) ([]MentionEvent, error) {
	sql := `
		SELECT
			record::id(out) AS entity_key,
			out.name AS name,
			out.type AS type,
			out.mention_count AS mention_count,
			seen_at
		FROM mentions
		WHERE seen_at >= type::datetime($since)
	`
	results, err := surrealdb.Query[[]eventRow](ctx, c.db, sql, map[string]any{
		"since": since.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, wrapQueryError("mention events", err)
	}

	if results == nil || len(*results) == 0 {
		return []MentionEvent{}, nil
	}
	events := make([]MentionEvent, 0, len((*results)[0].Result))
	for _, row := range (*results)[0].Result {
		events = append(events, MentionEvent{
			EntityKey:    row.EntityKey,
			Name:         row.Name,
			Type:         row.Type,
			MentionCount: row.MentionCount,
			SeenAt:       row.SeenAt,
		})
	}
	return events, nil
}
