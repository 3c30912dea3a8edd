package models

import (
	"strings"
	"time"
)

// EntityType is the closed set of entity categories the extractor may emit.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityEvent        EntityType = "EVENT"
	EntityOther        EntityType = "OTHER"
)

// ParseEntityType maps a free-form type tag onto the closed enumeration,
// falling back to OTHER for anything unrecognized.
func ParseEntityType(s string) EntityType {
	switch t := EntityType(strings.ToUpper(strings.TrimSpace(s))); t {
	case EntityPerson, EntityOrganization, EntityLocation, EntityEvent:
		return t
	default:
		return EntityOther
	}
}

// Entity is a named thing tracked by the graph store. Identity is the
// (normalized name, type) pair; MentionCount and LastSeen are only ever
// advanced by ingestion, never decremented.
type Entity struct {
	Name         string     `json:"name"`
	Type         EntityType `json:"type"`
	Description  *string    `json:"description,omitempty"`
	FirstSeen    time.Time  `json:"first_seen"`
	LastSeen     time.Time  `json:"last_seen"`
	MentionCount int        `json:"mention_count"`
}

// Key returns the composite identity key for this entity.
func (e Entity) Key() string {
	return EntityKey(e.Name, e.Type)
}

// Mention is the directed edge from an article to an entity. At most one
// mention edge exists per (article, entity) pair; repeat ingestion updates
// confidence and context in place.
type Mention struct {
	ArticleID  string     `json:"article_id"`
	EntityName string     `json:"entity_name"`
	EntityType EntityType `json:"entity_type"`
	Confidence float64    `json:"confidence"`
	Context    string     `json:"context,omitempty"`
	SeenAt     time.Time  `json:"seen_at"`
}

// Relationship is a typed edge between two entities. Strength counts how
// many times the relationship was corroborated and is monotonically
// non-decreasing.
type Relationship struct {
	FromKey  string    `json:"from_key"`
	ToKey    string    `json:"to_key"`
	Type     string    `json:"type"`
	Strength int       `json:"strength"`
	Created  time.Time `json:"created"`
}

// RelatedEntity pairs an entity with its traversal distance from a focus
// entity. Ordering contract: ascending hops, then descending mention count.
type RelatedEntity struct {
	Entity Entity `json:"entity"`
	Hops   int    `json:"hops"`
}

// CoMention pairs an entity with the number of articles it shares with a
// focus entity.
type CoMention struct {
	Entity Entity `json:"entity"`
	Count  int    `json:"count"`
}
