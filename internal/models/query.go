package models

// Query describes one search request. Queries are ephemeral and never
// persisted.
type Query struct {
	Text string `json:"text"`

	// Embedding is the query vector. When empty, the engine embeds Text
	// through its configured embedder.
	Embedding []float32 `json:"embedding,omitempty"`

	// FocusEntity optionally anchors the graph signal on a specific entity
	// surface name.
	FocusEntity string `json:"focus_entity,omitempty"`

	// Threshold is the minimum cosine similarity for vector hits, in [0,1].
	Threshold float64 `json:"threshold"`

	// Limit bounds the fused result list. Must be > 0.
	Limit int `json:"limit"`

	// MaxHops bounds graph traversal from the focus entity.
	MaxHops int `json:"max_hops"`
}

// Signal identifies which retrieval signals contributed to a result.
type Signal string

const (
	SignalVector Signal = "vector"
	SignalGraph  Signal = "graph"
	SignalFused  Signal = "fused"
)

// RankedResult is one article in the fused ranking, with the score
// breakdown and the entities that connected it to the query.
type RankedResult struct {
	Article Article `json:"article"`

	// Score is the fused relevance in [0,1].
	Score float64 `json:"score"`

	// VectorScore and GraphScore are the per-signal components; a nil value
	// means that signal did not see this article.
	VectorScore *float64 `json:"vector_score,omitempty"`
	GraphScore  *float64 `json:"graph_score,omitempty"`

	// Signals lists which sides contributed ("vector", "graph").
	Signals []Signal `json:"signals"`

	// MatchedEntities are the entity keys that linked this article to the
	// query via the graph.
	MatchedEntities []string `json:"matched_entities,omitempty"`
}

// ResultSet is the outcome of one search, carrying the degradation state so
// callers can distinguish full from partial operation.
type ResultSet struct {
	Results []RankedResult `json:"results"`

	// Signal reports how the set was produced: fused, vector_only or
	// graph_only.
	Signal Signal `json:"signal"`

	// Partial is true when one side timed out and the set was degraded to a
	// single signal.
	Partial bool `json:"partial"`
}
