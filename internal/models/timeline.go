package models

import "time"

// Trend classifies mention activity across a timeline range.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// DayBucket aggregates mention events for one UTC calendar day.
type DayBucket struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Timeline is the temporal aggregation of one entity's mentions.
type Timeline struct {
	Entity Entity    `json:"entity"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`

	Entries []TimelineEntry `json:"entries"`
	Buckets []DayBucket     `json:"buckets"`

	TotalMentions int `json:"total_mentions"`

	// MostActiveDay is the single day with the highest event count.
	MostActiveDay time.Time `json:"most_active_day"`

	Trend Trend `json:"trend"`

	// TopCoMentions surfaces the entities most often co-mentioned with the
	// timeline's subject.
	TopCoMentions []CoMention `json:"top_co_mentions,omitempty"`
}

// TrendingTopic is one entity ranked by mention velocity over a sliding
// window.
type TrendingTopic struct {
	Entity Entity `json:"entity"`

	// Score is recent mention velocity over the historical daily baseline.
	Score float64 `json:"score"`

	// RecentMentions counts mentions in the most recent third of the window.
	RecentMentions int `json:"recent_mentions"`

	// WindowMentions counts mentions over the whole window.
	WindowMentions int `json:"window_mentions"`
}
