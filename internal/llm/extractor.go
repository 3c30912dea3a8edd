package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/newsmesh/newsgraph/internal/models"
)

// Extractor pulls entity mentions out of article text.
type Extractor interface {
	Extract(ctx context.Context, title, content string) ([]models.ExtractedMention, error)
}

// ModelExtractor runs named-entity extraction through the generation model
// using a line-oriented output protocol.
type ModelExtractor struct {
	model  *Model
	logger *slog.Logger
}

// NewModelExtractor returns an extractor backed by the given model.
func NewModelExtractor(model *Model, logger *slog.Logger) *ModelExtractor {
	return &ModelExtractor{model: model, logger: logger}
}

const extractSystemPrompt = `You are a named-entity recognition system for news articles. Extract all entities mentioned in the article.

Entity types: PERSON, ORGANIZATION, LOCATION, EVENT, OTHER

Output format, one entity per line, nothing else:
ENTITY|name|type|confidence|context

Guidelines:
- name is the entity's canonical surface form as written in the article
- confidence is a number between 0.0 and 1.0
- context is a short snippet (under 120 characters) showing how the entity appears
- Do not repeat the same entity; merge duplicates into one line with the highest confidence`

// Extract runs the model over the article and parses its line protocol.
// Malformed lines are skipped, not fatal.
func (x *ModelExtractor) Extract(ctx context.Context, title, content string) ([]models.ExtractedMention, error) {
	userPrompt := fmt.Sprintf("Title: %s\n\nArticle:\n%s\n\nExtracted entities:", title, content)

	response, err := x.model.GenerateWithSystem(ctx, extractSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}

	mentions := ParseMentions(response)
	x.logger.Debug("entities extracted", "title", title, "count", len(mentions))
	return mentions, nil
}

// ParseMentions parses ENTITY|name|type|confidence|context lines. Lines that
// don't fit the protocol are dropped; duplicate (name, type) pairs keep the
// higher confidence.
func ParseMentions(response string) []models.ExtractedMention {
	seen := map[string]int{}
	var mentions []models.ExtractedMention

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "ENTITY|") {
			continue
		}

		parts := strings.SplitN(line, "|", 5)
		if len(parts) < 4 {
			continue
		}

		name := strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || confidence < 0 || confidence > 1 {
			continue
		}

		m := models.ExtractedMention{
			Name:       name,
			Type:       models.ParseEntityType(strings.TrimSpace(parts[2])),
			Confidence: confidence,
		}
		if len(parts) == 5 {
			m.Context = strings.TrimSpace(parts[4])
		}

		key := m.Key()
		if i, ok := seen[key]; ok {
			if m.Confidence > mentions[i].Confidence {
				mentions[i] = m
			}
			continue
		}
		seen[key] = len(mentions)
		mentions = append(mentions, m)
	}

	return mentions
}
