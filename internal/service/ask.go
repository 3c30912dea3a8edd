package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsmesh/newsgraph/internal/models"
)

// Answer is the outcome of a retrieval-augmented question.
type Answer struct {
	Text    string
	Sources []models.RankedResult

	// Partial mirrors the underlying search's degradation flag.
	Partial bool
}

const maxPassageChars = 2000

// Ask retrieves the articles most relevant to the question and hands them
// to the generation model for synthesis. Requires both an embedder and a
// model.
func (e *Engine) Ask(ctx context.Context, question, focusEntity string, limit int) (*Answer, error) {
	set, passages, err := e.retrieveForQuestion(ctx, question, focusEntity, limit)
	if err != nil || len(set.Results) == 0 {
		return emptyOrErrAnswer(set, err)
	}

	text, err := e.model.SynthesizeAnswer(ctx, question, passages)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	return &Answer{
		Text:    text,
		Sources: set.Results,
		Partial: set.Partial,
	}, nil
}

// AskStream is Ask with the answer streamed token by token through onToken.
// The returned Answer carries the complete text once streaming finishes.
func (e *Engine) AskStream(ctx context.Context, question, focusEntity string, limit int, onToken func(token string) error) (*Answer, error) {
	set, passages, err := e.retrieveForQuestion(ctx, question, focusEntity, limit)
	if err != nil || len(set.Results) == 0 {
		return emptyOrErrAnswer(set, err)
	}

	text, err := e.model.SynthesizeAnswerStream(ctx, question, passages, onToken)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	return &Answer{
		Text:    text,
		Sources: set.Results,
		Partial: set.Partial,
	}, nil
}

// retrieveForQuestion runs the fused search for a question and formats the
// hits as numbered passages for the model.
func (e *Engine) retrieveForQuestion(ctx context.Context, question, focusEntity string, limit int) (*models.ResultSet, string, error) {
	if e.embedder == nil || e.model == nil {
		return nil, "", fmt.Errorf("%w: ask requires an embedder and a model", models.ErrInvalidArgument)
	}
	if strings.TrimSpace(question) == "" {
		return nil, "", fmt.Errorf("%w: question is empty", models.ErrInvalidArgument)
	}

	set, err := e.Search(ctx, models.Query{
		Text:        question,
		FocusEntity: focusEntity,
		Limit:       limit,
	})
	if err != nil {
		return nil, "", err
	}

	var sb strings.Builder
	for i, r := range set.Results {
		passage := r.Article.Content
		if len(passage) > maxPassageChars {
			passage = passage[:maxPassageChars]
		}
		fmt.Fprintf(&sb, "[%d] %s (%s, %s)\n%s\n\n",
			i+1, r.Article.Title, r.Article.Source,
			r.Article.PublishedAt.Format("2006-01-02"), passage)
	}
	return set, sb.String(), nil
}

func emptyOrErrAnswer(set *models.ResultSet, err error) (*Answer, error) {
	if err != nil {
		return nil, err
	}
	return &Answer{
		Text:    "No relevant articles were found for this question.",
		Partial: set.Partial,
	}, nil
}
