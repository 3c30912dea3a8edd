package llm

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := c.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

func (c *countingEmbedder) Dimension() int { return 3 }
func (c *countingEmbedder) Model() string  { return "counting" }

func TestCachedEmbedder(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 8, logger)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.Embed(ctx, "tesla earnings")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "tesla earnings")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "repeat query should hit the cache")

	_, err = cached.Embed(ctx, "different query")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
