package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsmesh/newsgraph/internal/config"
)

func TestNewEmbedderProviderValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name: "bedrock is generation-only",
			cfg: config.Config{
				EmbedProvider: config.ProviderBedrock,
				EmbedModel:    "amazon.titan-embed-text-v2:0",
			},
			wantErr: "unsupported embedding provider",
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{EmbedProvider: "cohere"},
			wantErr: "unsupported embedding provider",
		},
		{
			name: "openai without key",
			cfg: config.Config{
				EmbedProvider: config.ProviderOpenAI,
				EmbedModel:    "text-embedding-3-small",
			},
			wantErr: "OpenAI API key required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmbedder(context.Background(), tt.cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
