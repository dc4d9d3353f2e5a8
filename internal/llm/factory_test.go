package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"livecv.dev/digital-twin/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:   "sk-test",
		GroqAPIKey:     "gsk-test",
		PrimaryLLM:     "groq:llama-3.3-70b-versatile",
		BackupLLM:      "openai:gpt-4o-mini",
		EmbeddingModel: "openai:text-embedding-3-small",
		Temperature:    0.3,
	}
}

func TestNewChatModelsBuildsFallbackOrder(t *testing.T) {
	models, err := NewChatModels(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "groq:llama-3.3-70b-versatile", models[0].Name())
	assert.Equal(t, "openai:gpt-4o-mini", models[1].Name())
}

func TestNewChatModelsWithoutBackup(t *testing.T) {
	cfg := testConfig()
	cfg.BackupLLM = ""
	models, err := NewChatModels(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestNewChatModelsRejectsBadReference(t *testing.T) {
	cfg := testConfig()
	cfg.PrimaryLLM = "mistral:large"
	_, err := NewChatModels(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown provider")
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEmbedder{}, e)

	cfg := testConfig()
	cfg.EmbeddingModel = "groq:whatever"
	_, err = NewEmbedder(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "does not offer embeddings")
}
