package llm

import (
	"context"
	"fmt"
	"log/slog"

	"livecv.dev/digital-twin/internal/config"
	"livecv.dev/digital-twin/internal/core"
)

// NewChatModel builds the chat model named by ref.
func NewChatModel(ctx context.Context, ref config.ModelRef, cfg *config.Config, logger *slog.Logger) (core.ChatModel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	apiKey := cfg.APIKey(ref.Provider)
	switch ref.Provider {
	case "openai":
		return newOpenAIChatModel(ref.String(), ref.Model, apiKey, "", cfg.Temperature, logger)
	case "groq":
		return newOpenAIChatModel(ref.String(), ref.Model, apiKey, groqBaseURL, cfg.Temperature, logger)
	case "gemini":
		return newGeminiChatModel(ctx, ref.String(), ref.Model, apiKey, cfg.Temperature, logger)
	}
	return nil, fmt.Errorf("unsupported chat provider %q", ref.Provider)
}

// NewChatModels builds the fallback chain: PRIMARY_LLM then BACKUP_LLM. An
// empty BACKUP_LLM leaves the primary alone.
func NewChatModels(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]core.ChatModel, error) {
	var models []core.ChatModel
	for _, raw := range []string{cfg.PrimaryLLM, cfg.BackupLLM} {
		if raw == "" {
			continue
		}
		ref, err := config.ParseModelRef(raw)
		if err != nil {
			return nil, err
		}
		model, err := NewChatModel(ctx, ref, cfg, logger)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

// NewEmbedder builds the embedder named by EMBEDDING_MODEL.
func NewEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ref, err := config.ParseModelRef(cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_MODEL: %w", err)
	}
	switch ref.Provider {
	case "openai":
		return newOpenAIEmbedder(ref.Model, cfg.APIKey(ref.Provider), logger)
	case "gemini":
		return newGeminiEmbedder(ctx, ref.Model, cfg.APIKey(ref.Provider))
	}
	return nil, fmt.Errorf("provider %q does not offer embeddings", ref.Provider)
}
