package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"livecv.dev/digital-twin/internal/core"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

var ErrEmptyCompletion = errors.New("model returned no choices")

// OpenAIChatModel implements core.ChatModel for any OpenAI-compatible chat
// API (OpenAI itself and Groq).
type OpenAIChatModel struct {
	name        string
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newOpenAIChatModel(name, model, apiKey, baseURL string, temperature float64, logger *slog.Logger) (*OpenAIChatModel, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}
	return &OpenAIChatModel{
		name:        name,
		client:      client,
		temperature: temperature,
		logger:      logger.With("component", "chat-model", "model", name),
	}, nil
}

func (m *OpenAIChatModel) Name() string { return m.name }

func (m *OpenAIChatModel) Generate(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := m.client.GenerateContent(ctx, toMessageContent(messages), llms.WithTemperature(m.temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

func (m *OpenAIChatModel) Stream(ctx context.Context, messages []core.Message, onChunk func(chunk string) error) error {
	_, err := m.client.GenerateContent(ctx, toMessageContent(messages),
		llms.WithTemperature(m.temperature),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return onChunk(string(chunk))
		}),
	)
	return err
}

func toMessageContent(messages []core.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role schema.ChatMessageType
		switch msg.Role {
		case core.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case core.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	return content
}

// OpenAIEmbedder implements core.Embedder with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newOpenAIEmbedder(model, apiKey string, logger *slog.Logger) (*OpenAIEmbedder, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create openai embedder: %w", err)
	}
	return &OpenAIEmbedder{
		embedder: embedder,
		logger:   logger.With("component", "openai-embedder"),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding", "length", len(text))
	vector, err := e.embedder.EmbedQuery(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(vector) == 0 {
		return nil, errors.New("no embedding data received from openai")
	}
	return vector, nil
}
