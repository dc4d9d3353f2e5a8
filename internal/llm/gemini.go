package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"livecv.dev/digital-twin/internal/core"
)

// GeminiChatModel implements core.ChatModel on the Gemini API.
type GeminiChatModel struct {
	name        string
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func newGeminiChatModel(ctx context.Context, name, model, apiKey string, temperature float64, logger *slog.Logger) (*GeminiChatModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiChatModel{
		name:        name,
		client:      client,
		model:       model,
		temperature: float32(temperature),
		logger:      logger.With("component", "chat-model", "model", name),
	}, nil
}

func (m *GeminiChatModel) Name() string { return m.name }

func (m *GeminiChatModel) Close() error {
	return m.client.Close()
}

// session builds a chat session whose history holds every turn but the last,
// which is returned separately to be sent.
func (m *GeminiChatModel) session(messages []core.Message) (*genai.ChatSession, genai.Part, error) {
	system, history, last, err := toGeminiContent(messages)
	if err != nil {
		return nil, nil, err
	}
	model := m.client.GenerativeModel(m.model)
	model.SetTemperature(m.temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	cs := model.StartChat()
	cs.History = history
	return cs, genai.Text(last), nil
}

func (m *GeminiChatModel) Generate(ctx context.Context, messages []core.Message) (string, error) {
	cs, question, err := m.session(messages)
	if err != nil {
		return "", err
	}
	resp, err := cs.SendMessage(ctx, question)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func (m *GeminiChatModel) Stream(ctx context.Context, messages []core.Message, onChunk func(chunk string) error) error {
	cs, question, err := m.session(messages)
	if err != nil {
		return err
	}
	iter := cs.SendMessageStream(ctx, question)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		if text := responseText(resp); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// toGeminiContent splits composed messages into the system instruction, the
// chat history and the final user question.
func toGeminiContent(messages []core.Message) (string, []*genai.Content, string, error) {
	if len(messages) == 0 {
		return "", nil, "", errors.New("prompt is empty")
	}
	last := messages[len(messages)-1]
	if last.Role != core.RoleUser {
		return "", nil, "", fmt.Errorf("last message has role %q, want %q", last.Role, core.RoleUser)
	}

	var system []string
	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, msg.Content)
		case core.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	return strings.Join(system, "\n\n"), history, last.Content, nil
}

// GeminiEmbedder implements core.Embedder with a Gemini embedding model.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func newGeminiEmbedder(ctx context.Context, model, apiKey string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
