package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNoChatModels = errors.New("at least one chat model is required")

// ChatModel is a hosted LLM able to answer a composed prompt in one shot or
// as a stream of text fragments.
type ChatModel interface {
	Name() string
	Generate(ctx context.Context, messages []Message) (string, error)
	// Stream calls onChunk for each fragment in generation order. An error
	// returned by onChunk aborts the stream and is returned.
	Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) error
}

// GenerationEngine invokes an ordered list of chat models. One-shot calls
// fall through the list on any error; streaming only uses the first model.
type GenerationEngine struct {
	models []ChatModel
	logger *slog.Logger
}

func NewGenerationEngine(logger *slog.Logger, models ...ChatModel) (*GenerationEngine, error) {
	if len(models) == 0 {
		return nil, ErrNoChatModels
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationEngine{models: models, logger: logger.With("component", "generation")}, nil
}

// Generate returns the reply of the first model that succeeds. When every
// model fails the joined errors are returned.
func (g *GenerationEngine) Generate(ctx context.Context, messages []Message) (string, error) {
	var errs []error
	for i, model := range g.models {
		reply, err := model.Generate(ctx, messages)
		if err == nil {
			return reply, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", model.Name(), err))
		if ctx.Err() != nil {
			break
		}
		if i+1 < len(g.models) {
			g.logger.Warn("chat model failed, falling back",
				"model", model.Name(), "fallback", g.models[i+1].Name(), "err", err)
		}
	}
	return "", fmt.Errorf("all chat models failed: %w", errors.Join(errs...))
}

// Stream forwards fragments from the primary model. There is no fallback
// once streaming has been attempted.
func (g *GenerationEngine) Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) error {
	primary := g.models[0]
	if err := primary.Stream(ctx, messages, onChunk); err != nil {
		return fmt.Errorf("%s stream: %w", primary.Name(), err)
	}
	return nil
}
