package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"livecv.dev/digital-twin/internal/store"
)

var (
	ErrEmbedderRequired          = errors.New("embedder is required")
	ErrRetrieverRequired         = errors.New("retriever is required")
	ErrGenerationEngineRequired  = errors.New("generation engine is required")
	ErrConversationStoreRequired = errors.New("conversation store is required")
)

// ChatRequest is one question with its optional prior turns.
type ChatRequest struct {
	Message  string
	Language string
	History  []Message
}

// Result is the resolved reply of one pipeline execution.
type Result struct {
	Outcome Outcome
	Reply   string
}

type ChatService struct {
	embedder      Embedder
	retriever     *Retriever
	engine        *GenerationEngine
	conversations ConversationStore
	logger        *slog.Logger
}

func NewChatService(embedder Embedder, retriever *Retriever, engine *GenerationEngine, conversations ConversationStore, logger *slog.Logger) (*ChatService, error) {
	switch {
	case embedder == nil:
		return nil, ErrEmbedderRequired
	case retriever == nil:
		return nil, ErrRetrieverRequired
	case engine == nil:
		return nil, ErrGenerationEngineRequired
	case conversations == nil:
		return nil, ErrConversationStoreRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		embedder:      embedder,
		retriever:     retriever,
		engine:        engine,
		conversations: conversations,
		logger:        logger.With("component", "chat"),
	}, nil
}

// Greeting returns the static greeting for language.
func (s *ChatService) Greeting(language string) (string, error) {
	lang, err := ValidateLanguage(language)
	if err != nil {
		return "", err
	}
	return StaticMessage(OutcomeGreeting, lang), nil
}

// Answer runs the pipeline in one-shot mode. The only errors returned are
// *UnsupportedLanguageError and knowledge store failures; every other failure
// resolves to a static reply.
func (s *ChatService) Answer(ctx context.Context, req ChatRequest) (Result, error) {
	lang, err := ValidateLanguage(req.Language)
	if err != nil {
		return Result{Outcome: OutcomeUnsupportedLanguage}, err
	}

	prompt, shortCircuit, err := s.prepare(ctx, lang, req)
	if err != nil {
		return Result{}, err
	}
	if shortCircuit != nil {
		s.logExchange(ctx, lang, req.Message, shortCircuit.Reply)
		return *shortCircuit, nil
	}

	result := Result{Outcome: OutcomeAnswer}
	reply, err := s.engine.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed", "language", lang, "err", err)
		result = Result{Outcome: OutcomeGenerationFailure, Reply: StaticMessage(OutcomeGenerationFailure, lang)}
	} else {
		result.Reply = reply
	}
	s.logExchange(ctx, lang, req.Message, result.Reply)
	return result, nil
}

// StreamAnswer runs the pipeline in streaming mode, passing each fragment to
// emit as soon as it is available. Short-circuit outcomes are emitted as a
// single fragment. A generation failure is emitted as the apology message and
// ends the stream. The exchange is logged only after the last fragment was
// delivered; if emit fails the stream stops and emit's error is returned.
func (s *ChatService) StreamAnswer(ctx context.Context, req ChatRequest, emit func(fragment string) error) error {
	lang, err := ValidateLanguage(req.Language)
	if err != nil {
		return err
	}

	prompt, shortCircuit, err := s.prepare(ctx, lang, req)
	if err != nil {
		return err
	}
	if shortCircuit != nil {
		if err := emit(shortCircuit.Reply); err != nil {
			return err
		}
		s.logExchange(ctx, lang, req.Message, shortCircuit.Reply)
		return nil
	}

	var (
		reply   strings.Builder
		emitErr error
	)
	err = s.engine.Stream(ctx, prompt, func(chunk string) error {
		if err := emit(chunk); err != nil {
			emitErr = err
			return err
		}
		reply.WriteString(chunk)
		return nil
	})
	if emitErr != nil {
		s.logger.Info("stream consumer went away", "language", lang, "err", emitErr)
		return emitErr
	}
	if err != nil {
		s.logger.Error("streaming generation failed", "language", lang, "err", err)
		apology := StaticMessage(OutcomeGenerationFailure, lang)
		if err := emit(apology); err != nil {
			return err
		}
		s.logExchange(ctx, lang, req.Message, apology)
		return nil
	}
	s.logExchange(ctx, lang, req.Message, reply.String())
	return nil
}

// prepare runs the steps shared by both modes. It returns either the composed
// prompt or a short-circuit result.
func (s *ChatService) prepare(ctx context.Context, lang string, req ChatRequest) ([]Message, *Result, error) {
	if len(req.History) == 0 && IsGreeting(req.Message) {
		return nil, &Result{Outcome: OutcomeGreeting, Reply: StaticMessage(OutcomeGreeting, lang)}, nil
	}
	if IsOffTopic(req.Message) {
		return nil, &Result{Outcome: OutcomeOffTopic, Reply: StaticMessage(OutcomeOffTopic, lang)}, nil
	}

	vector, err := s.embedder.EmbedText(ctx, req.Message)
	if err != nil {
		s.logger.Error("embedding failed", "language", lang, "err", err)
		return nil, &Result{Outcome: OutcomeEmbeddingFailure, Reply: StaticMessage(OutcomeEmbeddingFailure, lang)}, nil
	}

	snippets, err := s.retriever.Retrieve(ctx, lang, vector)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(snippets) == 0 {
		return nil, &Result{Outcome: OutcomeNoContext, Reply: StaticMessage(OutcomeNoContext, lang)}, nil
	}
	s.logger.Debug("retrieved context", "language", lang, "snippets", len(snippets))

	return ComposePrompt(JoinContext(snippets), req.History, req.Message), nil, nil
}

// logExchange persists the exchange at most once. Failures are logged and
// never reach the caller.
func (s *ChatService) logExchange(ctx context.Context, lang, userMessage, reply string) {
	if reply == "" {
		return
	}
	entry := &store.ChatLog{UserMessage: userMessage, BotReply: reply, Language: lang}
	if err := s.conversations.SaveChatLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to save chat log", "language", lang, "err", err)
	}
}
