package core

import (
	"context"
	"fmt"
	"strings"

	"livecv.dev/digital-twin/internal/store"
)

const (
	// DefaultTopK is the number of snippets retrieved per question.
	DefaultTopK = 5

	contextSeparator = "\n\n---\n\n"
)

// Embedder turns text into a vector of fixed dimensionality.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeStore is the snippet side of the store used by the pipeline and
// the ingestion worker.
type KnowledgeStore interface {
	SearchSnippets(ctx context.Context, language string, embedding []float32, k int) ([]store.Snippet, error)
	InsertSnippets(ctx context.Context, snippets []*store.Snippet) error
}

// ConversationStore persists finished exchanges.
type ConversationStore interface {
	SaveChatLog(ctx context.Context, entry *store.ChatLog) error
}

type Retriever struct {
	store KnowledgeStore
	topK  int
}

func NewRetriever(knowledge KnowledgeStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{store: knowledge, topK: topK}
}

// Retrieve returns up to topK active snippets in language, closest first.
// An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, language string, embedding []float32) ([]store.Snippet, error) {
	snippets, err := r.store.SearchSnippets(ctx, language, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search snippets: %w", err)
	}
	return snippets, nil
}

// JoinContext concatenates snippet contents into the grounding context.
func JoinContext(snippets []store.Snippet) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = s.Content
	}
	return strings.Join(parts, contextSeparator)
}
