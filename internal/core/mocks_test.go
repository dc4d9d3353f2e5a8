package core

import (
	"context"
	"errors"
	"sync"

	"livecv.dev/digital-twin/internal/store"
)

type mockEmbedder struct {
	mu       sync.Mutex
	calls    int
	embedFn  func(ctx context.Context, text string) ([]float32, error)
	received []string
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.received = append(m.received, text)
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockChatModel struct {
	name        string
	reply       string
	err         error
	chunks      []string
	streamErr   error
	generated   int
	streamed    int
	lastMessage []Message
}

func (m *mockChatModel) Name() string { return m.name }

func (m *mockChatModel) Generate(ctx context.Context, messages []Message) (string, error) {
	m.generated++
	m.lastMessage = messages
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []Message, onChunk func(string) error) error {
	m.streamed++
	m.lastMessage = messages
	for _, c := range m.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return m.streamErr
}

type mockKnowledge struct {
	mu        sync.Mutex
	snippets  []store.Snippet
	searchErr error
	searches  int
	lastK     int
	lastLang  string
	inserted  []*store.Snippet
	insertErr error
}

func (m *mockKnowledge) SearchSnippets(ctx context.Context, language string, embedding []float32, k int) ([]store.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	m.lastK = k
	m.lastLang = language
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.snippets, nil
}

func (m *mockKnowledge) InsertSnippets(ctx context.Context, snippets []*store.Snippet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, snippets...)
	return nil
}

type mockConversations struct {
	mu      sync.Mutex
	entries []store.ChatLog
	err     error
	saveFn  func(ctx context.Context) error
}

func (m *mockConversations) SaveChatLog(ctx context.Context, entry *store.ChatLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveFn != nil {
		if err := m.saveFn(ctx); err != nil {
			return err
		}
	}
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

var errProvider = errors.New("provider unavailable")
