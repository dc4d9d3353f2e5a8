package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err, "Expected NewSQLiteStore to not return an error")
	t.Cleanup(func() { s.Close() })
	return s
}

func countChatLogs(t *testing.T, s *SQLiteStore) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM chat_logs").Scan(&n))
	return n
}

func TestSQLiteInsertAndSearch(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	snippets := []*Snippet{
		{Source: "cv.md", Content: "backend with Go", Language: "en", Embedding: []float32{1, 0, 0}, Active: true},
		{Source: "cv.md", Content: "frontend with htmx", Language: "en", Embedding: []float32{0, 1, 0}, Active: true},
		{Source: "cv.md", Content: "mostly backend", Language: "en", Embedding: []float32{0.9, 0.1, 0}, Active: true},
		{Source: "cv-es.md", Content: "backend con Go", Language: "es", Embedding: []float32{1, 0, 0}, Active: true},
		{Source: "old.md", Content: "retired snippet", Language: "en", Embedding: []float32{1, 0, 0}, Active: false},
	}
	require.NoError(t, s.InsertSnippets(ctx, snippets))
	for _, sn := range snippets {
		assert.NotZero(t, sn.ID, "Expected inserted snippet to have an ID")
		assert.WithinDuration(t, time.Now(), sn.CreatedAt, 5*time.Second)
	}

	t.Run("Orders by ascending distance within language", func(t *testing.T) {
		results, err := s.SearchSnippets(ctx, "en", []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		require.Len(t, results, 3, "inactive and other-language snippets must be excluded")
		assert.Equal(t, "backend with Go", results[0].Content)
		assert.Equal(t, "mostly backend", results[1].Content)
		assert.Equal(t, "frontend with htmx", results[2].Content)
		assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
		assert.LessOrEqual(t, results[1].Distance, results[2].Distance)
	})

	t.Run("Limits to k", func(t *testing.T) {
		results, err := s.SearchSnippets(ctx, "en", []float32{1, 0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "backend with Go", results[0].Content)
	})

	t.Run("Never mixes languages", func(t *testing.T) {
		results, err := s.SearchSnippets(ctx, "es", []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "es", results[0].Language)
	})

	t.Run("Empty language is not an error", func(t *testing.T) {
		results, err := s.SearchSnippets(ctx, "pt", []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSQLiteSearchSkipsMismatchedEmbeddings(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertSnippets(ctx, []*Snippet{
		{Source: "a", Content: "two dims", Language: "en", Embedding: []float32{1, 0}, Active: true},
		{Source: "b", Content: "three dims", Language: "en", Embedding: []float32{1, 0, 0}, Active: true},
	}))

	results, err := s.SearchSnippets(ctx, "en", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "three dims", results[0].Content)
}

func TestSQLiteSetSnippetActive(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	sn := &Snippet{Source: "cv.md", Content: "x", Language: "en", Embedding: []float32{1, 0}, Active: true}
	require.NoError(t, s.InsertSnippets(ctx, []*Snippet{sn}))

	require.NoError(t, s.SetSnippetActive(ctx, sn.ID, false))
	results, err := s.SearchSnippets(ctx, "en", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, s.SetSnippetActive(ctx, sn.ID, true))
	results, err = s.SearchSnippets(ctx, "en", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	assert.ErrorIs(t, s.SetSnippetActive(ctx, 9999, true), ErrSnippetNotFound)
}

func TestSQLiteSaveChatLog(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	entry := &ChatLog{UserMessage: "hello", BotReply: "hi there", Language: "en"}
	require.NoError(t, s.SaveChatLog(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.Equal(t, 1, countChatLogs(t, s))

	t.Run("Cancelled context fails without writing", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := s.SaveChatLog(cancelled, &ChatLog{UserMessage: "a", BotReply: "b", Language: "en"})
		assert.Error(t, err)
		assert.Equal(t, 1, countChatLogs(t, s))
	})
}

func TestSQLitePing(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
