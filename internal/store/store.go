package store

import (
	"context"
	"fmt"
	"log/slog"

	"livecv.dev/digital-twin/internal/config"
)

// Store is the persistence surface shared by the SQLite and Postgres
// backends: knowledge snippets, chat logs and a liveness probe.
type Store interface {
	SearchSnippets(ctx context.Context, language string, embedding []float32, k int) ([]Snippet, error)
	InsertSnippets(ctx context.Context, snippets []*Snippet) error
	SetSnippetActive(ctx context.Context, id int64, active bool) error
	SaveChatLog(ctx context.Context, entry *ChatLog) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Open picks the backend from DATABASE_URL: postgres:// URLs use pgvector,
// anything else is treated as a SQLite file path.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg.IsPostgres() {
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	}
	s, err := NewSQLiteStore(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return s, nil
}
