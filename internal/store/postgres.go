package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/pgvector/pgvector-go"
)

// PostgresStore keeps snippets in Postgres and ranks them with pgvector's
// cosine distance operator.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore connects, enables the vector extension and creates the
// tables. embeddingDim fixes the width of the embedding column.
func NewPostgresStore(ctx context.Context, dataSourceName string, embeddingDim int, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", embeddingDim)
	}
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger.With("component", "postgres-store")}
	if err = store.createTables(ctx, embeddingDim); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	store.logger.Info("checked/created tables rag_documents and chat_logs", "embedding_dim", embeddingDim)
	return store, nil
}

func (s *PostgresStore) createTables(ctx context.Context, embeddingDim int) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	schema := fmt.Sprintf(`
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS rag_documents (
        id BIGSERIAL PRIMARY KEY,
        source VARCHAR(255) NOT NULL,
        content TEXT NOT NULL,
        language VARCHAR(10) NOT NULL DEFAULT 'en',
        embedding vector(%d),
        active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );

    CREATE INDEX IF NOT EXISTS idx_rag_documents_embedding
        ON rag_documents USING hnsw (embedding vector_cosine_ops);
    CREATE INDEX IF NOT EXISTS idx_rag_documents_language_active
        ON rag_documents (language, active);

    CREATE TABLE IF NOT EXISTS chat_logs (
        id BIGSERIAL PRIMARY KEY,
        user_message TEXT NOT NULL,
        bot_reply TEXT NOT NULL,
        language VARCHAR(10) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
    `, embeddingDim)

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "SELECT 1")
	return err
}

// InsertSnippets stores all snippets of one document in a single transaction.
func (s *PostgresStore) InsertSnippets(ctx context.Context, snippets []*Snippet) error {
	if len(snippets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snippet transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rag_documents (source, content, language, embedding, active)
         VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare snippet insert: %w", err)
	}
	defer stmt.Close()

	for _, snippet := range snippets {
		err := stmt.QueryRowContext(ctx,
			snippet.Source,
			snippet.Content,
			snippet.Language,
			pgvector.NewVector(snippet.Embedding),
			snippet.Active,
		).Scan(&snippet.ID, &snippet.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert snippet: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snippets: %w", err)
	}
	return nil
}

// SearchSnippets returns the k active snippets of the given language closest
// to embedding by cosine distance.
func (s *PostgresStore) SearchSnippets(ctx context.Context, language string, embedding []float32, k int) ([]Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, content, language, active, created_at, embedding <=> $1 AS distance
         FROM rag_documents
         WHERE language = $2 AND active = TRUE
         ORDER BY embedding <=> $1
         LIMIT $3`,
		pgvector.NewVector(embedding),
		language,
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rag_documents: %w", err)
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var snippet Snippet
		err := rows.Scan(
			&snippet.ID,
			&snippet.Source,
			&snippet.Content,
			&snippet.Language,
			&snippet.Active,
			&snippet.CreatedAt,
			&snippet.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rag_documents row: %w", err)
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return snippets, nil
}

func (s *PostgresStore) SetSnippetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE rag_documents SET active = $1 WHERE id = $2", active, id)
	if err != nil {
		return fmt.Errorf("failed to update snippet: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrSnippetNotFound
	}
	return nil
}

// SaveChatLog writes one exchange inside a transaction; the transaction is
// rolled back on any failure.
func (s *PostgresStore) SaveChatLog(ctx context.Context, entry *ChatLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chat log transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		"INSERT INTO chat_logs (user_message, bot_reply, language) VALUES ($1, $2, $3) RETURNING id, created_at",
		entry.UserMessage, entry.BotReply, entry.Language,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat log: %w", err)
	}
	return nil
}
