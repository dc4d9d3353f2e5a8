package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"livecv.dev/digital-twin/internal/utils"
)

// SQLiteStore keeps snippets in a local SQLite file. Embeddings are stored as
// JSON and ranked in process, which is fine for a single profile's worth of
// knowledge during local development.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dataSourceName string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger.With("component", "sqlite-store")}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "SELECT 1")
	return err
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS rag_documents (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        content TEXT NOT NULL,
        language TEXT NOT NULL DEFAULT 'en',
        embedding_json TEXT, -- JSON array of float32
        active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_rag_documents_language_active ON rag_documents (language, active);

    CREATE TABLE IF NOT EXISTS chat_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_message TEXT NOT NULL,
        bot_reply TEXT NOT NULL,
        language TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// InsertSnippets stores all snippets of one document in a single transaction.
func (s *SQLiteStore) InsertSnippets(ctx context.Context, snippets []*Snippet) error {
	if len(snippets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snippet transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO rag_documents (source, content, language, embedding_json, active, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare snippet insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, snippet := range snippets {
		embeddingBytes, err := json.Marshal(snippet.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		res, err := stmt.ExecContext(ctx, snippet.Source, snippet.Content, snippet.Language, string(embeddingBytes), snippet.Active, now)
		if err != nil {
			return fmt.Errorf("failed to execute snippet insert: %w", err)
		}
		snippet.ID, _ = res.LastInsertId()
		snippet.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snippets: %w", err)
	}
	return nil
}

// SearchSnippets ranks active snippets of the given language by cosine
// distance and returns the k closest. Equal distances keep insertion order.
func (s *SQLiteStore) SearchSnippets(ctx context.Context, language string, embedding []float32, k int) ([]Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, content, language, embedding_json, active, created_at FROM rag_documents WHERE language = ? AND active = 1 ORDER BY id ASC",
		language)
	if err != nil {
		return nil, fmt.Errorf("failed to query rag_documents: %w", err)
	}
	defer rows.Close()

	var candidates []Snippet
	for rows.Next() {
		var snippet Snippet
		var embeddingJSON sql.NullString
		if err := rows.Scan(&snippet.ID, &snippet.Source, &snippet.Content, &snippet.Language, &embeddingJSON, &snippet.Active, &snippet.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rag_documents row: %w", err)
		}
		if !embeddingJSON.Valid || embeddingJSON.String == "" {
			s.logger.Warn("skipping snippet without embedding", "snippet_id", snippet.ID)
			continue
		}
		if err := json.Unmarshal([]byte(embeddingJSON.String), &snippet.Embedding); err != nil {
			s.logger.Warn("skipping snippet with unreadable embedding", "snippet_id", snippet.ID, "err", err)
			continue
		}
		distance, err := utils.CosineDistance(embedding, snippet.Embedding)
		if err != nil {
			s.logger.Warn("skipping snippet with incompatible embedding", "snippet_id", snippet.ID, "err", err)
			continue
		}
		snippet.Distance = distance
		candidates = append(candidates, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if k >= 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (s *SQLiteStore) SetSnippetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE rag_documents SET active = ? WHERE id = ?", active, id)
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
func (s *SQLiteStore) SaveChatLog(ctx context.Context, entry *ChatLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chat log transaction: %w", err)
	}
	defer tx.Rollback()

	entry.CreatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO chat_logs (user_message, bot_reply, language, created_at) VALUES (?, ?, ?, ?)",
		entry.UserMessage, entry.BotReply, entry.Language, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute chat log insert: %w", err)
	}
	entry.ID, _ = res.LastInsertId()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat log: %w", err)
	}
	return nil
}
