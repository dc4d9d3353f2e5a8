package store

import (
	"errors"
	"time"
)

// ErrSnippetNotFound is returned when an administrative update targets a
// snippet that does not exist.
var ErrSnippetNotFound = errors.New("snippet not found")

// Snippet is a unit of retrievable knowledge about the profile owner.
type Snippet struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"` // Human-readable origin, usually the uploaded filename
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Embedding []float32 `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	// Distance is the cosine distance to the query vector. Only set on
	// search results.
	Distance float64 `json:"distance,omitempty"`
}

// ChatLog is one persisted request/response exchange.
type ChatLog struct {
	ID          int64     `json:"id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}
