package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"livecv.dev/digital-twin/internal/core"
)

const (
	minMessageLength  = 2
	maxMessageLength  = 1500
	maxLanguageLength = 10
	maxRequestBytes   = 1 << 20
)

// ChatRequest is the JSON body of both chat endpoints.
type ChatRequest struct {
	Message     string         `json:"message"`
	Language    string         `json:"language"`
	ChatHistory []core.Message `json:"chat_history,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// decodeChatRequest reads and validates a chat request body.
func decodeChatRequest(body io.Reader) (core.ChatRequest, error) {
	var req ChatRequest
	dec := json.NewDecoder(io.LimitReader(body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return core.ChatRequest{}, fmt.Errorf("invalid request body: %w", err)
	}

	if n := utf8.RuneCountInString(req.Message); n < minMessageLength || n > maxMessageLength {
		return core.ChatRequest{}, fmt.Errorf("message must be between %d and %d characters", minMessageLength, maxMessageLength)
	}
	if strings.TrimSpace(req.Message) == "" {
		return core.ChatRequest{}, errors.New("message must not be blank")
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if utf8.RuneCountInString(req.Language) > maxLanguageLength {
		return core.ChatRequest{}, fmt.Errorf("language must be at most %d characters", maxLanguageLength)
	}
	for i, turn := range req.ChatHistory {
		if turn.Role != core.RoleUser && turn.Role != core.RoleAssistant {
			return core.ChatRequest{}, fmt.Errorf("chat_history[%d]: role must be %q or %q", i, core.RoleUser, core.RoleAssistant)
		}
	}

	return core.ChatRequest{
		Message:  req.Message,
		Language: req.Language,
		History:  req.ChatHistory,
	}, nil
}
