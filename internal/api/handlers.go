package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"livecv.dev/digital-twin/internal/auth"
	"livecv.dev/digital-twin/internal/core"
	"livecv.dev/digital-twin/internal/store"
)

const (
	internalErrorMessage = "I'm experiencing technical difficulties right now. Please try again in a moment."
	streamErrorMessage   = "I'm experiencing technical difficulties. Please try again."

	maxUploadBytes = 20 << 20
	healthTimeout  = 2 * time.Second
)

// ChatPipeline is the conversational core as seen by the HTTP layer.
type ChatPipeline interface {
	Answer(ctx context.Context, req core.ChatRequest) (core.Result, error)
	StreamAnswer(ctx context.Context, req core.ChatRequest, emit func(fragment string) error) error
	Greeting(language string) (string, error)
}

// DocumentIngestor schedules background ingestion jobs.
type DocumentIngestor interface {
	Submit(data []byte, filename, language string) (uuid.UUID, error)
}

// AdminStore is the part of the store used by health checks and snippet administration.
type AdminStore interface {
	SetSnippetActive(ctx context.Context, id int64, active bool) error
	Ping(ctx context.Context) error
}

type ctxKey string

const subjectKey ctxKey = "subject"

type APIHandler struct {
	chat      ChatPipeline
	ingestor  DocumentIngestor
	store     AdminStore
	jwtSecret string
	logger    *slog.Logger
}

func NewAPIHandler(chat ChatPipeline, ingestor DocumentIngestor, adminStore AdminStore, jwtSecret string, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		chat:      chat,
		ingestor:  ingestor,
		store:     adminStore,
		jwtSecret: jwtSecret,
		logger:    logger.With("component", "api"),
	}
}

type errorResponse struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	RequestedLanguage  string   `json:"requested_language,omitempty"`
	SupportedLanguages []string `json:"supported_languages,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func writeUnsupportedLanguage(w http.ResponseWriter, e *core.UnsupportedLanguageError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:              "unsupported_language",
		Message:            e.Message,
		RequestedLanguage:  e.Language,
		SupportedLanguages: core.SupportedLanguages,
	})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authorization header with a bearer token is required")
			return
		}

		subject, err := auth.ValidateJWT(h.jwtSecret, tokenString)
		if err != nil {
			h.logger.Debug("rejected admin token", "err", err)
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.chat.Answer(r.Context(), req)
	var unsupported *core.UnsupportedLanguageError
	switch {
	case errors.As(err, &unsupported):
		writeUnsupportedLanguage(w, unsupported)
		return
	case err != nil:
		h.logger.Error("chat request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", internalErrorMessage)
		return
	}

	h.logger.Info("chat answered", "outcome", result.Outcome, "language", req.Language)
	writeJSON(w, http.StatusOK, ChatResponse{Reply: result.Reply})
}

// StreamChatHandler answers over server-sent events. The terminal [DONE]
// frame is written on every path once the stream has started.
func (h *APIHandler) StreamChatHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sse := newSSEWriter(w)
	defer sse.Done()

	err = h.chat.StreamAnswer(r.Context(), req, sse.Fragment)
	if err == nil || sse.Failed() {
		return
	}
	var unsupported *core.UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		sse.Error(unsupported.Message)
		return
	}
	h.logger.Error("streaming chat failed", "err", err)
	sse.Error(streamErrorMessage)
}

func (h *APIHandler) GreetingHandler(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}
	greeting, err := h.chat.Greeting(language)
	var unsupported *core.UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		writeUnsupportedLanguage(w, unsupported)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: greeting})
}

// HealthHandler always answers 200; a failed ping only degrades the status.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"status": "online", "database": "connected"}
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check ping failed", "err", err)
		status = map[string]string{"status": "degraded", "database": "disconnected"}
	}
	writeJSON(w, http.StatusOK, status)
}

type uploadResponse struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	Language string `json:"language"`
	Status   string `json:"status"`
}

// UploadDocumentHandler accepts a multipart upload and hands it to the
// ingestion worker. The response does not wait for ingestion.
func (h *APIHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "uploaded file is empty")
		return
	}

	filename := filepath.Base(header.Filename)
	language := r.FormValue("language")
	jobID, err := h.ingestor.Submit(data, filename, language)
	if err != nil {
		h.logger.Error("failed to schedule ingestion", "filename", filename, "err", err)
		writeError(w, http.StatusServiceUnavailable, "ingestion_unavailable", "Ingestion is not accepting jobs right now.")
		return
	}

	h.logger.Info("document queued for ingestion", "job_id", jobID, "filename", filename, "subject", r.Context().Value(subjectKey))
	writeJSON(w, http.StatusAccepted, uploadResponse{
		JobID:    jobID.String(),
		Filename: filename,
		Language: language,
		Status:   "processing",
	})
}

type snippetUpdateRequest struct {
	Active *bool `json:"active"`
}

func (h *APIHandler) UpdateSnippetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "snippetID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "snippet id must be an integer")
		return
	}
	var req snippetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be {\"active\": true|false}")
		return
	}

	err = h.store.SetSnippetActive(r.Context(), id, *req.Active)
	switch {
	case errors.Is(err, store.ErrSnippetNotFound):
		writeError(w, http.StatusNotFound, "not_found", "snippet not found")
		return
	case err != nil:
		h.logger.Error("failed to update snippet", "snippet_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": *req.Active})
}
