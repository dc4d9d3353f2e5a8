package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	JWTSecret            string
	JWTExpirationMinutes int

	OpenAIAPIKey string
	GroqAPIKey   string
	GeminiAPIKey string

	// Model references use the "provider:model" form, e.g. "groq:llama-3.3-70b-versatile".
	PrimaryLLM          string
	BackupLLM           string
	EmbeddingModel      string
	EmbeddingDimensions int
	Temperature         float64

	RetrievalTopK      int
	ChunkSize          int
	ChunkOverlap       int
	IngestWorkers      int
	RateLimitPerMinute int
}

// ModelRef is a parsed "provider:model" reference.
type ModelRef struct {
	Provider string
	Model    string
}

func (r ModelRef) String() string {
	return r.Provider + ":" + r.Model
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "livecv.db"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirationMinutes: getEnvAsInt("JWT_EXPIRATION_MINUTES", 60),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:           getEnv("GROQ_API_KEY", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		PrimaryLLM:           getEnv("PRIMARY_LLM", "groq:llama-3.3-70b-versatile"),
		BackupLLM:            getEnv("BACKUP_LLM", "openai:gpt-4o-mini"),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "openai:text-embedding-3-small"),
		EmbeddingDimensions:  getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		Temperature:          getEnvAsFloat("LLM_TEMPERATURE", 0.3),
		RetrievalTopK:        getEnvAsInt("RETRIEVAL_TOP_K", 5),
		ChunkSize:            getEnvAsInt("CHUNK_SIZE", 800),
		ChunkOverlap:         getEnvAsInt("CHUNK_OVERLAP", 100),
		IngestWorkers:        getEnvAsInt("INGEST_WORKERS", 2),
		RateLimitPerMinute:   getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
	}
}

// ParseModelRef splits a "provider:model" reference. A bare model name is
// treated as an OpenAI model.
func ParseModelRef(ref string) (ModelRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ModelRef{}, errors.New("empty model reference")
	}
	provider, model, found := strings.Cut(ref, ":")
	if !found {
		return ModelRef{Provider: "openai", Model: ref}, nil
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)
	if model == "" {
		return ModelRef{}, fmt.Errorf("model reference %q has no model name", ref)
	}
	switch provider {
	case "openai", "groq", "gemini":
	default:
		return ModelRef{}, fmt.Errorf("model reference %q: unknown provider %q", ref, provider)
	}
	return ModelRef{Provider: provider, Model: model}, nil
}

// APIKey returns the credential configured for a provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "groq":
		return c.GroqAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

// Validate checks the settings needed to serve chat traffic: every referenced
// model must parse and have a credential.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	return c.ValidateModels()
}

// ValidateModels checks only the model settings; ingestion from the CLI does
// not need the JWT secret.
func (c *Config) ValidateModels() error {
	for _, key := range []struct{ name, ref string }{
		{"PRIMARY_LLM", c.PrimaryLLM},
		{"BACKUP_LLM", c.BackupLLM},
		{"EMBEDDING_MODEL", c.EmbeddingModel},
	} {
		if key.name == "BACKUP_LLM" && key.ref == "" {
			continue
		}
		ref, err := ParseModelRef(key.ref)
		if err != nil {
			return fmt.Errorf("%s: %w", key.name, err)
		}
		if c.APIKey(ref.Provider) == "" {
			return fmt.Errorf("%s uses provider %q but no API key is configured for it", key.name, ref.Provider)
		}
	}
	if ref, _ := ParseModelRef(c.EmbeddingModel); ref.Provider == "groq" {
		return errors.New("EMBEDDING_MODEL: groq does not offer embeddings")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("EMBEDDING_DIMENSIONS must be positive")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return errors.New("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	return nil
}

// IsPostgres reports whether DatabaseURL points at a Postgres server rather
// than a local SQLite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
