package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"livecv.dev/digital-twin/internal/store"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

var (
	ErrKnowledgeStoreRequired = errors.New("knowledge store is required")
	ErrUnsupportedDocument    = errors.New("unsupported document format")
)

// Ingestor turns uploaded documents into embedded snippets. Jobs submitted
// with Submit run on a bounded worker pool, detached from the caller.
type Ingestor struct {
	embedder     Embedder
	knowledge    KnowledgeStore
	pool         *ants.Pool
	workers      int
	chunkSize    int
	chunkOverlap int
	jobs         sync.WaitGroup
	logger       *slog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithWorkers sets the number of concurrent ingestion jobs. Default is 2.
func WithWorkers(n int) IngestorOption {
	return func(i *Ingestor) {
		if n < 1 {
			n = 1
		}
		i.workers = n
	}
}

// WithChunking sets chunk size and overlap in characters.
func WithChunking(size, overlap int) IngestorOption {
	return func(i *Ingestor) {
		if size > 0 {
			i.chunkSize = size
		}
		if overlap >= 0 && overlap < i.chunkSize {
			i.chunkOverlap = overlap
		}
	}
}

// WithIngestLogger sets a custom logger. Default is slog.Default().
func WithIngestLogger(logger *slog.Logger) IngestorOption {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func NewIngestor(embedder Embedder, knowledge KnowledgeStore, opts ...IngestorOption) (*Ingestor, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if knowledge == nil {
		return nil, ErrKnowledgeStoreRequired
	}
	i := &Ingestor{
		embedder:     embedder,
		knowledge:    knowledge,
		workers:      2,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With("component", "ingestor")

	pool, err := ants.NewPool(i.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion pool: %w", err)
	}
	i.pool = pool
	return i, nil
}

// Submit schedules an ingestion job and returns its ID without waiting for it.
// Job failures are only logged.
func (i *Ingestor) Submit(data []byte, filename, language string) (uuid.UUID, error) {
	jobID := uuid.New()
	i.jobs.Add(1)
	err := i.pool.Submit(func() {
		defer i.jobs.Done()
		logger := i.logger.With("job_id", jobID, "filename", filename)
		added, err := i.Ingest(context.Background(), data, filename, language)
		if err != nil {
			logger.Error("ingestion failed", "err", err)
			return
		}
		logger.Info("ingestion finished", "snippets", added)
	})
	if err != nil {
		i.jobs.Done()
		return uuid.Nil, fmt.Errorf("failed to schedule ingestion: %w", err)
	}
	return jobID, nil
}

// Wait blocks until every submitted job has finished.
func (i *Ingestor) Wait() {
	i.jobs.Wait()
}

// Close waits for running jobs and releases the pool.
func (i *Ingestor) Close() {
	i.jobs.Wait()
	i.pool.Release()
}

// Ingest runs one job synchronously and returns the number of snippets stored.
// Unsupported formats are logged and yield (0, nil). An invalid language
// falls back to DefaultLanguage.
func (i *Ingestor) Ingest(ctx context.Context, data []byte, filename, language string) (int, error) {
	lang, err := ValidateLanguage(language)
	if err != nil {
		i.logger.Warn("invalid document language, defaulting", "language", language, "default", DefaultLanguage)
		lang = DefaultLanguage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	staged, err := stage(data, ext)
	if err != nil {
		return 0, err
	}
	defer os.Remove(staged)

	docs, err := extract(ctx, staged, ext)
	if errors.Is(err, ErrUnsupportedDocument) {
		i.logger.Warn("skipping unsupported document", "filename", filename, "extension", ext)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(i.chunkSize),
		textsplitter.WithChunkOverlap(i.chunkOverlap),
	)
	chunks, err := textsplitter.SplitDocuments(splitter, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to split %s: %w", filename, err)
	}

	snippets := make([]*store.Snippet, 0, len(chunks))
	for _, chunk := range chunks {
		content := strings.TrimSpace(chunk.PageContent)
		if content == "" {
			continue
		}
		vector, err := i.embedder.EmbedText(ctx, content)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk of %s: %w", filename, err)
		}
		snippets = append(snippets, &store.Snippet{
			Source:    filename,
			Content:   content,
			Language:  lang,
			Embedding: vector,
			Active:    true,
		})
	}

	if err := i.knowledge.InsertSnippets(ctx, snippets); err != nil {
		return 0, fmt.Errorf("failed to store snippets of %s: %w", filename, err)
	}
	i.logger.Info("stored document snippets", "filename", filename, "language", lang, "snippets", len(snippets))
	return len(snippets), nil
}

// stage writes data to a temporary file and returns its path.
func stage(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "ingest-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}
	return path, nil
}

func extract(ctx context.Context, path, ext string) ([]schema.Document, error) {
	switch ext {
	case ".pdf", ".md", ".txt":
	default:
		return nil, ErrUnsupportedDocument
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staging file: %w", err)
	}
	defer f.Close()

	var docs []schema.Document
	if ext == ".pdf" {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat staging file: %w", err)
		}
		docs, err = documentloaders.NewPDF(f, info.Size()).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf text: %w", err)
		}
	} else {
		docs, err = documentloaders.NewText(f).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read text document: %w", err)
		}
	}
	return docs, nil
}
