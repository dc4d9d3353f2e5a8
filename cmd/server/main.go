package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"livecv.dev/digital-twin/internal/api"
	"livecv.dev/digital-twin/internal/config"
	"livecv.dev/digital-twin/internal/core"
	"livecv.dev/digital-twin/internal/llm"
	"livecv.dev/digital-twin/internal/store"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "digital-twin",
		Short: "Retrieval-augmented chat service answering questions about a professional profile",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.LoadConfig()
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			slog.SetDefault(logger)
		},
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// services holds everything built from the configuration, plus the
// resources to release on exit.
type services struct {
	store    store.Store
	embedder core.Embedder
	chat     *core.ChatService
	ingestor *core.Ingestor
	closers  []io.Closer
}

func (s *services) Close() {
	if s.ingestor != nil {
		s.ingestor.Close()
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logger.Warn("error closing resource", "err", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("error closing store", "err", err)
		}
	}
}

func buildServices(ctx context.Context, withChat bool) (*services, error) {
	s := &services{}
	var err error

	s.store, err = store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s.embedder, err = llm.NewEmbedder(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.track(s.embedder)

	s.ingestor, err = core.NewIngestor(s.embedder, s.store,
		core.WithWorkers(cfg.IngestWorkers),
		core.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		core.WithIngestLogger(logger),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	if !withChat {
		return s, nil
	}

	models, err := llm.NewChatModels(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	for _, m := range models {
		s.track(m)
	}
	engine, err := core.NewGenerationEngine(logger, models...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.chat, err = core.NewChatService(s.embedder, core.NewRetriever(s.store, cfg.RetrievalTopK), engine, s.store, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *services) track(v any) {
	if c, ok := v.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer()
		},
	}
}

func runServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	apiHandler := api.NewAPIHandler(svc.chat, svc.ingestor, svc.store, cfg.JWTSecret, logger)
	router := api.NewRouter(apiHandler, api.NewRateLimiter(cfg.RateLimitPerMinute))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Streaming answers keep the connection open while the model generates.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", serverAddr, "primary_llm", cfg.PrimaryLLM, "backup_llm", cfg.BackupLLM)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting gracefully")
	return nil
}
