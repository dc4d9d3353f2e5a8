package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"livecv.dev/digital-twin/internal/auth"
)

func ingestCmd() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Extract, chunk, embed and store documents (.pdf, .md, .txt)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateModels(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := buildServices(ctx, false)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer svc.Close()

			total := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				added, err := svc.ingestor.Ingest(ctx, data, filepath.Base(path), language)
				if err != nil {
					return err
				}
				total += added
			}
			logger.Info("ingestion complete", "files", len(args), "snippets", total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "language of the documents (en, es, pt)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an admin JWT for the document and snippet endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl == 0 {
				ttl = time.Duration(cfg.JWTExpirationMinutes) * time.Minute
			}
			token, err := auth.GenerateJWT(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRATION_MINUTES)")
	return cmd
}
