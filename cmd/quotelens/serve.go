package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quotelens/quotelens/internal/api"
	"github.com/quotelens/quotelens/internal/pipeline"
	"github.com/quotelens/quotelens/internal/platform/config"
	"github.com/quotelens/quotelens/internal/platform/observability"
	"github.com/quotelens/quotelens/internal/search"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analyze API server",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger(cfg.AppEnv)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch := buildOrchestrator(cfg, &logger)

			healthServer := observability.NewServer(cfg.HealthPort, nil, &logger)

			go func() {
				if err := healthServer.Start(ctx); err != nil {
					logger.Error().Err(err).Msg("health check server error")
				}
			}()

			server := api.NewServer(cfg, orch, &logger)

			if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("api server: %w", err)
			}

			logger.Info().Msg("server stopped")

			return nil
		},
	}
}

func buildOrchestrator(cfg *config.Config, logger *zerolog.Logger) *pipeline.Orchestrator {
	models := pipeline.NewModelRegistry(cfg, logger)

	registry := search.NewRegistry()

	breaker := search.BreakerConfig{
		Threshold:  cfg.CircuitThreshold,
		ResetAfter: cfg.CircuitReset,
	}

	registry.Register(search.NewGoogleCSEProvider(search.GoogleCSEConfig{
		APIKey:       cfg.GoogleCSEAPIKey,
		CX:           cfg.GoogleCSECX,
		Domains:      cfg.GoogleCSEDomains,
		Retries:      cfg.GoogleCSERetries,
		RateLimitRPS: cfg.GoogleCSERateLimit,
	}), breaker)

	registry.Register(search.NewRollcallProvider(search.RollcallConfig{
		Enabled:      cfg.RollcallEnabled,
		BaseURL:      cfg.RollcallBaseURL,
		RateLimitRPS: cfg.RollcallRateLimit,
	}), breaker)

	fetcher := search.NewFetcher(search.FetcherConfig{
		Timeout:     cfg.PageFetchTimeout,
		MinHTMLSize: cfg.PageFetchMinHTMLSize,
	}, logger)

	return pipeline.NewOrchestrator(cfg, models, registry, fetcher, logger)
}
