package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"summymail/internal/analysis"
	"summymail/internal/config"
	"summymail/internal/email"
	"summymail/internal/openai"
	"summymail/internal/server"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// A missing key is fatal before anything is served
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration Error: %v\n", err)
		logger.Fatal().Err(err).Msg("Configuration error")
	}
	logger.Info().Str("source", cfg.OpenAIKeySource).Msg("OpenAI API key loaded")

	client, err := openai.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create OpenAI client")
	}
	logger.Info().Str("provider", client.GetProviderName()).Msg("OpenAI client ready")

	analyzer := analysis.NewAnalyzer(client, logger)
	mailer := email.NewEmailService(cfg.SendGridAPIKey, cfg.DigestFromEmail)
	if !mailer.Configured() {
		logger.Info().Msg("SENDGRID_API_KEY not set, digest delivery disabled")
	}

	// Create and initialize server
	srv := server.New(cfg, analyzer, mailer, logger)
	srv.Initialize()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	if err := serve(srv, sig, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
	logger.Info().Msg("Server stopped")
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until a signal arrives and returns once shutdown has drained
func serve(srv lifecycle, sig <-chan os.Signal, logger zerolog.Logger) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sig

		logger.Info().Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		return err
	}
	<-stopped
	return nil
}
