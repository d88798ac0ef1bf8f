package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/config"
	"github.com/snappy-loop/seacreatures/internal/credentials"
	"github.com/snappy-loop/seacreatures/internal/handlers"
	"github.com/snappy-loop/seacreatures/internal/llm"
	"github.com/snappy-loop/seacreatures/internal/services"
	"github.com/snappy-loop/seacreatures/internal/stability"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load reads .env too, so LOG_LEVEL may come from there.
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Sea Creature Generator")

	ctx := context.Background()
	provider, err := credentials.Select(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize credential provider")
	}
	creds := credentials.Resolve(ctx, provider)
	if !creds.Complete() {
		log.Warn().Msg("API keys missing; submissions will be rejected until they are configured")
	}

	textGen, err := llm.NewTextGenerator(cfg.TextBackend, cfg.GeminiModel, cfg.GeminiAPIEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize text generator")
	}
	imageGen := stability.NewClient(cfg.StabilityAPIHost, nil)

	creatureService := services.NewCreatureService(textGen, imageGen, creds, cfg.MaxIdeaLength)
	h := handlers.NewHandler(creatureService, creds, cfg.GeminiModel, stability.EngineID)
	r := handlers.NewRouter(h)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("text_backend", cfg.TextBackend).
			Str("text_model", cfg.GeminiModel).
			Str("image_endpoint", imageGen.Endpoint()).
			Msg("Web server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Web server exited")
}
