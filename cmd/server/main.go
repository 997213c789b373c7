package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/leadroom/internal/api"
	"github.com/ignite/leadroom/internal/config"
	"github.com/ignite/leadroom/internal/generation"
	"github.com/ignite/leadroom/internal/pkg/logger"
	"github.com/ignite/leadroom/internal/scoring"
	"github.com/ignite/leadroom/internal/settings"
	"github.com/ignite/leadroom/internal/templates"
	"github.com/ignite/leadroom/internal/tracking"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Server.LogLevel))

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err.Error())
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		logger.Error("database ping failed", "error", err.Error())
		os.Exit(1)
	}
	cancelPing()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("invalid redis URL", "error", err.Error())
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)

	// Settings stack: durable postgres store behind the debounced
	// redis-backed tier.
	durableClients := settings.NewPostgresClientStore(db)
	clients := settings.NewDebouncedClientStore(durableClients, rdb, cfg.Settings.FlushDelay(), cfg.Settings.CacheTTL())
	globals := settings.NewPostgresGlobalStore(db)
	resolver := settings.NewResolver(clients, globals)

	scoringSvc := scoring.NewService(resolver)

	templateStore := templates.NewPostgresStore(db)
	templatesSvc := templates.NewService(templateStore)
	renderer := templates.NewPromptRenderer()

	trackingStore := tracking.NewPostgresStore(db)
	prospectStore := tracking.NewPostgresProspectStore(db)
	signer := tracking.NewSigner(cfg.Tracking.SigningKey, cfg.Tracking.BaseURL)
	trackingSvc := tracking.NewService(trackingStore, prospectStore, signer)

	generator, err := buildGenerator(cfg)
	if err != nil {
		logger.Error("failed to build generator", "error", err.Error())
		os.Exit(1)
	}

	limiter := generation.NewRateLimiter(rdb, generation.Limits{
		DailyGenerations: cfg.Limits.DailyGenerations,
		DailyTokens:      cfg.Limits.DailyTokens,
		DailyCostUSD:     cfg.Limits.DailyCostUSD,
	})

	generationSvc := generation.NewService(
		generator,
		templatesSvc,
		renderer,
		limiter,
		prospectStore,
		trackingStore,
		cfg.Generation.Timeout(),
		cfg.Generation.MaxTokens,
		cfg.Generation.InputRate,
		cfg.Generation.OutputRate,
	)

	handlers := api.NewHandlers(resolver, scoringSvc, templatesSvc, generationSvc, trackingSvc)
	router := api.SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "provider", cfg.Generation.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err.Error())
	}
	// Drain pending settings writes before the process exits.
	if err := clients.Close(); err != nil {
		logger.Error("settings flush on shutdown failed", "error", err.Error())
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close failed", "error", err.Error())
	}
	if err := db.Close(); err != nil {
		logger.Warn("database close failed", "error", err.Error())
	}
	logger.Info("shutdown complete")
}

// buildGenerator picks the model backend from config. An empty
// Anthropic key with the anthropic provider still starts the server;
// generation then always takes the static fallback path.
func buildGenerator(cfg *config.Config) (generation.Generator, error) {
	switch cfg.Generation.Provider {
	case "bedrock":
		return generation.NewBedrockGenerator(
			context.Background(),
			cfg.Generation.BedrockModelID,
			cfg.Generation.BedrockRegion,
			cfg.Generation.MaxTokens,
		)
	case "anthropic":
		if cfg.Generation.AnthropicAPIKey == "" {
			logger.Warn("no anthropic api key configured, generation will use static fallback")
			return nil, nil
		}
		return generation.NewAnthropicGenerator(
			cfg.Generation.AnthropicAPIKey,
			cfg.Generation.AnthropicModel,
			cfg.Generation.MaxTokens,
			cfg.Generation.Timeout(),
		), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Generation.Provider)
	}
}
