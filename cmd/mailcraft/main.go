// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the mailcraft server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailcraft/internal/ai"
	"mailcraft/internal/assist"
	"mailcraft/internal/cache"
	"mailcraft/internal/config"
	"mailcraft/internal/database"
	"mailcraft/internal/engine"
	"mailcraft/internal/handlers"
	"mailcraft/internal/imaging"
	"mailcraft/internal/middleware"
	"mailcraft/internal/render"
	"mailcraft/internal/router"
	"mailcraft/internal/session"
	"mailcraft/internal/storage"
	"mailcraft/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN not set, the /api routes will reject every request")
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	conversations := session.NewStore(valkeyClient)

	eng := engine.New()
	eng.SetPreviewStore(cache.NewPreviewCache(valkeyClient, cache.DefaultPreviewTTL))

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Object storage is optional; without it uploads answer 503.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, asset uploads disabled")
	}

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, ModelImage: cfg.GeminiImageModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	assistant := assist.New(aiRegistry, conversations, imaging.NewFetcher(nil, 0), assist.Models{
		Fast:  cfg.AIFastModel,
		Smart: cfg.AISmartModel,
	})

	api := handlers.New(handlers.Deps{
		Posts:     store.NewPostStore(db),
		Revisions: store.NewRevisionStore(db),
		Assets:    store.NewAssetStore(db),
		Themes:    store.NewThemeStore(db),
		Tags:      store.NewTagStore(db),
		Storage:   storageClient,
		Engine:    eng,
		Renderer:  renderer,
		PageCache: pageCache,
		AI:        aiRegistry,
		Assistant: assistant,
	})

	aiLimiter := middleware.NewRateLimiter(cfg.AIRateLimit, cfg.AIRateWindow)
	defer aiLimiter.Stop()

	r := router.New(api, router.Options{
		AdminToken: cfg.AdminToken,
		AILimiter:  aiLimiter,
	})

	// WriteTimeout must accommodate AI routes that wait on long model
	// replies.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
