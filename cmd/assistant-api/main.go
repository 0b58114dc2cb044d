package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soccercentral/assistant/internal/api"
	"github.com/soccercentral/assistant/internal/audit"
	"github.com/soccercentral/assistant/internal/auth"
	"github.com/soccercentral/assistant/internal/config"
	"github.com/soccercentral/assistant/internal/llm"
	"github.com/soccercentral/assistant/internal/observability"
	"github.com/soccercentral/assistant/internal/pipeline"
	"github.com/soccercentral/assistant/internal/schema"
	"github.com/soccercentral/assistant/internal/session"
	"github.com/soccercentral/assistant/internal/storage"
	s3store "github.com/soccercentral/assistant/internal/storage/s3"
	"github.com/soccercentral/assistant/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("assistant-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	model, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:    cfg.AI.BaseURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout,
		MaxRetries: cfg.AI.MaxRetries,
	})
	if err != nil {
		logger.Error("failed to initialize model client", slog.Any("error", err))
		os.Exit(1)
	}

	var objectStore storage.ObjectStore
	if cfg.Audit.ArchiveEnabled || cfg.ObjectStore.Endpoint != "" {
		objectStore, err = s3store.New(ctx, cfg.ObjectStore)
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		pgRecorder := audit.NewPostgresRecorder(db, logger)
		recorder = pgRecorder
		if cfg.Audit.ArchiveEnabled {
			if objectStore == nil {
				logger.Error("audit archiving requires an object store")
				os.Exit(1)
			}
			archiver := audit.NewArchiver(pgRecorder, objectStore, logger, cfg.Audit)
			go archiver.Run(ctx)
		}
	}

	assistant := pipeline.New(pipeline.Options{
		LLM:      model,
		Executor: store.NewExecutor(db, cfg.Database.QueryTimeout, cfg.Database.MaxRows),
		Recorder: recorder,
		Logger:   logger,
		AI:       cfg.AI,
		Cache:    cfg.Cache,
		MaxRows:  cfg.Database.MaxRows,
	})
	defer assistant.Close()

	sessions := session.NewStore(cfg.Cache.TTL, 20)
	defer sessions.Stop()

	deps := api.Dependencies{
		Logger:    logger,
		Assistant: assistant,
		Sessions:  sessions,
		Schema:    schema.Default(),
		Exports:   objectStore,
		Readiness: api.CombineReadinessChecks(
			api.CheckDatabaseDSN(cfg),
			api.CheckAIConfig(cfg),
			db.PingContext,
		),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		entries := strings.Split(cfg.Auth.StaticKeys, ",")
		validator, err := auth.NewStaticAPIKeyValidator(entries)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(validator, true)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
