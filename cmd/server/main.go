package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-companion-demo/backend/internal/ai"
	"ai-companion-demo/backend/internal/service"
	"ai-companion-demo/backend/internal/store"
	"ai-companion-demo/backend/pkg/config"
	"ai-companion-demo/backend/pkg/jwt"
	"ai-companion-demo/backend/pkg/logger"
	"ai-companion-demo/backend/pkg/metrics"
	"ai-companion-demo/backend/pkg/router"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format != "text",
	})
	logger.SetGlobal(log)

	log.Info("Starting application", "env", cfg.Server.Env, "storage", cfg.Storage.Backend)

	var dataStore store.Store
	switch cfg.Storage.Backend {
	case "postgres":
		gormStore, err := store.NewGormStore(
			cfg.Storage.Host,
			cfg.Storage.Port,
			cfg.Storage.User,
			cfg.Storage.Password,
			cfg.Storage.Name,
			cfg.Storage.SSLMode,
		)
		if err != nil {
			log.LogError(err, "Failed to initialize database")
			os.Exit(1)
		}
		dataStore = gormStore
	default:
		// Volatile by design: history lives only as long as the process
		dataStore = store.NewMemStore()
	}

	if cfg.AI.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; reply generation will fail until it is configured")
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	aiClient := ai.NewClient(ai.Config{
		APIKey:  cfg.AI.GeminiAPIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})

	r := router.New(router.Deps{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Users:      service.NewUserService(dataStore, jwtService),
		Messages:   service.NewMessageService(dataStore, aiClient),
		Metrics:    metrics.New(),
	})
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
