package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"keasy-ai/internal/api"
	"keasy-ai/internal/api/handlers"
	"keasy-ai/internal/repository"
	"keasy-ai/internal/service"
	"keasy-ai/pkg/config"
	"keasy-ai/pkg/logger"
	"keasy-ai/pkg/postgres"

	"go.uber.org/zap"
)

// @title Keasy AI API
// @version 1.0
// @description Retrieval-and-answer pipeline behind the Keasy AI chat assistant

// @contact.name API Support
// @contact.email support@keasy.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Keasy AI service", zap.String("env", cfg.Env))

	ctx := context.Background()

	// KB store credentials are optional: without them every question routes
	// through the general-knowledge path.
	var kbStore service.KbStore
	if cfg.Database.Enabled() {
		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to knowledge base", zap.Error(err))
		}
		defer db.Close()
		kbStore = repository.NewKbRepository(db, appLogger)
	} else {
		appLogger.Warn("Knowledge base credentials missing, KB search disabled")
	}

	piiService := service.NewPIIService(service.NewRegexDetector())
	kbService := service.NewKbService(kbStore, appLogger)
	llmService := service.NewLLMService(&cfg.DeepSeek, appLogger)
	searchService := service.NewSearchService(&cfg.Search, piiService, appLogger)

	chatService := service.NewChatService(
		kbService,
		llmService,
		searchService,
		piiService,
		cfg.Keasy,
		cfg.IsProduction(),
		appLogger,
	)

	chatHandler := handlers.NewChatHandler(chatService, appLogger)

	app := api.SetupRouter(chatHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
