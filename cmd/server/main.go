package main

import (
	"net/http"

	"github.com/pphyo/multichat/internal/api"
	"github.com/pphyo/multichat/internal/chat"
	"github.com/pphyo/multichat/internal/config"
	"github.com/pphyo/multichat/internal/db"
	"github.com/pphyo/multichat/internal/llm"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	store, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer store.Close()

	registry := llm.NewRegistry(llm.NewDefaultProvider(cfg.OpenAIAPIKey, cfg.DefaultBaseURL))
	registry.Register("google", llm.NewGoogleProvider(cfg.GoogleAPIKey))
	registry.Register("nvidia", llm.NewNvidiaProvider(cfg.NvidiaAPIKey))

	chatService := chat.New(store, registry, logger)
	handler := api.NewHandler(store, chatService, config.AvailableModels, logger)

	mux := http.NewServeMux()
	handler.Register(mux)

	// Serve the browser UI
	mux.Handle("/", http.FileServer(http.Dir("ui")))

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
