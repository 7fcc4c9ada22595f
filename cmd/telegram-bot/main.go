package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-insights/internal/app"
	"meal-insights/internal/config"
	"meal-insights/internal/logger"
	"meal-insights/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, cleanup, err := app.Build(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize app", "error", err)
	}
	defer cleanup()

	// Serve from local data right away; a failed first sync is not fatal
	if _, err := application.Sync(ctx); err != nil {
		appLog.Warn("Initial backend sync failed", "error", err)
	}

	bot, err := telegram.NewBot(cfg, application, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize Telegram Bot", "error", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Telegram Bot Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}
	appLog.Info("Server exiting")
}
