// Polymind engine server. Exposes the streaming think endpoint and routes
// requests through the configured thinking-mode pipelines.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/polymind-ai/polymind/pkg/api"
	"github.com/polymind-ai/polymind/pkg/config"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/orchestrator"
	"github.com/polymind-ai/polymind/pkg/version"
)

const shutdownTimeout = 15 * time.Second

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	configPath := flag.String("config",
		getEnv("CONFIG_FILE", ""),
		"Path to the YAML configuration file (optional)")
	envPath := flag.String("env-file",
		getEnv("ENV_FILE", ".env"),
		"Path to the .env file")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", *envPath, "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if len(cfg.APIKeys) == 0 {
		logger.Warn("No API keys configured; requests will fail until " +
			config.EnvAPIKeys + " is set")
	}

	client := llm.NewCerebrasClient(cfg.BaseURL)
	orch := orchestrator.New(client, cfg.APIKeys, logger)
	server := api.NewServer(cfg, orch, logger)
	httpServer := server.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			"addr", httpServer.Addr,
			"version", version.Full(),
			"keys", len(cfg.APIKeys))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("Server error triggered shutdown", "error", err)
	}

	// In-flight streams get a grace period; anything still generating after
	// the timeout is cut off with the connection.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
