package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"notewise/backend/internal/api"
	"notewise/backend/internal/config"
	"notewise/backend/internal/database"
	"notewise/backend/internal/llm"
	"notewise/backend/internal/repository"
	"notewise/backend/internal/service"
)

// App bundles the long-lived resources the process owns.
type App struct {
	DB     *sql.DB
	Server *http.Server
}

// NewApp wires the full dependency graph: database, repositories, services,
// handlers, and the HTTP server. It does not start listening.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.")

	repo := repository.NewSQLiteRepository(db)
	settingsService := service.NewSettingsService(db)

	appSettings, err := settingsService.InitAndGet(context.Background(), &service.Settings{
		Provider:             cfg.DefaultProvider,
		MainModel:            cfg.DefaultModel,
		SupportModel:         cfg.DefaultModel,
		APIKey:               cfg.OpenAIAPIKey,
		ReservedOutputTokens: cfg.ReservedOutputTokens,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize application settings: %w", err)
	}
	slog.Info("Loaded application settings", "provider", appSettings.Provider, "main_model", appSettings.MainModel)

	// The registry is rebuilt per exchange so credential changes in settings
	// take effect without a restart.
	registryFactory := func(settings *service.Settings) *llm.Registry {
		return llm.NewRegistry(
			llm.NewOllamaProvider(cfg.OllamaURL, nil),
			llm.NewOpenAIProvider(cfg.OpenAIBaseURL, settings.APIKey, nil),
		)
	}

	chatService := service.NewChatService(repo, registryFactory, settingsService)
	providerService := service.NewProviderService(registryFactory, settingsService)

	chatHandler := api.NewChatHandler(chatService, settingsService)
	providerHandler := api.NewProviderHandler(providerService)
	router := api.NewRouter(chatHandler, providerHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	waitForOllama(cfg.OllamaURL, 60*time.Second)

	application, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		return 1
	}
	defer func() {
		if err := application.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting server", "addr", application.Server.Addr)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return application.Server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}

	slog.Info("Server stopped.")
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// waitForOllama blocks until the local backend answers or the deadline
// passes. A missing Ollama is not fatal; the OpenAI backend may still serve.
func waitForOllama(ollamaURL string, maxWait time.Duration) {
	slog.Info("Waiting for Ollama to be ready...")
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		resp, err := client.Get(ollamaURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in ollama health check", "error", bErr)
			}
			slog.Info("Ollama is ready.")
			return
		}
		if resp != nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in ollama health check (retry path)", "error", bErr)
			}
		}
		slog.Debug("Ollama not ready yet, retrying in 3 seconds...", "url", ollamaURL, "error", err)
		time.Sleep(3 * time.Second)
	}
	slog.Warn("Ollama did not become ready in time, continuing without it.", "url", ollamaURL)
}
