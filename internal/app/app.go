package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sundayezeilo/shortlink/internal/codegen"
	"github.com/sundayezeilo/shortlink/internal/config"
	"github.com/sundayezeilo/shortlink/internal/links"
	"github.com/sundayezeilo/shortlink/internal/server"
	"github.com/sundayezeilo/shortlink/internal/store/postgres"
	"github.com/sundayezeilo/shortlink/internal/store/sqlite"
)

const generatedTokenLength = 32

// Options carries command-line overrides.
type Options struct {
	ConfigPath string
	LogLevel   string // overrides the configured level when set
	EnvFile    string // defaults to .env
}

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   links.Store
	Server  *server.Server
	Handler *links.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context, opts Options) (*App, error) {
	if err := loadEnv(opts.EnvFile); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		if !config.ValidLogLevel(opts.LogLevel) {
			return nil, fmt.Errorf("invalid log level: %s", opts.LogLevel)
		}
		cfg.App.LogLevel = opts.LogLevel
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"backend", cfg.Database.Backend,
	)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	if cfg.Auth.BearerToken == "" {
		token, err := codegen.Token(generatedTokenLength)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to generate bearer token: %w", err)
		}
		cfg.Auth.BearerToken = token
		logger.Warn("no bearer token configured, generated one for this process",
			"bearer_token", token,
		)
	}

	registry := links.NewRegistry(store, &links.RegistryConfig{
		CodeSize:    cfg.Links.CodeSize,
		MaxAttempts: cfg.Links.MaxAttempts,
		Logger:      logger,
	})
	handler := links.NewHandler(links.HandlerConfig{
		Registry:    registry,
		Logger:      logger,
		BearerToken: cfg.Auth.BearerToken,
	})

	srv := server.New(cfg, logger, handler, store)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"code_size", cfg.Links.CodeSize,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
		a.Logger.Info("store closed")
	}

	return nil
}

// loadEnv loads an optional dotenv file outside production. An unset APP_ENV
// counts as development. Variables already set win.
func loadEnv(path string) error {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test":
	default:
		return nil
	}

	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (links.Store, error) {
	switch cfg.Database.Backend {
	case config.BackendSQLite:
		logger.Info("opening sqlite database", "path", cfg.Database.Name)
		store, err := sqlite.Open(ctx, cfg.Database.Name, int(cfg.Database.MaxConns))
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendPostgres:
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		store, err := postgres.Connect(ctx, cfg.Database.ConnectionString(), cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Database.Backend)
	}
}
