package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/metrics"
	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/providers"
	"github.com/SFillip/el-backend/internal/repository"
	"github.com/SFillip/el-backend/internal/services"
	"github.com/SFillip/el-backend/internal/tracing"
	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/config"
	"github.com/SFillip/el-backend/pkg/persistence"
)

type Application struct {
	Config          *config.Config
	Engine          *gin.Engine
	Store           persistence.Store
	Users           services.UserService
	Stats           services.StatisticsService
	Logger          *slog.Logger
	TZ              *time.Location
	Validator       auth.Validator
	Issuer          auth.Issuer
	TracingShutdown func(context.Context) error
}

// ApplicationOption configures the Application
type ApplicationOption func(*Application) error

// WithValidator sets a custom token validator
func WithValidator(validator auth.Validator) ApplicationOption {
	return func(app *Application) error {
		app.Validator = validator
		return nil
	}
}

// WithIssuer sets a custom token issuer
func WithIssuer(issuer auth.Issuer) ApplicationOption {
	return func(app *Application) error {
		app.Issuer = issuer
		return nil
	}
}

// WithStore sets a custom storage backend
func WithStore(store persistence.Store) ApplicationOption {
	return func(app *Application) error {
		app.Store = store
		return nil
	}
}

func NewApplication(cfg *config.Config, opts ...ApplicationOption) (*Application, error) {
	level := new(slog.LevelVar)
	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler).With("service", "el-backend", "env", cfg.Env)
	slog.SetDefault(logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.LoggerMiddleware(logger))

	tracingShutdown, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.TracingEnabled,
		ServiceName:  "el-backend",
		OTLPEndpoint: cfg.TracingEndpoint,
	}, logger)
	if err != nil {
		return nil, err
	}
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingMiddleware("el-backend"))
	}

	app := &Application{
		Config:          cfg,
		Engine:          engine,
		Logger:          logger,
		TZ:              cfg.Location(),
		TracingShutdown: tracingShutdown,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.Store == nil {
		store, err := buildStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		app.Store = store
	}

	if app.Validator == nil {
		settings, err := cfg.Auth.ProviderSettings()
		if err != nil {
			return nil, err
		}
		validator, err := auth.NewValidator(auth.ProviderConfig{
			Type:   cfg.Auth.Provider,
			Config: settings,
		})
		if err != nil {
			return nil, fmt.Errorf("auth provider %q: %w", cfg.Auth.Provider, err)
		}
		app.Validator = validator
	}
	if app.Issuer == nil {
		// hs256 signers issue and validate; asymmetric providers validate only.
		if issuer, ok := app.Validator.(auth.Issuer); ok {
			app.Issuer = issuer
		} else {
			logger.Warn("token provider cannot issue tokens; /Authenticate disabled",
				"provider", cfg.Auth.Provider)
		}
	}

	app.Users = services.NewUserService(app.Store.Users())
	app.Stats = services.NewStatisticsService(app.Store.Telemetry())
	return app, nil
}

// buildStore resolves the persistence backend. The redis path is built
// directly so the shared client can also feed the redis metrics collector;
// everything else goes through the provider registry.
func buildStore(cfg *config.Config, logger *slog.Logger) (persistence.Store, error) {
	if cfg.Storage.Type == "redis" {
		client := providers.NewRedisProviderDB(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		metrics.RegisterRedisCollector(client, logger)
		return repository.NewStore(client), nil
	}
	settings, err := cfg.Storage.ProviderSettings()
	if err != nil {
		return nil, err
	}
	return persistence.NewStore(persistence.ProviderConfig{
		Type:   cfg.Storage.Type,
		Config: settings,
	})
}
