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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	"github.com/plakor-mes/assy-dashboard/internal/core/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/handlers"
	"github.com/plakor-mes/assy-dashboard/internal/middleware"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
	"github.com/plakor-mes/assy-dashboard/internal/repositories/database/mongodb"
	"github.com/plakor-mes/assy-dashboard/internal/repositories/database/mssql"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := siteregistry.New(cfg.Sites)

	// Plant pools open lazily on first use; only the manager is built here.
	manager := dbmanager.NewManager(registry, cfg.PoolRetireGrace, logger,
		dbmanager.WithPrewarm(cfg.PoolPrewarm))
	defer manager.CloseAll()

	// The document store is optional: without it the auth and workspace
	// services run degraded on the static roster and menu tree.
	var authRepo portsrepo.AuthRepositoryFacade
	if cfg.MongoURI != "" {
		db, cleanup, err := mongodb.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("Document store unreachable, continuing in degraded mode",
				slog.String("error", err.Error()))
		} else {
			defer cleanup()
			authRepo = mongodb.NewAuthRepository(db, logger)
			logger.Info("Document store connected", slog.String("database", cfg.MongoDB))
		}
	} else {
		logger.Warn("MONGODB_URI not set, continuing in degraded mode")
	}

	repos := portsrepo.RepositoryProvider{
		SpecRepo:     mssql.NewSpecRepository(manager, registry, logger),
		SequenceRepo: mssql.NewSequenceRepository(manager, registry, logger),
		AuthRepo:     authRepo,
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, registry, manager, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidations(v); err != nil {
			logger.Error("Failed to register validations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig()))
	if limiterInstance, err := buildRateLimiter(cfg.RateLimit); err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("error", err.Error()))
		os.Exit(1)
	} else {
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Block until an interrupt, then drain in-flight requests before the
	// deferred pool teardown runs.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}

// corsConfig allows the dashboard frontend to call from another origin. The
// Authorization header must be listed explicitly or preflights fail.
func corsConfig() cors.Config {
	c := cors.DefaultConfig()
	c.AllowAllOrigins = true
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.ExposeHeaders = append(c.ExposeHeaders, "Content-Disposition", "X-Request-ID")
	return c
}

// buildRateLimiter parses the configured rate (e.g. "300-M") into an
// in-memory limiter.
func buildRateLimiter(format string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}
