package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Halfdees/Halo-csr-wrapper/internal/auth"
	"github.com/Halfdees/Halo-csr-wrapper/internal/config"
	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
	"github.com/Halfdees/Halo-csr-wrapper/internal/handlers"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
	"github.com/Halfdees/Halo-csr-wrapper/internal/middleware"
	"github.com/Halfdees/Halo-csr-wrapper/internal/relay"
	"github.com/Halfdees/Halo-csr-wrapper/internal/tier"
	"github.com/Halfdees/Halo-csr-wrapper/internal/upstream"
)

func main() {
	cfg := config.Load()
	flag.Parse()

	appLogger := logger.New(cfg.DebugMode)
	defer func() {
		_ = appLogger.Sync() // Ignore sync errors on close, as per zap documentation
	}()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration",
			"error", err,
		)
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.DebugMode {
		gin.SetMode(gin.DebugMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tiers, err := loadTierTable(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load tier table",
			"error", err,
		)
	}

	router := newRouter(cfg, appLogger)
	registerHandlers(router, cfg, newUpstreamClient(cfg, appLogger), tiers, appLogger)

	srv, err := newServer(cfg, router)
	if err != nil {
		appLogger.Fatal("Failed to configure server",
			"error", err,
		)
	}

	go func() {
		appLogger.Info("Relay starting",
			"port", cfg.Port,
			"tls", srv.TLSConfig != nil,
			"forward_mode", cfg.ForwardMode,
			"grunt_url", cfg.UpstreamURL,
			"caller_auth", cfg.AuthEnabled(),
			"tier_policy", cfg.TierPolicy,
			"debug_mode", cfg.DebugMode,
		)
		if err := listenAndServe(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server failed to start",
				"error", err,
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received, shutting down server...")

	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			"error", err,
		)
		return
	}

	appLogger.Info("Server exited gracefully")
}

func newRouter(cfg *config.Config, appLogger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(appLogger),
		gin.CustomRecovery(relay.RecoveryHandler(appLogger)),
	)

	if cfg.DebugMode {
		router.Use(cors.New(cors.Config{
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{constant.HeaderCallerAuth, constant.HeaderRequestID, "Accept"},
			ExposeHeaders: []string{"Content-Type", constant.HeaderRequestID},
			AllowOriginFunc: func(origin string) bool {
				return true
			},
			MaxAge: 12 * time.Hour,
		}))
	}

	return router
}

// newUpstreamClient returns nil when no Grunt call can be made: stub mode, or
// a missing URL/secret (lookups then fail with a configuration error).
//
//nolint:ireturn // Returns the Client interface so nil means "no upstream".
func newUpstreamClient(cfg *config.Config, appLogger *logger.Logger) upstream.Client {
	if !cfg.ForwardMode.Forwards() {
		return nil
	}
	if !cfg.UpstreamConfigured() {
		appLogger.Warn("GRUNT_URL or GRUNT_SHARED_SECRET is not set, /csr will answer 500",
			"forward_mode", cfg.ForwardMode,
		)
		return nil
	}
	return upstream.NewHTTPClient(appLogger, cfg.UpstreamURL, cfg.UpstreamSecret, cfg.UpstreamTimeout)
}

// loadTierTable picks the tier table source:
//   - built-in (default): the Halo ranked thresholds
//   - file: --tier-table-file YAML document
//   - configmap: --tier-configmap in --namespace, read once at startup
func loadTierTable(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*tier.Table, error) {
	switch {
	case cfg.TierTableFile != "":
		appLogger.Info("Loading tier table from file",
			"path", cfg.TierTableFile,
		)
		return tier.LoadFile(cfg.TierTableFile)

	case cfg.TierConfigMap != "":
		appLogger.Info("Loading tier table from ConfigMap",
			"configmap", cfg.TierConfigMap,
			"namespace", cfg.Namespace,
		)
		clientset, err := config.NewClientSet()
		if err != nil {
			return nil, err
		}
		return tier.NewConfigMapLoader(appLogger, clientset, cfg.Namespace, cfg.TierConfigMap).Load(ctx)

	default:
		return tier.Default(), nil
	}
}

func registerHandlers(router *gin.Engine, cfg *config.Config, client upstream.Client, tiers *tier.Table, appLogger *logger.Logger) {
	healthHandler := handlers.NewHealthHandler()
	router.GET("/", healthHandler.HealthCheck)
	router.GET("/health", healthHandler.HealthCheck)

	lookupService := relay.NewService(appLogger, relay.Options{
		Mode:               cfg.ForwardMode,
		TierPolicy:         cfg.TierPolicy,
		UpstreamConfigured: cfg.UpstreamConfigured(),
	}, client, tiers)
	csrHandler := relay.NewHandler(appLogger, lookupService)

	router.GET("/csr", auth.SharedSecretMiddleware(appLogger, cfg.CallerSecret), csrHandler.LookupCSR)

	router.NoRoute(handlers.NotFound)
	router.NoMethod(handlers.NotFound)
}
