package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	httpapi "github.com/ikudjoi/fluentmigrator/internal/api/http"
	"github.com/ikudjoi/fluentmigrator/internal/config"
	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/loader"
	"github.com/ikudjoi/fluentmigrator/internal/logger"
)

func main() {
	// Without FM_CONFIG_FILE, ./fluentmigrator.yaml is used if present
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG_FILE"))
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Unknown log level %q, keeping default", cfg.LogLevel)
	}

	logger.Info("Initializing FluentMigrator server...")

	src, err := cfg.MigrationSource()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	l := loader.New(src, cfg.FilterOptions(), conventions.NewDefault(cfg.ConventionOptions()...))

	// Load eagerly so a broken tree shows up at startup; the outcome is cached
	if reg, err := l.LoadMigrations(); err != nil {
		logger.Errorf("Failed to load migrations from %s: %v", cfg.Source.Path, err)
	} else {
		logger.WithFields(logger.Fields{
			"source":     cfg.Source.Kind,
			"path":       cfg.Source.Path,
			"namespace":  cfg.Filter.Namespace,
			"tags":       cfg.Filter.Tags,
			"migrations": reg.Len(),
		}).Info("Loaded migrations")
	}

	router := newRouter(l, cfg.Server.APIToken)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting HTTP server on port %s", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	logger.Infof("HTTP API available at http://localhost:%s", cfg.Server.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func newRouter(l httpapi.RegistryLoader, apiToken string) *gin.Engine {
	router := gin.New()

	// Skip logging for health check endpoints
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if param.Path == "/health" || param.Path == "/api/v1/health" {
			return ""
		}
		return fmt.Sprintf("[GIN] %s | %3d | %13v | %15s | %-7s %s\n",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
		)
	}))
	router.Use(gin.Recovery())

	handler := httpapi.NewHandler(l, apiToken)
	handler.RegisterRoutes(router)
	router.GET("/health", handler.Health)

	return router
}
