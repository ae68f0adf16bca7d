package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amax-bi/anna-gateway/internal/api"
	"github.com/amax-bi/anna-gateway/internal/config"
	"github.com/amax-bi/anna-gateway/internal/relay"
	"github.com/amax-bi/anna-gateway/internal/repository"
	"github.com/amax-bi/anna-gateway/internal/service"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (sessions and turn history)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db, cfg.History.MaxTurns)

	// Initialize upstream relay
	upstream := relay.New(cfg.Upstream, cfg.Security.AllowedDomains, logger)

	// Initialize services
	chatService := service.NewChatService(cfg, sessionRepo, upstream, logger)
	widgetService := service.NewWidgetService(cfg)

	// Setup router
	router := api.SetupRouter(chatService, widgetService, api.RouterConfig{
		AllowOrigins: []string{"*"},
		RateLimit:    cfg.RateLimit,
	})

	// Create HTTP server. Write timeout leaves headroom over the upstream
	// ceiling so long analytic queries are not cut off by the server itself.
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Anna gateway",
			zap.String("address", cfg.Address()),
			zap.String("upstream", cfg.Upstream.URL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
