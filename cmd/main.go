package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/westpoint-events/rsvpd/internal/config"
	"github.com/westpoint-events/rsvpd/internal/handler"
	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/token"
)

// adminSessionTTL bounds how long an admin login stays valid.
const adminSessionTTL = 12 * time.Hour

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to the database
	db, err := config.NewGormDB(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("failed to auto-migrate", zap.Error(err))
	}
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	// 4. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}
	workflowState := repository.NewWorkflowState(stateStore, cfg.State.TTL)

	// 5. Initialize repositories
	rsvpRepo := repository.NewGormRSVPRepository(db)
	seatingRepo := repository.NewGormSeatingRepository(db)

	// 6. Initialize token manager and sessions
	if cfg.Session.SigningKey == "" {
		logger.Fatal("session.signing_key must be configured")
	}
	tokens := token.NewManager(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.CookieTTL, adminSessionTTL)
	sessions := handler.NewSessions(tokens, cfg.Session.CookieTTL, cfg.Session.Secure)

	// 7. Initialize services
	rsvpService := service.NewRSVPService(rsvpRepo, logger)
	adminService := service.NewAdminService(rsvpRepo, logger)
	seatingService := service.NewSeatingService(rsvpRepo, seatingRepo)

	// 8. Initialize handlers
	rsvpHandler := handler.NewRSVPHandler(rsvpService, workflowState, sessions, logger)
	guestHandler := handler.NewGuestHandler(rsvpService, workflowState, sessions, logger)
	seatingHandler := handler.NewSeatingHandler(seatingService, rsvpService, workflowState, sessions)
	adminHandler := handler.NewAdminHandler(adminService, tokens, cfg.Admin.Token)

	// 9. Setup router
	router := handler.SetupRouter(cfg, logger, tokens, rsvpHandler, guestHandler, seatingHandler, adminHandler)

	// 10. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 11. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
