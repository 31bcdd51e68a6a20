package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"voice-console/internal/api"
	"voice-console/internal/auth"
	"voice-console/internal/config"
	"voice-console/internal/database"
	"voice-console/internal/gateway"
	"voice-console/internal/logging"
	"voice-console/internal/session"
	"voice-console/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitGorm(cfg)
	if err != nil {
		logger.Fatal("failed to open console store", zap.Error(err))
	}
	store := database.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(cfg.AllowedOrigin, logger)
	go hub.Run(ctx)

	sessions := session.NewManager(store, hub, logger)
	client := gateway.NewClient(cfg.APIBaseURL,
		gateway.WithObserver(sessions),
		gateway.WithRetry(gateway.RetryConfig{Retries: cfg.ReadRetries, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}),
		gateway.WithLogger(logger),
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(&api.Env{
		Gateway:       client,
		Sessions:      sessions,
		Roles:         auth.NewResolver(cfg.JWTSecret, cfg.RoleCacheTTL, logger),
		Hub:           hub,
		Logger:        logger,
		AllowedOrigin: cfg.AllowedOrigin,
		CookieSecure:  cfg.CookieSecure,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("backend", cfg.APIBaseURL), zap.String("store", cfg.DBDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
