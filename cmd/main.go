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

	"github.com/vnkhanh/bizsim-server/config"
	"github.com/vnkhanh/bizsim-server/controllers"
	"github.com/vnkhanh/bizsim-server/events"
	"github.com/vnkhanh/bizsim-server/metrics"
	"github.com/vnkhanh/bizsim-server/middleware"
	"github.com/vnkhanh/bizsim-server/routes"
	"github.com/vnkhanh/bizsim-server/services"
	"github.com/vnkhanh/bizsim-server/sessionstore"
	"github.com/vnkhanh/bizsim-server/storage"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Kết nối DB + AutoMigrate
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return err
	}
	repo := store.New(db)

	healthChecks := []controllers.HealthCheck{{Name: "database", Check: repo.Ping}}

	// Redis giữ phiên đăng nhập; không cấu hình thì giữ trong bộ nhớ
	var sessions sessionstore.Store
	rdb, err := config.NewRedis(cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		sessions = sessionstore.NewRedisStore(rdb)
		healthChecks = append(healthChecks, controllers.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		log.Info("session store: redis", "addr", cfg.RedisAddr)
	} else {
		sessions = sessionstore.NewMemoryStore()
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	files, err := storage.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}

	publisher, err := events.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	m := metrics.New()
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)

	svc := services.New(services.Deps{
		Repo:           repo,
		Sessions:       sessions,
		Tokens:         tokens,
		Storage:        files,
		Events:         publisher,
		Metrics:        m,
		Google:         services.NewGoogleVerifier(cfg.GoogleClientID),
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	})
	h := controllers.New(svc, log, controllers.Options{
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.SessionTTL,
		HealthChecks: healthChecks,
	})

	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMin, 5, 5*time.Minute)
	defer loginLimiter.Close()
	importLimiter := middleware.NewIPRateLimiter(cfg.ImportRatePerMin, 2, 5*time.Minute)
	defer importLimiter.Close()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics(m))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}
	r.MaxMultipartMemory = 8 << 20

	routes.SetupRoutes(r, h, routes.Deps{
		Auth:          svc.Auth,
		Metrics:       m,
		LoginLimiter:  loginLimiter,
		ImportLimiter: importLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
