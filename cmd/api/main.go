package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tienda-api/internal/app"
	"tienda-api/internal/core/config"
	"tienda-api/internal/core/logger"
	"tienda-api/internal/core/server"
	"tienda-api/internal/core/storage"
	"tienda-api/internal/transport/http/handler"
	mdw "tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.File))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if err := run(cfg, log); err != nil {
		log.Error("tienda api exited with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	log.Info("tienda api stopped gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}

	images, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.PublicPrefix, int64(cfg.Upload.MaxSizeMB)<<20)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, log, images)
	if err != nil {
		return err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := a.Migrate(ctx); err != nil {
			_ = a.Close()
			return fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}
	if sqlDB, err := a.Store.SQLDB(); err == nil {
		prometheus.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.DB.Driver))
	}

	guard := mdw.AuthJWT(a.JWT)
	limiter := mdw.NewLimiter(cfg.App.HTTP.MaxInflight)
	r := router.NewAPIEngine(router.Deps{
		Log:     log,
		Dev:     cfg.Dev(),
		DB:      a.Store,
		Limiter: limiter,
		Modules: router.NewRegistry(
			handler.NewAuth(a.Auth),
			handler.NewUsers(a.Users),
			handler.NewProducts(a.Products, guard),
			handler.NewStats(a.Stats, guard),
		),
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		MaxBodyBytes:   int64(cfg.App.HTTP.MaxBodyMB) << 20,
		CORSOrigins:    cfg.App.HTTP.CORSOrigins,
		UploadDir:      cfg.Upload.Dir,
		UploadPrefix:   cfg.Upload.PublicPrefix,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log.Named("http"), zapcore.WarnLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("tienda api starting",
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	// 关停顺序：停止监听 → 等在途请求 → 关连接池
	return server.Run(ctx, srv, log, time.Duration(cfg.App.HTTP.ShutdownTimeoutSec)*time.Second,
		limiter.Drain,
		func(context.Context) error { return a.Close() },
	)
}
