package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/safetour/routeguard/internal/alert"
	"github.com/safetour/routeguard/internal/api"
	"github.com/safetour/routeguard/internal/config"
	"github.com/safetour/routeguard/internal/database"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/middleware"
	"github.com/safetour/routeguard/internal/realtime"
	"github.com/safetour/routeguard/internal/repository"
	"github.com/safetour/routeguard/internal/service"
	"github.com/safetour/routeguard/internal/spatial"
	"github.com/safetour/routeguard/internal/tracking"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	// 加载配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		l.Error("config_invalid", "err", err)
		os.Exit(1)
	}

	zones, err := config.LoadZones(cfg.ZonesFile)
	if err != nil {
		l.Error("zones_load_error", "file", cfg.ZonesFile, "err", err)
		os.Exit(1)
	}
	l.Info("zones_loaded", "count", len(zones))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 核心引擎
	sink := alert.NewSink(cfg.AlertLogMax)
	engine := tracking.NewEngine(cfg.Engine(), spatial.NewZoneIndex(zones), sink)

	sweeper := tracking.NewSweeper(engine, sink, cfg.SweepInterval)
	go sweeper.Run(ctx)

	// 实时推送
	hub := realtime.NewHub(cfg.RealtimeBuffer)
	sink.Subscribe(hub)

	if rc := realtime.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		relay := realtime.NewRedisRelay(rc, cfg.RedisChannel, cfg.RealtimeBuffer)
		sink.Subscribe(relay)
		go relay.Run(ctx)
	}

	// 告警归档
	var archive *service.AlertArchiver
	if cfg.DBPath == "" {
		l.Info("archive_disabled")
	} else {
		db, err := database.Open(database.Config{Path: cfg.DBPath})
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		archive = service.NewAlertArchiver(repository.NewAlertRepository(db), 0)
		sink.Subscribe(archive)
		archive.Start()
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer limiter.Stop()
	}

	// 初始化路由
	deps := api.Deps{Engine: engine, Sink: sink, Hub: hub, Limiter: limiter}
	if archive != nil {
		deps.Archive = archive
	}
	router := api.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		l.Info("server_start", "addr", cfg.Port, "auth", cfg.JWTSecret != "", "debug_endpoints", cfg.DebugEndpoints)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("server_shutdown")

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "err", err)
	}
	// in-flight requests are done; flush what they published
	if archive != nil {
		archive.Close()
	}
}
