// Package main runs a simulated page: a tree of frames, each hosting integrations of the ID5 SDK,
// that elect one leader and share a single identity fetch. It loads configuration (env + YAML),
// wires the HTTP transport, optional redis storage and prometheus metrics, registers every instance
// and logs the uid each one receives.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"id5multiplexing/adapters/httptransport"
	"id5multiplexing/adapters/myredis"
	"id5multiplexing/adapters/prommetrics"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	cfg, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "configuration loaded", "endpoint", cfg.Endpoint, "redis_addr", cfg.RedisAddr,
		"metrics_port", cfg.MetricsPort, "election_delay", cfg.ElectionDelay)

	meter := prommetrics.New("id5")

	var redisClient redis.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient, err = myredis.NewRedisUniversalClient(cfg.RedisAddr)
		if err != nil {
			level.Error(logger).Log("msg", "failed to create redis client", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			level.Error(logger).Log("msg", "failed to connect to redis", "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "connected to redis")
	}

	var metrics *echo.Echo
	if cfg.MetricsPort > 0 {
		metrics = echo.New()
		metrics.HideBanner = true
		metrics.HidePort = true
		metrics.GET("/metrics", echo.WrapHandler(meter.Handler()))
		go func() {
			addr := fmt.Sprintf(":%d", cfg.MetricsPort)
			level.Info(logger).Log("msg", "serving metrics", "addr", addr)
			if err := metrics.Start(addr); err != nil && err != http.ErrServerClosed {
				level.Error(logger).Log("msg", "metrics server error", "err", err)
			}
		}()
	}

	p := buildPage(cfg, pageDeps{
		transport: httptransport.New(httptransport.NewClient(10*time.Second, false)),
		meter:     meter,
		redis:     redisClient,
		logger:    logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WaitTimeout)
	defer cancel()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			level.Info(logger).Log("msg", "interrupted")
			cancel()
		case <-ctx.Done():
		}
	}()

	results, runErr := p.Run(ctx, cfg)
	for _, r := range results {
		level.Info(logger).Log("msg", "result", "instanceId", r.InstanceID, "window", r.Window, "source", r.Source,
			"ready", r.Ready, "uid", r.UserID.ID, "fromCache", r.UserID.IsFromCache)
	}
	p.Close()

	if metrics != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "error during metrics server shutdown", "err", err)
		}
		shutdownCancel()
	}
	if runErr != nil {
		level.Error(logger).Log("msg", "page did not settle", "err", runErr)
		os.Exit(1)
	}
}
