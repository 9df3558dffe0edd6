package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/cubo-visits/internal/api"
	"github.com/ignite/cubo-visits/internal/config"
	"github.com/ignite/cubo-visits/internal/export"
	"github.com/ignite/cubo-visits/internal/pkg/logger"
	"github.com/ignite/cubo-visits/internal/pkg/telemetry"
	"github.com/ignite/cubo-visits/internal/session"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

// newStore picks the session backend. Redis is pinged up front so a bad
// address fails at startup instead of on the first upload. The client is nil
// for the memory backend.
func newStore(ctx context.Context, cfg config.SessionConfig) (session.Store, *redis.Client, func(), error) {
	if cfg.Backend != "redis" {
		return session.NewMemoryStore(cfg.TTL()), nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	return session.NewRedisStore(client, cfg.TTL()), client, func() { client.Close() }, nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		fatal("pre-flight check failed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, redisClient, closeStore, err := newStore(ctx, cfg.Session)
	if err != nil {
		fatal("failed to initialize session store", err)
	}
	defer closeStore()
	logger.Info("session store ready", "backend", cfg.Session.Backend, "ttl", cfg.Session.TTL().String())

	deps := api.Deps{Store: store, Metrics: telemetry.New(), Redis: redisClient}
	if cfg.Export.ArchiveEnabled() {
		archiver, err := export.NewS3Archiver(ctx, cfg.Export)
		if err != nil {
			fatal("failed to initialize export archive", err)
		}
		deps.Archiver = archiver
		logger.Info("export archive enabled", "bucket", cfg.Export.S3Bucket, "region", cfg.Export.S3Region)
	}

	server := api.NewServer(cfg, deps)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
