package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/clipflow/internal/config"
	"github.com/MrSnakeDoc/clipflow/internal/kv"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/clipflow/internal/store/redis"
	"github.com/MrSnakeDoc/clipflow/internal/store/sqlite"
)

// Store is a kv store owned by the process that opened it.
type Store interface {
	kv.Store
	kv.Pinger
	io.Closer
}

// OpenStore opens the backend selected by cfg.StoreBackend. Redis is retried
// with backoff until it answers, as configured by the CLIPFLOW_REDIS_* settings.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rc := cfg.Redis
		log.Infof("Connecting to Redis at %s", rc.Addr)
		client, err := redisstore.Connect(ctx, redisstore.ConnectOptions{
			Addr:           rc.Addr,
			User:           rc.User,
			Password:       rc.Password,
			DB:             rc.DB,
			DialTimeout:    rc.DialTimeout,
			ReadTimeout:    rc.ReadTimeout,
			WriteTimeout:   rc.WriteTimeout,
			PoolSize:       rc.PoolSize,
			ConnectTimeout: rc.ConnectTimeout,
			RetryInterval:  rc.RetryInterval,
			MaxWait:        rc.MaxWait,
			PingTimeout:    rc.PingTimeout,
			WarnThreshold:  rc.WarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return redisstore.NewStore(client), nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("SQLite store opened", logger.String("path", cfg.SQLitePath))
		return s, nil

	case config.BackendMemory:
		log.Warn("using in-memory store, state is lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
