// Package storage assembles the account repository selected by
// configuration, optionally fronted by the Redis snapshot cache.
package storage

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	fileRepo "github.com/iho/gowallet/internal/adapter/repository/file"
	postgresRepo "github.com/iho/gowallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/redis"
	"github.com/iho/gowallet/internal/usecase"
)

// CheckFunc probes one backing service.
type CheckFunc func(ctx context.Context) error

// Storage is an opened account store and the connections behind it.
type Storage struct {
	Repo   usecase.AccountRepository
	Redis  *goredis.Client // nil when REDIS_URL is empty
	Checks map[string]CheckFunc

	closers []func()
}

// Open connects the configured store. Postgres migrations are applied
// before the repository is returned.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	s := &Storage{Checks: make(map[string]CheckFunc)}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.Checks["postgres"] = pool.Ping
		s.Repo = postgresRepo.NewAccountRepository(pool, logger)
		logger.Info().Msg("connected to postgres")

	default:
		repo, err := fileRepo.NewAccountRepository(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		s.Checks["storage"] = repo.Ping
		s.Repo = repo
		logger.Debug().Str("dir", repo.Dir()).Msg("using file store")
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		s.Redis = client

		cache := redisRepo.NewAccountCache(client, cfg.CacheTTL)
		s.Repo = redisRepo.NewCachedAccountRepository(s.Repo, cache, logger)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("account cache enabled")
	}

	return s, nil
}

// Close releases connections in reverse order of opening.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
