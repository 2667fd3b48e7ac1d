package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/config"
)

// Options selects and configures the backend. The choice is made once by the
// caller; New never inspects the environment.
type Options struct {
	Backend       string
	RedisURL      string
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

// OptionsFromConfig maps the cache section of the service configuration
func OptionsFromConfig(cfg *config.CacheConfig) Options {
	return Options{
		Backend:       cfg.Backend,
		RedisURL:      cfg.RedisURL,
		DefaultTTL:    cfg.DefaultTTL,
		SweepInterval: cfg.SweepInterval,
	}
}

// New builds a Cache for the selected backend. An unreachable Redis is
// tolerated: the cache falls back to process memory and logs a warning.
func New(ctx context.Context, opts Options, logger *logrus.Logger) *Cache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if opts.Backend == config.CacheBackendRedis && opts.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		backend, err := NewRedisBackend(pingCtx, opts.RedisURL)
		if err == nil {
			logger.Info("Redis cache enabled")
			return NewCache(backend, opts.DefaultTTL, logger)
		}
		logger.WithError(err).Warn("Redis cache unavailable, using in-memory cache")
	}

	return NewCache(NewMemoryBackend(opts.SweepInterval), opts.DefaultTTL, logger)
}
