package config

import "time"

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// DiscoveryConfig holds repository discovery and augmentation configuration
type DiscoveryConfig struct {
	Concurrency int
	PerPage     int
	MaxPages    int
	CacheTTL    time.Duration
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	Backend       string
	RedisURL      string
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

// DefaultDiscoveryConfig returns the default discovery configuration
func DefaultDiscoveryConfig() *DiscoveryConfig {
	return &DiscoveryConfig{
		Concurrency: 6,
		PerPage:     100,
		MaxPages:    10,
		CacheTTL:    5 * time.Minute,
	}
}

// DefaultCacheConfig returns the default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:       CacheBackendMemory,
		DefaultTTL:    5 * time.Minute,
		SweepInterval: time.Minute,
	}
}
