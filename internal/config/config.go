package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AppURL         string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	GitHub         *GitHubConfig
	Discovery      *DiscoveryConfig
	Cache          *CacheConfig
	Storage        *StorageConfig
	Summary        *SummaryConfig
}

// StorageConfig holds profile persistence configuration
type StorageConfig struct {
	DBConnectionString string
	DataDir            string
	ProfileCacheTTL    time.Duration
}

// SummaryConfig holds generative summary configuration
type SummaryConfig struct {
	APIKey   string
	Model    string
	Language string
}

func Load() (*Config, error) {
	appURL := getEnv("APP_URL", "http://localhost:3000")

	github := DefaultGitHubConfig()
	github.APIBaseURL = getEnv("GITHUB_API_URL", github.APIBaseURL)
	github.ClientID = getEnv("GITHUB_CLIENT_ID", "")
	github.ClientSecret = getEnv("GITHUB_CLIENT_SECRET", "")
	github.RedirectURL = getEnv("GITHUB_REDIRECT_URL", "")

	var err error
	if github.RequestTimeout, err = getEnvAsDuration("GITHUB_REQUEST_TIMEOUT", github.RequestTimeout); err != nil {
		return nil, err
	}

	discovery := DefaultDiscoveryConfig()
	if discovery.Concurrency, err = getEnvAsInt("DISCOVERY_CONCURRENCY", discovery.Concurrency); err != nil {
		return nil, err
	}
	if discovery.PerPage, err = getEnvAsInt("DISCOVERY_PER_PAGE", discovery.PerPage); err != nil {
		return nil, err
	}
	if discovery.MaxPages, err = getEnvAsInt("DISCOVERY_MAX_PAGES", discovery.MaxPages); err != nil {
		return nil, err
	}
	if discovery.CacheTTL, err = getEnvAsDuration("AUGMENT_CACHE_TTL", discovery.CacheTTL); err != nil {
		return nil, err
	}

	cache := DefaultCacheConfig()
	cache.RedisURL = getEnv("REDIS_URL", "")
	cache.Backend = selectCacheBackend(getEnv("CACHE_BACKEND", ""), cache.RedisURL)
	if cache.DefaultTTL, err = getEnvAsDuration("CACHE_DEFAULT_TTL", cache.DefaultTTL); err != nil {
		return nil, err
	}
	if cache.SweepInterval, err = getEnvAsDuration("CACHE_SWEEP_INTERVAL", cache.SweepInterval); err != nil {
		return nil, err
	}

	storage := &StorageConfig{
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		DataDir:            getEnv("DATA_DIR", "./data"),
		ProfileCacheTTL:    7 * 24 * time.Hour,
	}
	if storage.ProfileCacheTTL, err = getEnvAsDuration("PROFILE_CACHE_TTL", storage.ProfileCacheTTL); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppURL:         appURL,
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", ",", []string{appURL}),
		GitHub:         github,
		Discovery:      discovery,
		Cache:          cache,
		Storage:        storage,
		Summary: &SummaryConfig{
			APIKey:   getEnv("GEMINI_API_KEY", ""),
			Model:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Language: getEnv("SUMMARY_LANGUAGE", "Korean"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside the pipeline
func (c *Config) Validate() error {
	if c.Discovery.Concurrency < 1 {
		return fmt.Errorf("DISCOVERY_CONCURRENCY must be at least 1")
	}
	if c.Discovery.PerPage < 1 || c.Discovery.PerPage > 100 {
		return fmt.Errorf("DISCOVERY_PER_PAGE must be between 1 and 100")
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
	}
	return nil
}

// IsDevelopment reports whether the service runs locally. Cookies are marked
// secure everywhere else.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func selectCacheBackend(explicit, redisURL string) string {
	switch strings.ToLower(explicit) {
	case CacheBackendMemory, CacheBackendRedis:
		return strings.ToLower(explicit)
	}
	if redisURL != "" {
		return CacheBackendRedis
	}
	return CacheBackendMemory
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsSlice(key, separator string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, separator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
