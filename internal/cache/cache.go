package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL applies when Set is called without a positive TTL
	DefaultTTL = 5 * time.Minute
	// ProfileTTL is used for long-lived, profile-like entries
	ProfileTTL = 7 * 24 * time.Hour
)

// ErrMiss is returned by a Backend when a key is absent or expired
var ErrMiss = errors.New("cache miss")

// Backend stores raw values with a TTL. Implementations return ErrMiss for
// absent keys and any other error for a failing store.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// BackendError describes a failed backend operation. It never reaches callers
// of Cache: it is logged and treated as a miss or a no-op.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Cache is a JSON value cache over a Backend. Caching is an optimization
// only, so every method is infallible from the caller's point of view.
type Cache struct {
	backend    Backend
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// NewCache wraps a backend. A non-positive defaultTTL falls back to DefaultTTL.
func NewCache(backend Backend, defaultTTL time.Duration, logger *logrus.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{
		backend:    backend,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get decodes the value stored under key into dest and reports whether it
// was present.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logFailure(&BackendError{Op: "get", Key: key, Err: err})
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logFailure(&BackendError{Op: "decode", Key: key, Err: err})
		return false
	}
	return true
}

// Set stores value under key. ttl <= 0 uses the cache's default TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logFailure(&BackendError{Op: "encode", Key: key, Err: err})
		return
	}
	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		c.logFailure(&BackendError{Op: "set", Key: key, Err: err})
	}
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		c.logFailure(&BackendError{Op: "delete", Key: key, Err: err})
	}
}

// Clear removes every entry owned by this cache
func (c *Cache) Clear(ctx context.Context) {
	if err := c.backend.Clear(ctx); err != nil {
		c.logFailure(&BackendError{Op: "clear", Err: err})
	}
}

// Backend returns the name of the active backend
func (c *Cache) Backend() string {
	return c.backend.Name()
}

// Close releases the backend's resources
func (c *Cache) Close() error {
	return c.backend.Close()
}

func (c *Cache) logFailure(err *BackendError) {
	c.logger.WithFields(logrus.Fields{
		"backend": c.backend.Name(),
		"op":      err.Op,
		"key":     err.Key,
	}).WithError(err.Err).Debug("Cache operation failed, continuing without cache")
}
