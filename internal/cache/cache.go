// Package cache stores fetched name lists between runs so the warehouse is
// queried once per source and run id.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/nestauk/createch/internal/records"
)

// ErrCacheMiss is returned by Get when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Store is a key/value store of name lists.
type Store interface {
	Get(ctx context.Context, key string) ([]records.NameRecord, error)
	Put(ctx context.Context, key string, recs []records.NameRecord) error
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key for a source and run id.
func Key(source, runID string) string {
	return source + "/" + runID
}

// Backends accepted in Config.Backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config selects and configures the cache backend.
type Config struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=file redis none"`
	Dir     string `yaml:"dir"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	PoolSize int           `yaml:"poolSize" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl"`
}

// DefaultConfig caches under outputs/.cache on the local filesystem.
func DefaultConfig() Config {
	return Config{Backend: BackendFile, Dir: "outputs/.cache"}
}

// DefaultRedisConfig points at a local redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379", PoolSize: 10}
}

// New builds the configured store. The none backend never hits.
func New(ctx context.Context, cfg Config, rcfg RedisConfig, fs afero.Fs) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(fs, cfg.Dir), nil
	case BackendRedis:
		return NewRedisStore(ctx, rcfg)
	case BackendNone:
		return noopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func validKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}

type noopStore struct{}

func (noopStore) Get(context.Context, string) ([]records.NameRecord, error) {
	return nil, ErrCacheMiss
}

func (noopStore) Put(context.Context, string, []records.NameRecord) error { return nil }

func (noopStore) Delete(context.Context, string) error { return nil }
