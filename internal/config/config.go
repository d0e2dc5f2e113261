// Package config assembles run configuration from defaults, an optional
// YAML file and environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nestauk/createch/internal/cache"
	"github.com/nestauk/createch/internal/db"
	"github.com/nestauk/createch/internal/logging"
	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/web"
)

// Config is the complete configuration of the createch tool.
type Config struct {
	Match    match.Config      `yaml:",inline"`
	Logging  logging.Config    `yaml:"logging"`
	Postgres db.Config         `yaml:"postgres"`
	Cache    cache.Config      `yaml:"cache"`
	Redis    cache.RedisConfig `yaml:"redis"`
	Server   web.Config        `yaml:"server"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Match:    match.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
		Postgres: db.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		Redis:    cache.DefaultRedisConfig(),
		Server:   web.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults (an empty path skips
// the file), then applies environment overrides and validates the result.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from CREATECH_* variables and the standard PG*
// connection variables.
func ApplyEnv(cfg *Config) {
	m := &cfg.Match
	m.TestMode = GetEnvBool(EnvPrefix+"TEST_MODE", m.TestMode)
	m.TestModeRows = GetEnvInt(EnvPrefix+"TEST_MODE_ROWS", m.TestModeRows)
	m.CleanNames = GetEnvBool(EnvPrefix+"CLEAN_NAMES", m.CleanNames)
	m.Threshold = GetEnvFloat(EnvPrefix+"THRESHOLD", m.Threshold)
	m.ScanChunkSize = GetEnvInt(EnvPrefix+"SCAN_CHUNK_SIZE", m.ScanChunkSize)
	m.TmpDir = GetEnv(EnvPrefix+"TMP_DIR", m.TmpDir)
	m.KeepTmp = GetEnvBool(EnvPrefix+"KEEP_TMP", m.KeepTmp)

	s := &m.Similarity
	s.ChunkSize = GetEnvInt(EnvPrefix+"CHUNK_SIZE", s.ChunkSize)
	s.Workers = GetEnvInt(EnvPrefix+"WORKERS", s.Workers)
	s.Cosine.NGram = GetEnvInt(EnvPrefix+"COSINE_NGRAM", s.Cosine.NGram)
	s.Cosine.Threshold = GetEnvFloat(EnvPrefix+"COSINE_THRESHOLD", s.Cosine.Threshold)
	s.Fuzzy.NumPerm = GetEnvInt(EnvPrefix+"FUZZY_NUM_PERM", s.Fuzzy.NumPerm)
	s.Fuzzy.Seed = GetEnvUint64(EnvPrefix+"FUZZY_SEED", s.Fuzzy.Seed)
	s.Fuzzy.Refiner = GetEnv(EnvPrefix+"FUZZY_REFINER", s.Fuzzy.Refiner)

	cfg.Logging.Level = GetEnv(EnvPrefix+"LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = GetEnv(EnvPrefix+"LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.File = GetEnv(EnvPrefix+"LOG_FILE", cfg.Logging.File)

	cfg.Postgres.Host = GetEnv("PGHOST", cfg.Postgres.Host)
	cfg.Postgres.Port = GetEnvInt("PGPORT", cfg.Postgres.Port)
	cfg.Postgres.User = GetEnv("PGUSER", cfg.Postgres.User)
	cfg.Postgres.Password = GetEnv("PGPASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Database = GetEnv("PGDATABASE", cfg.Postgres.Database)
	cfg.Postgres.SSLMode = GetEnv("PGSSLMODE", cfg.Postgres.SSLMode)

	cfg.Cache.Backend = GetEnv(EnvPrefix+"CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.Dir = GetEnv(EnvPrefix+"CACHE_DIR", cfg.Cache.Dir)
	cfg.Redis.Addr = GetEnv(EnvPrefix+"REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnv(EnvPrefix+"REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvInt(EnvPrefix+"REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = GetEnvDuration(EnvPrefix+"REDIS_TTL", cfg.Redis.TTL)

	cfg.Server.Host = GetEnv(EnvPrefix+"SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = GetEnvInt(EnvPrefix+"SERVER_PORT", cfg.Server.Port)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and enumerations.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
