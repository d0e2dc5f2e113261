// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, format and an optional rotating log file.
type Config struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=console json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// Setup installs the global logger. Extra writers receive every line in
// addition to stderr and the log file.
func Setup(cfg Config, writers ...io.Writer) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
		level = l
	}

	var stderr io.Writer = os.Stderr
	if cfg.Format != "json" {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}
	logWriters := []io.Writer{stderr}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logWriters = append(logWriters, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
	logWriters = append(logWriters, writers...)

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(io.MultiWriter(logWriters...)).
		With().Timestamp().Logger()
	return nil
}

// Timing logs the start of an operation and returns a func that logs its
// completion and reports the elapsed time.
func Timing(clock clockwork.Clock, operation string) func() time.Duration {
	start := clock.Now()
	log.Debug().Str("stage", operation).Msg("starting")

	return func() time.Duration {
		d := clock.Since(start)
		log.Info().Str("stage", operation).Dur("took", d).Msg("completed")
		return d
	}
}
