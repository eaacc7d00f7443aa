// Package logger builds the service's slog logger from configuration,
// with optional size-rotated file output.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults applied when a log file is configured without
// explicit limits.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config controls log level, encoding and optional file rotation.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New builds a logger writing to stderr, or to a rotated file when
// cfg.File is set.
func New(cfg Config) *slog.Logger {
	return NewWriter(cfg, nil)
}

// NewWriter is New with an explicit destination; w overrides cfg.File
// when non-nil. Tests pass their own writer here.
func NewWriter(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = destination(cfg)
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func destination(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	if lj.MaxSize <= 0 {
		lj.MaxSize = DefaultMaxSizeMB
	}
	if lj.MaxBackups <= 0 {
		lj.MaxBackups = DefaultMaxBackups
	}
	if lj.MaxAge <= 0 {
		lj.MaxAge = DefaultMaxAgeDays
	}
	return lj
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
