package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	// debug, info, warn or error
	Level string `json:"level"`
	// when set, logs are also written to <dir>/understat.log and rotated
	Dir        string `json:"dir"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// InitSlog installs the default slog logger, `debug` forces the debug level
// regardless of the configured one.
func InitSlog(cfg LogConfig, debug bool) error {
	level := parseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		slog.SetDefault(newLogger(os.Stderr, level, false))
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "understat.log"),
		MaxSize:    orDefault(cfg.MaxSizeMB, 20),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 30),
	}
	slog.SetDefault(newLogger(io.MultiWriter(os.Stderr, logFile), level, true))
	return nil
}

func newLogger(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	}))
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
