// Package observability provides logging utilities.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cory-johannsen/dicetable/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Output goes to stderr and, when cfg.File is set, to a size-rotated file.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var encCfg zapcore.EncoderConfig
	var newEncoder func(zapcore.EncoderConfig) zapcore.Encoder
	switch cfg.Format {
	case "json":
		encCfg = zap.NewProductionEncoderConfig()
		newEncoder = zapcore.NewJSONEncoder
	case "console":
		encCfg = zap.NewDevelopmentEncoderConfig()
		newEncoder = zapcore.NewConsoleEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	atom := zap.NewAtomicLevelAt(level)
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(encCfg), zapcore.Lock(os.Stderr), atom),
	}
	if cfg.File != "" {
		// Files always get JSON so they stay machine-readable.
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEnc),
			zapcore.AddSync(newRotatingFile(cfg)),
			atom,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func newRotatingFile(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
