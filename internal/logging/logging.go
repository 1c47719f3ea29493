// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures file-backed structured logging.
//
// The TUI owns stdout and stderr, so logs go to rotated files under the
// application data directory instead of the terminal.
package logging

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// =============================================================================
// GLOBAL LOGGER
// =============================================================================

var logger = zap.NewNop()

// L returns the application logger. Before Init it is a no-op logger, so
// packages can log unconditionally.
func L() *zap.Logger {
	return logger
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Init sets up the rotating file logger under dir. Pass debug=true to
// lower the level to Debug.
func Init(dir string, debug bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(encoder,
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "tickerchat.log"),
			MaxSize:  10, // megabytes
			MaxAge:   14, // days
			Compress: true,
		}),
		level,
	)

	logger = zap.New(core)
	return nil
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	_ = logger.Sync()
}

// =============================================================================
// HELPERS
// =============================================================================

// Duration logs elapsed time for an operation:
//
//	defer logging.Duration("gateway.ChatStream")()
func Duration(name string) func() {
	start := time.Now()
	return func() {
		logger.Debug("operation timed",
			zap.String("op", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}
