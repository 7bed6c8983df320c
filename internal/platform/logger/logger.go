// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package logger builds the process-wide [*zap.Logger].

Production output is JSON on stdout with ISO8601 timestamps. Development output
uses zap's console encoder. When a log file is configured, entries are tee'd to a
daily-rotated file managed by file-rotatelogs.
*/
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// rotationTime is how often a new log file is started.
	rotationTime = 24 * time.Hour
	// retention is how long rotated files are kept on disk.
	retention = 7 * 24 * time.Hour
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Development switches to the human-readable console encoder.
	Development bool
	// File, when set, receives a copy of every entry with daily rotation.
	File string
}

// New constructs a logger for the given options.
func New(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)

	var encoder zapcore.Encoder
	if opts.Development {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if opts.File != "" {
		writer, err := rotatelogs.New(
			opts.File+".%Y%m%d",
			rotatelogs.WithLinkName(opts.File),
			rotatelogs.WithRotationTime(rotationTime),
			rotatelogs.WithMaxAge(retention),
		)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open rotating file %s: %w", opts.File, err)
		}

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(writer), level))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// ParseLevel maps a textual level to a zap level, defaulting to info.
func ParseLevel(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
