// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/taibuivan/vidly/internal/platform/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(input), input)
	}
}

/*
TestNew_FileSink verifies that a configured file receives log entries.
*/
func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidly.log")

	log, err := logger.New(logger.Options{Level: "debug", File: path})
	require.NoError(t, err)

	log.Info("file_sink_test")
	_ = log.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file_sink_test")
}
