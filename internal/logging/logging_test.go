package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesErrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "errors.log")

	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Info("not persisted")
	logger.Error("ingest failed", zap.String("file", "june.csv"), zap.Error(errors.New("boom")))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ingest failed")
	assert.Contains(t, string(data), "june.csv")
	assert.NotContains(t, string(data), "not persisted")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", "")
	assert.Error(t, err)
}

func TestNewFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	logger, err := NewFileOnly(path)
	require.NoError(t, err)

	logger.Warn("dropped")
	logger.Error("recategorize failed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recategorize failed")
	assert.NotContains(t, string(data), "dropped")
}
