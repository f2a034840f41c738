// Package logging builds the zap logger shared by the CLI and the TUI.
//
// Entries at the configured level go to stderr in console format. Errors are
// additionally appended as JSON to the errors.log file so failures of
// unattended ingests can be inspected later.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel accepts debug, info, warn/warning and error (case-insensitive).
// An empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// New returns a logger writing to stderr at level. When errorLogPath is not
// empty, error entries are also appended to that file.
func New(level, errorLogPath string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl)),
	}

	if errorLogPath != "" {
		core, err := errorCore(errorLogPath)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// NewFileOnly returns a logger that only appends errors to errorLogPath. The
// TUI uses it since anything written to stderr would corrupt the screen.
func NewFileOnly(errorLogPath string) (*zap.Logger, error) {
	core, err := errorCore(errorLogPath)
	if err != nil {
		return nil, err
	}
	return zap.New(core), nil
}

func errorCore(path string) (zapcore.Core, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(f),
		zap.NewAtomicLevelAt(zapcore.ErrorLevel),
	), nil
}
