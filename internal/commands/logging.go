package commands

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/diogo/wikichat/internal/config"
)

// newLogger builds the logger for the named subcommand. The chat TUI owns the
// terminal, so its logs go to a file; the backend logs requests at info;
// everything else only reports warnings unless verbose.
func newLogger(command string, cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil

	level := zapcore.WarnLevel
	if command == "serve" {
		level = zapcore.InfoLevel
	}
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if command == "chat" {
		path, err := logPath(cfg)
		if err != nil {
			return zap.NewNop(), nil
		}
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}

	return zc.Build()
}

func logPath(cfg config.Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	if _, err := config.EnsureConfigDir(); err != nil {
		return "", err
	}
	return config.GetLogPath()
}
