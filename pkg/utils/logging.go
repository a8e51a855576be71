package utils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Logger returns the process logger. LOG_FILE tees JSON output to a file,
// LOG_LEVEL picks the minimum level (default info).
func Logger() *zap.Logger {
	once.Do(func() {
		logger = newLogger(os.Getenv("LOG_FILE"), ParseLevel(os.Getenv("LOG_LEVEL")))
	})
	return logger
}

func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(logFile string, lvl zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if logFile == "" {
		return zap.New(consoleCore)
	}
	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l := zap.New(consoleCore)
		l.Warn("Falha ao abrir arquivo de log, usando apenas stdout", zap.String("path", logFile), zap.Error(err))
		return l
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore))
}
