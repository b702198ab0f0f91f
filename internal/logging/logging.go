// Package logging provides the shared application logger. The TUI owns the
// terminal, so all pipeline logs are written to a file.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop().Sugar()

// Init configures the global logger to write JSON lines to the given file.
func Init(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		zapcore.InfoLevel,
	)
	logger = zap.New(core).Sugar()
	return nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = logger.Sync()
}

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	return logger
}

func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Infow logs a message with structured key/value pairs.
func Infow(msg string, kv ...any) { logger.Infow(msg, kv...) }

// Errorw logs an error with structured key/value pairs.
func Errorw(msg string, kv ...any) { logger.Errorw(msg, kv...) }
