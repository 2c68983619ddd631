package logger

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar atomic.Pointer[zap.SugaredLogger]

func init() {
	l, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	sugar.Store(l.Sugar())
}

// Init 按配置初始化全局日志，format 为 json 或 console
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if format != "json" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	if old := sugar.Swap(l.Sugar()); old != nil {
		_ = old.Sync()
	}
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = sugar.Load().Sync()
}

// Debugf logs a debug message
func Debugf(format string, args ...any) {
	sugar.Load().Debugf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...any) {
	sugar.Load().Infof(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...any) {
	sugar.Load().Warnf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...any) {
	sugar.Load().Errorf(format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	sugar.Load().Errorw("[PANIC] recovered", "panic", r, "stack", string(debug.Stack()))
}
