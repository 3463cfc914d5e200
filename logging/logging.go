// Package logging provides the structured loggers used across the planner.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging interface handed to planners and the CLI.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Sublogger(name string) Logger
}

type impl struct {
	*zap.SugaredLogger
}

func (l *impl) Sublogger(name string) Logger {
	return &impl{l.Named(name)}
}

func newConfig(level zapcore.Level) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// NewLogger returns a named logger that writes Info and above to stdout.
func NewLogger(name string) Logger {
	logger, err := newConfig(zap.InfoLevel).Build()
	if err != nil {
		panic(err)
	}
	return &impl{logger.Sugar().Named(name)}
}

// NewDebugLogger returns a named logger that writes Debug and above to stdout.
func NewDebugLogger(name string) Logger {
	logger, err := newConfig(zap.DebugLevel).Build()
	if err != nil {
		panic(err)
	}
	return &impl{logger.Sugar().Named(name)}
}

// NewTestLogger routes Debug and above through the test harness.
func NewTestLogger(tb testing.TB) Logger {
	return &impl{zaptest.NewLogger(tb).Sugar()}
}
