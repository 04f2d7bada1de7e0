// Package logging provides categorized loggers for tinker subsystems.
// All categories share one zap core; Init wires it once at startup and
// every call before Init falls back to a no-op logger.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem for log attribution.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config, credential checks
	CategorySession  Category = "session"  // Session controller, task lifecycle
	CategoryEngine   Category = "engine"   // Step engine transitions
	CategoryExecutor Category = "executor" // Operation dispatch and results
	CategoryAPI      Category = "api"      // Model invocations
	CategoryHistory  Category = "history"  // Task history store
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Init installs the process-wide base logger. Verbose enables debug level.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	SetBase(logger)
	return nil
}

// SetBase replaces the base logger. Tests use this to install observers.
func SetBase(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = logger
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Get returns the sugared logger for a category, creating it on first use.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	b := base
	if b == nil {
		b = zap.NewNop()
	}
	l := b.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Convenience functions in the category-per-call style.

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Infof(format, args...) }

func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debugf(format, args...) }

func BootWarn(format string, args ...interface{}) { Get(CategoryBoot).Warnf(format, args...) }

func Session(format string, args ...interface{}) { Get(CategorySession).Infof(format, args...) }

func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debugf(format, args...)
}

func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warnf(format, args...)
}

func Engine(format string, args ...interface{}) { Get(CategoryEngine).Infof(format, args...) }

func EngineDebug(format string, args ...interface{}) { Get(CategoryEngine).Debugf(format, args...) }

func EngineWarn(format string, args ...interface{}) { Get(CategoryEngine).Warnf(format, args...) }

func Executor(format string, args ...interface{}) { Get(CategoryExecutor).Infof(format, args...) }

func ExecutorDebug(format string, args ...interface{}) {
	Get(CategoryExecutor).Debugf(format, args...)
}

func ExecutorWarn(format string, args ...interface{}) {
	Get(CategoryExecutor).Warnf(format, args...)
}

func API(format string, args ...interface{}) { Get(CategoryAPI).Infof(format, args...) }

func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debugf(format, args...) }

func APIWarn(format string, args ...interface{}) { Get(CategoryAPI).Warnf(format, args...) }

func History(format string, args ...interface{}) { Get(CategoryHistory).Infof(format, args...) }

func HistoryDebug(format string, args ...interface{}) {
	Get(CategoryHistory).Debugf(format, args...)
}
