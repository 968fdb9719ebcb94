package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

func InitLogger(verbose bool) {
	var config zap.Config

	if verbose {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	config.DisableStacktrace = !verbose

	l, err := config.Build()
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l)

	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

// GetLogger returns the global sugared logger, initializing a non-verbose one on first use.
func GetLogger() *zap.SugaredLogger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		InitLogger(false)
		mu.Lock()
		l = logger
		mu.Unlock()
	}
	return l
}

// WithFields creates a logger with the given structured fields
func WithFields(fields ...any) *zap.SugaredLogger {
	return GetLogger().With(fields...)
}

// WithTool adds tool execution context.
func WithTool(logger *zap.SugaredLogger, toolName, callID string) *zap.SugaredLogger {
	return logger.With(
		"tool", toolName,
		"call_id", callID,
	)
}

// WithRun adds the run context every planner log line carries.
func WithRun(logger *zap.SugaredLogger, runID, posture string) *zap.SugaredLogger {
	return logger.With(
		"run_id", runID,
		"posture", posture,
	)
}

// LogDuration logs the duration of an operation
// Usage: defer LogDuration(logger, "operation_name", time.Now())
func LogDuration(logger *zap.SugaredLogger, operation string, start time.Time) {
	duration := time.Since(start)
	logger.With(
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	).Debugf("Completed %s in %v", operation, duration)
}
