// Package log provides structured logging for the celer library.
//
// Logging goes through the Logger interface so that library code never
// depends on a concrete backend; the default provider is backed by
// rs/zerolog writing JSON to stderr. Loggers accept variadic key/value
// pairs and the package defines typed key constants so that field names
// stay consistent across packages:
//
//	logger := log.GetLoggerWithName("solver")
//	logger.Info("outer iteration",
//		log.IterationKey, t,
//		log.GapKey, gap,
//	)
package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Standard structured field keys.
const (
	ComponentKey  = "component"
	ModelNameKey  = "model"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "n_samples"
	FeaturesKey   = "n_features"
	PredsKey      = "n_predictions"
	DurationMsKey = "duration_ms"

	// Solver-specific keys.
	IterationKey  = "iteration"
	EpochKey      = "epoch"
	AlphaKey      = "alpha"
	GapKey        = "gap"
	PrimalKey     = "primal"
	DualKey       = "dual"
	ScreenedKey   = "n_screened"
	WorkingSetKey = "ws_size"
	ToleranceKey  = "tol"
)

// Standard values for the operation and phase fields.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationSolve   = "solve"
	OperationPath    = "path"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)

// Logger is the structured logging interface used throughout the library.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// With returns a child logger with the given fields attached to
	// every subsequent event.
	With(keysAndValues ...interface{}) Logger
}

// LoggerProvider creates Logger instances sharing one backend.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

// ToLogLevel parses a level name ("debug", "info", "warn", "error");
// unknown names fall back to info.
func ToLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// zerologProvider is the default LoggerProvider backed by rs/zerolog.
type zerologProvider struct {
	root zerolog.Logger
}

// NewZerologProvider creates a LoggerProvider writing JSON to stderr at
// the given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	root := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &zerologProvider{root: root}
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{l: p.root}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{l: p.root.With().Str(ComponentKey, name).Logger()}
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	emit(z.l.Debug(), msg, keysAndValues)
}

func (z *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	emit(z.l.Info(), msg, keysAndValues)
}

func (z *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	emit(z.l.Warn(), msg, keysAndValues)
}

func (z *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	emit(z.l.Error(), msg, keysAndValues)
}

func (z *zerologLogger) With(keysAndValues ...interface{}) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ctx = ctx.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return &zerologLogger{l: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, keysAndValues []interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	ev.Msg(msg)
}

func key(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(zerolog.InfoLevel)
)

// SetupLogger reconfigures the global provider with the given level name.
// Typically called once at program start.
func SetupLogger(level string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = NewZerologProvider(ToLogLevel(level))
}

// SetProvider replaces the global provider, e.g. with a test recorder.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetLogger returns an unnamed logger from the global provider.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLoggerWithName(name)
}

// LogError logs err at error level with a message, rendering the full
// error chain. No-op when err is nil.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error(msg, "error", err.Error())
}
