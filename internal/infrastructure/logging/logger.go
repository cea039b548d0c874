package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger and hands out per-component sinks.
type Logger struct {
	*zap.Logger

	level      zap.AtomicLevel
	components map[string]zap.AtomicLevel

	mu    sync.RWMutex
	sinks map[string]*ZapSink
}

// Config defines logger configuration.
type Config struct {
	Level           string // "debug", "info", "warn", "error"
	Development     bool
	OutputPaths     []string
	ComponentLevels map[string]string // component name -> level
}

// DefaultConfig returns production-ready logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Development: false,
		OutputPaths: []string{"stdout"},
	}
}

// DevelopmentConfig returns development logger configuration.
func DevelopmentConfig() Config {
	return Config{
		Level:       "debug",
		Development: true,
		OutputPaths: []string{"stdout"},
	}
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	components := make(map[string]zap.AtomicLevel, len(cfg.ComponentLevels))
	for name, raw := range cfg.ComponentLevels {
		l, err := parseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		components[name] = zap.NewAtomicLevelAt(l)
	}

	// The core accepts everything down to debug; sinks filter with their
	// own level so a component can be more verbose than the default.
	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Development:       cfg.Development,
		Encoding:          encodingFormat(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return wrap(logger, zap.NewAtomicLevelAt(level), components), nil
}

// NewDefault creates a logger with default configuration.
func NewDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		// Fallback to no-op logger
		return NewFromZap(zap.NewNop(), zapcore.InfoLevel)
	}
	return logger
}

// NewDevelopment creates a logger with development configuration.
func NewDevelopment() *Logger {
	logger, err := New(DevelopmentConfig())
	if err != nil {
		// Fallback to no-op logger
		return NewFromZap(zap.NewNop(), zapcore.DebugLevel)
	}
	return logger
}

// NewFromZap wraps an existing zap logger. Sinks use level unless a
// component level is set with SetComponentLevel.
func NewFromZap(logger *zap.Logger, level zapcore.Level) *Logger {
	return wrap(logger, zap.NewAtomicLevelAt(level), map[string]zap.AtomicLevel{})
}

func wrap(logger *zap.Logger, level zap.AtomicLevel, components map[string]zap.AtomicLevel) *Logger {
	return &Logger{
		Logger:     logger,
		level:      level,
		components: components,
		sinks:      make(map[string]*ZapSink),
	}
}

// SetLevel changes the default sink level at runtime.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// SetComponentLevel overrides the level of one component's sink.
func (l *Logger) SetComponentLevel(component string, level zapcore.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if al, ok := l.components[component]; ok {
		al.SetLevel(level)
		return
	}
	l.components[component] = zap.NewAtomicLevelAt(level)
	delete(l.sinks, component)
}

// For returns the sink of a component, creating it on first use.
func (l *Logger) For(component string) Sink {
	l.mu.RLock()
	s, ok := l.sinks[component]
	l.mu.RUnlock()
	if ok {
		return s
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.sinks[component]; ok {
		return s
	}

	level, ok := l.components[component]
	if !ok {
		level = l.level
	}
	s = &ZapSink{logger: l.Logger.Named(component), level: level}
	l.sinks[component] = s
	return s
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// encodingFormat returns encoding format based on environment.
func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

// encoderConfig returns encoder configuration based on environment.
func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}
