package logging

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/loggable/internal/diag"
)

// Sink is the log destination of one component.
type Sink interface {
	Enabled(level zapcore.Level) bool
	Write(ctx context.Context, level zapcore.Level, line string, args []any)
}

// SinkFactory returns the sink of a component.
type SinkFactory interface {
	For(component string) Sink
}

// ZapSink renders lines through zap, attaching the diagnostic map carried
// by the write context as string fields.
type ZapSink struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// Enabled reports whether level is enabled for this sink.
func (s *ZapSink) Enabled(level zapcore.Level) bool {
	return s.level.Enabled(level) && s.logger.Core().Enabled(level)
}

// Write formats line with args and writes it at level.
func (s *ZapSink) Write(ctx context.Context, level zapcore.Level, line string, args []any) {
	if !s.level.Enabled(level) {
		return
	}
	msg := line
	if len(args) > 0 {
		msg = fmt.Sprintf(line, args...)
	}
	ce := s.logger.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(diagFields(ctx)...)
}

func diagFields(ctx context.Context) []zap.Field {
	store, ok := diag.FromContext(ctx)
	if !ok {
		return nil
	}
	entries := store.GetAll()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.String(k, entries[k]))
	}
	return fields
}
