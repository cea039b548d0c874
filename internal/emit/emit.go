// Package emit is the category-specific entry point for trace records:
// business, performance and debug.
//
// Every function checks the sink level first and does nothing, not even
// building the record, when the level is disabled. Otherwise the record is
// built, its diagnostic keys are published, the line is written and the keys
// are released again.
//
// Records caused by an unexpected error get the error message and its stack
// frames appended to the line, separated by '#'. Expected errors are logged
// without them.
//
// The package-level functions use the emitter carried by the context, so
// records written inside an intercepted call are classified the same way as
// the interceptor's own records.
package emit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/loggable/internal/diag"
	"github.com/GriffinCanCode/loggable/internal/fault"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/trace"
)

// Emitter writes trace records to sinks.
type Emitter struct {
	classify fault.Classifier
}

// New creates an emitter. A nil classifier means fault.Classify.
func New(classify fault.Classifier) *Emitter {
	if classify == nil {
		classify = fault.Classify
	}
	return &Emitter{classify: classify}
}

// Default is used by the package-level functions when the context carries
// no emitter.
var Default = New(nil)

type emitterKey struct{}

// WithEmitter returns ctx carrying e.
func WithEmitter(ctx context.Context, e *Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// FromContext returns the emitter carried by ctx, or Default.
func FromContext(ctx context.Context) *Emitter {
	if e, ok := ctx.Value(emitterKey{}).(*Emitter); ok && e != nil {
		return e
	}
	return Default
}

// Business logs a business record at info level.
func (e *Emitter) Business(ctx context.Context, sink logging.Sink, b *trace.Builder) error {
	return e.emit(ctx, sink, zapcore.InfoLevel, diag.Business, b, nil)
}

// Performance logs a performance record, at debug level when debug is set
// and at info level otherwise.
func (e *Emitter) Performance(ctx context.Context, sink logging.Sink, d time.Duration, debug bool, b *trace.Builder) error {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	return e.emit(ctx, sink, level, diag.Perf, b, &d)
}

// Debug logs a technical record at debug level.
func (e *Emitter) Debug(ctx context.Context, sink logging.Sink, b *trace.Builder) error {
	return e.emit(ctx, sink, zapcore.DebugLevel, diag.Tech, b, nil)
}

func (e *Emitter) emit(ctx context.Context, sink logging.Sink, level zapcore.Level, category diag.Category, b *trace.Builder, d *time.Duration) error {
	if !sink.Enabled(level) {
		return nil
	}

	rec, err := b.Build()
	if err != nil {
		return err
	}

	ctx, store := diag.Child(ctx)
	diag.Publish(store, rec, category, d)
	defer diag.Release(store)

	line, args := e.render(rec)
	sink.Write(ctx, level, line, args)
	return nil
}

// render returns the line template and its arguments.
func (e *Emitter) render(rec *trace.Record) (string, []any) {
	line := rec.Message()
	args := rec.Args()

	cause := rec.Cause()
	if cause == nil || e.classify(cause) == fault.Expected {
		return line, args
	}

	suffix := FormatStack(cause)
	if len(args) > 0 {
		suffix = strings.ReplaceAll(suffix, "%", "%%")
	}
	return line + diag.Separator + suffix, args
}

// FormatStack renders err as <message>#<frame1>#<frame2>...
func FormatStack(err error) string {
	parts := append([]string{err.Error()}, fault.Frames(err, 1)...)
	return strings.Join(parts, diag.Separator)
}

// current returns a record builder derived from the innermost frame of ctx.
// The frame itself is left untouched.
func current(ctx context.Context) *trace.Builder {
	return trace.CurrentBuilder(ctx).Fork()
}

// Business logs msg as a business record of the current frame of ctx.
func Business(ctx context.Context, sink logging.Sink, msg string, args ...any) error {
	return FromContext(ctx).Business(ctx, sink, current(ctx).Message(msg, args...))
}

// BusinessContext is Business with extra context items for this record.
func BusinessContext(ctx context.Context, sink logging.Sink, items map[string]string, msg string, args ...any) error {
	return FromContext(ctx).Business(ctx, sink, current(ctx).Message(msg, args...).Context(items))
}

// BusinessWith logs the builder's pending record as a business record.
func BusinessWith(ctx context.Context, sink logging.Sink, b *trace.Builder) error {
	return FromContext(ctx).Business(ctx, sink, b)
}

// PerformanceInfo logs msg as an info performance record.
func PerformanceInfo(ctx context.Context, sink logging.Sink, d time.Duration, msg string, args ...any) error {
	return FromContext(ctx).Performance(ctx, sink, d, false, current(ctx).Message(msg, args...))
}

// PerformanceDebug logs msg as a debug performance record.
func PerformanceDebug(ctx context.Context, sink logging.Sink, d time.Duration, msg string, args ...any) error {
	return FromContext(ctx).Performance(ctx, sink, d, true, current(ctx).Message(msg, args...))
}

// Debug logs msg as a technical debug record.
func Debug(ctx context.Context, sink logging.Sink, msg string, args ...any) error {
	return FromContext(ctx).Debug(ctx, sink, current(ctx).Message(msg, args...))
}

// DebugWith logs the builder's pending record as a technical debug record.
func DebugWith(ctx context.Context, sink logging.Sink, b *trace.Builder) error {
	return FromContext(ctx).Debug(ctx, sink, b)
}
