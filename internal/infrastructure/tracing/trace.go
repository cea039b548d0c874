package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/loggable/internal/diag"
	"github.com/GriffinCanCode/loggable/internal/shared/id"
	"github.com/GriffinCanCode/loggable/internal/trace"
)

// Header and metadata names of the correlation identifiers.
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// Diagnostic keys the identifiers are published under.
const (
	KeyTraceID = "traceId"
	KeySpanID  = "spanId"
)

// Scope is one traced request.
type Scope struct {
	TraceID  string
	SpanID   string
	ParentID string
	Name     string
	Start    time.Time
}

// Tracer opens request scopes and logs their completion.
type Tracer struct {
	service string
	logger  *zap.Logger

	newTraceID func() string
	newSpanID  func() string
}

// New creates a tracer. A nil logger disables completion logs.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracer{
		service: service,
		logger:  logger,

		newTraceID: uuid.NewString,
		newSpanID:  id.NewSpanID,
	}
}

// Begin gives ctx a fresh trace stack and diagnostic map and publishes the
// correlation identifiers in it. An inbound traceID is kept as is; an empty
// one is generated as a UUID. Span ids are ULIDs. parentID is the caller's
// span.
func (t *Tracer) Begin(ctx context.Context, name, traceID, parentID string) (context.Context, *Scope) {
	if traceID == "" {
		traceID = t.newTraceID()
	}
	s := &Scope{
		TraceID:  traceID,
		SpanID:   t.newSpanID(),
		ParentID: parentID,
		Name:     name,
		Start:    time.Now(),
	}

	ctx = trace.WithStack(ctx)
	ctx = diag.WithStore(ctx, diag.NewMap())
	store, _ := diag.FromContext(ctx)
	store.Put(KeyTraceID, s.TraceID)
	store.Put(KeySpanID, s.SpanID)

	return ctx, s
}

// Finish logs the completion of s.
func (t *Tracer) Finish(s *Scope, status string, err error) {
	fields := []zap.Field{
		zap.String("trace_id", s.TraceID),
		zap.String("span_id", s.SpanID),
		zap.String("operation", s.Name),
		zap.String("status", status),
		zap.Duration("duration", time.Since(s.Start)),
		zap.String("service", t.service),
	}
	if s.ParentID != "" {
		fields = append(fields, zap.String("parent_id", s.ParentID))
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		t.logger.Warn("request completed with error", fields...)
		return
	}
	t.logger.Debug("request completed", fields...)
}

// TraceID returns the trace identifier published in ctx.
func TraceID(ctx context.Context) string {
	return lookup(ctx, KeyTraceID)
}

// SpanID returns the span identifier published in ctx.
func SpanID(ctx context.Context) string {
	return lookup(ctx, KeySpanID)
}

func lookup(ctx context.Context, key string) string {
	store, ok := diag.FromContext(ctx)
	if !ok {
		return ""
	}
	return store.GetAll()[key]
}
