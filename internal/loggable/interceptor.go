package loggable

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/loggable/internal/diag"
	"github.com/GriffinCanCode/loggable/internal/emit"
	"github.com/GriffinCanCode/loggable/internal/fault"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/trace"
)

// Outcome labels a finished call for observers.
type Outcome string

const (
	OutcomeReturned   Outcome = "returned"
	OutcomeExpected   Outcome = "expected_error"
	OutcomeUnexpected Outcome = "unexpected_error"
)

// Observer receives the outcome and duration of every intercepted call.
type Observer interface {
	ObserveCall(component, method string, outcome Outcome, d time.Duration)
}

// Interceptor runs instrumented calls.
type Interceptor struct {
	sinks    logging.SinkFactory
	source   Source
	classify fault.Classifier
	emitter  *emit.Emitter
	observer Observer
	fallback *zap.Logger
	perf     bool
	now      func() time.Time

	signatures sync.Map // sigKey -> string
}

type sigKey struct {
	method *Method
	style  SignatureStyle
}

// invocation is the state of one intercepted call.
type invocation struct {
	method    *Method
	attrs     Attributes
	sink      logging.Sink
	signature string
	builder   *trace.Builder
	store     diag.Store
	start     time.Time
}

// New creates an interceptor writing to sinks. Declarations come from the
// code (Static) until WithSource is used.
func New(sinks logging.SinkFactory) *Interceptor {
	return &Interceptor{
		sinks:    sinks,
		source:   Static{},
		classify: fault.Classify,
		emitter:  emit.New(fault.Classify),
		fallback: zap.NewNop(),
		perf:     true,
		now:      time.Now,
	}
}

// WithSource sets where declarations are looked up.
func (i *Interceptor) WithSource(src Source) *Interceptor {
	i.source = src
	return i
}

// WithClassifier sets the error classifier.
func (i *Interceptor) WithClassifier(c fault.Classifier) *Interceptor {
	i.classify = c
	i.emitter = emit.New(c)
	return i
}

// WithObserver sets the call observer.
func (i *Interceptor) WithObserver(o Observer) *Interceptor {
	i.observer = o
	return i
}

// WithFallback sets the logger receiving emission failures.
func (i *Interceptor) WithFallback(l *zap.Logger) *Interceptor {
	i.fallback = l
	return i
}

// WithPerformance switches performance records on or off for every call,
// regardless of declarations.
func (i *Interceptor) WithPerformance(enabled bool) *Interceptor {
	i.perf = enabled
	return i
}

// WithClock replaces time.Now.
func (i *Interceptor) WithClock(now func() time.Time) *Interceptor {
	i.now = now
	return i
}

// Invoke runs call as an intercepted call of m. It returns exactly what
// call returns and re-panics with the original value if call panics.
func (i *Interceptor) Invoke(ctx context.Context, m *Method, args []any, call func(context.Context) (any, error)) (result any, err error) {
	ctx, inv := i.enter(ctx, m, args)
	defer i.exit(inv)

	defer func() {
		if r := recover(); r != nil {
			i.threw(ctx, inv, fault.Recovered(r))
			panic(r)
		}
	}()

	result, err = call(ctx)
	if err != nil {
		i.threw(ctx, inv, err)
	} else {
		i.returned(ctx, inv, result)
	}
	return result, err
}

func (i *Interceptor) enter(ctx context.Context, m *Method, args []any) (context.Context, *invocation) {
	methodDecl, componentDecl := i.source.Lookup(m)
	attrs := Resolve(methodDecl, componentDecl)

	ctx = trace.WithStack(ctx)
	b := trace.CurrentBuilder(ctx).Fork().Service(attrs.Service)
	ctx = trace.Push(ctx, b)
	ctx, store := diag.Child(ctx)
	ctx = emit.WithEmitter(ctx, i.emitter)

	inv := &invocation{
		method:    m,
		attrs:     attrs,
		sink:      i.sinks.For(m.component.name),
		signature: i.signature(m, attrs.Signature),
		builder:   b,
		store:     store,
	}

	if attrs.DebugEnabled && inv.sink.Enabled(zapcore.DebugLevel) {
		i.safely(inv, "entry", func() error {
			return i.emitter.Debug(ctx, inv.sink,
				b.Message("%s called with args (%s)", inv.signature, renderArgs(args, attrs.ShowArgValues)))
		})
	}

	inv.start = i.now()
	return ctx, inv
}

func (i *Interceptor) returned(ctx context.Context, inv *invocation, result any) {
	elapsed := i.elapsed(inv)
	i.observe(inv, OutcomeReturned, elapsed)

	a := inv.attrs
	switch {
	case i.perf && a.PerformanceEnabled && inv.sink.Enabled(zapcore.InfoLevel):
		i.safely(inv, "return", func() error {
			if a.DebugEnabled {
				if !inv.sink.Enabled(zapcore.DebugLevel) {
					return nil
				}
				return i.emitter.Performance(ctx, inv.sink, elapsed, true,
					inv.builder.Message("%s returned value %s", inv.signature, renderResult(result, a.ShowArgValues)))
			}
			return i.emitter.Performance(ctx, inv.sink, elapsed, false,
				inv.builder.Message("%s returned", inv.signature))
		})
	case a.DebugEnabled && inv.sink.Enabled(zapcore.DebugLevel):
		i.safely(inv, "return", func() error {
			return i.emitter.Debug(ctx, inv.sink,
				inv.builder.Message("%s returned value %s", inv.signature, renderResult(result, a.ShowArgValues)))
		})
	}
}

func (i *Interceptor) threw(ctx context.Context, inv *invocation, err error) {
	elapsed := i.elapsed(inv)
	outcome := OutcomeUnexpected
	if i.classify(err) == fault.Expected {
		outcome = OutcomeExpected
	}
	i.observe(inv, outcome, elapsed)

	a := inv.attrs
	switch {
	case i.perf && a.PerformanceEnabled && inv.sink.Enabled(zapcore.InfoLevel):
		i.safely(inv, "throw", func() error {
			return i.emitter.Performance(ctx, inv.sink, elapsed, a.DebugEnabled,
				inv.builder.Error(err, "%s thrown %s", inv.signature, fault.KindName(err)))
		})
	case a.DebugEnabled:
		i.safely(inv, "throw", func() error {
			return i.emitter.Debug(ctx, inv.sink,
				inv.builder.Error(err, "%s thrown %s", inv.signature, fault.KindName(err)))
		})
	}
}

// exit releases the diagnostic keys of the call. The call frame lives only
// in the context handed to the wrapped call, so the caller's context never
// sees it. It runs on every path out of Invoke.
func (i *Interceptor) exit(inv *invocation) {
	diag.Release(inv.store)
}

func (i *Interceptor) elapsed(inv *invocation) time.Duration {
	d := i.now().Sub(inv.start)
	if d < 0 {
		return 0
	}
	return d
}

func (i *Interceptor) observe(inv *invocation, outcome Outcome, d time.Duration) {
	if i.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			i.fallback.Warn("call observer panicked",
				zap.String("method", inv.signature),
				zap.Any("panic", r),
			)
		}
	}()
	i.observer.ObserveCall(inv.method.component.name, inv.method.name, outcome, d)
}

// safely runs one emission step. Failures are reported to the fallback
// logger and never reach the intercepted call.
func (i *Interceptor) safely(inv *invocation, phase string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			i.fallback.Warn("trace emission panicked",
				zap.String("method", inv.signature),
				zap.String("phase", phase),
				zap.Any("panic", r),
			)
		}
	}()
	if err := fn(); err != nil {
		i.fallback.Warn("trace emission failed",
			zap.String("method", inv.signature),
			zap.String("phase", phase),
			zap.Error(err),
		)
	}
}

// signature renders m once per style and caches the result.
func (i *Interceptor) signature(m *Method, style SignatureStyle) string {
	key := sigKey{method: m, style: style}
	if s, ok := i.signatures.Load(key); ok {
		return s.(string)
	}
	s := m.Signature(style)
	i.signatures.Store(key, s)
	return s
}
