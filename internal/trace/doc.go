// Package trace provides the trace record model used by call instrumentation.
//
// A Record is one immutable structured log entry: the service that produced
// it, a message template with its arguments, a context map and an optional
// cause. Records are only produced by a Builder.
//
// Builders keep their service and context across Build calls so that one
// builder can accumulate request context (ids, user identifiers) and emit
// several records. Build snapshots the context, so records already returned
// never observe later mutations.
//
// The ambient stack carries builders through a call chain inside a
// context.Context. Each intercepted call pushes its own frame onto a child
// context and leaves it behind on exit; CurrentBuilder always returns the
// innermost frame visible from the given context. Frames are immutable
// links, so a request context may be shared by concurrent calls.
//
// Example Usage:
//
//	ctx = trace.WithStack(ctx)
//	trace.CurrentBuilder(ctx).Put("userId", "42")
//	callCtx := trace.Push(ctx, trace.CurrentBuilder(ctx).Fork().Service("contracts"))
//	rec, err := trace.ForTrace("contracts", "found %d contracts", n).Build()
package trace
