// Package diag provides the diagnostic map: a key/value side channel whose
// entries are attached to every log line rendered during a call.
//
// The request map is shared and safe for concurrent use. Correlation
// middleware puts inbound identifiers such as traceId and spanId into it.
// Each intercepted call and each emission works on a Layer over it, so the
// keys published around a write are only seen by that write:
//   - service: the logical service of the record
//   - context: the record context, serialized as k1=v1#k2=v2
//   - category: TECH, BUSINESS or PERF
//   - duration: elapsed milliseconds, PERF records only
//
// Release removes exactly those four keys and never touches anything else.
//
// Example Usage:
//
//	ctx, store := diag.Child(ctx)
//	diag.Publish(store, rec, diag.Perf, &elapsed)
//	defer diag.Release(store)
package diag
