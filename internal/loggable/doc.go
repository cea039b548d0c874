/*
Package loggable instruments calls with performance, debug and error
records, without logging statements in the instrumented code.

# Overview

A Component describes an instrumented type and a Method one of its calls;
both carry a Declared value. The effective Attributes of a call are
resolved per attribute: method declaration, then component declaration,
then the defaults (perf on, debug off, argument values hidden, normal
signature).

Wrapping happens once, at composition time:

	svc := loggable.NewComponent(&ContractService{}, loggable.Declared{Debug: loggable.On})
	find := loggable.Func1(interceptor, svc.Method("FindContract", loggable.Declared{}), s.findContract)

	contract, err := find(ctx, 7)

# Call lifecycle

	ENTRY -> RUNNING -> RETURNED | THREW -> EXIT

  - ENTRY: resolve attributes, push a fresh trace frame and diagnostic
    layer onto the context handed to the call, log "called with args" when
    debug is on
  - RETURNED: performance record with the elapsed time, or a debug record
  - THREW: same as RETURNED with the error attached; unexpected errors get
    their stack frames appended, panics are logged and re-raised
  - EXIT: release the diagnostic keys, always; the frame goes away with the
    call's context

Frames are never shared between calls, so one request context may be used
by concurrent intercepted calls.

The wrapped function's results and errors are returned untouched. Failures
while logging are reported to the fallback logger and never reach the
caller.

# Declarations from a file

Declarations can be adjusted without recompiling by layering a YAML or TOML
file over the code declarations:

	file, err := loggable.LoadFile("loggable.yaml")
	interceptor.WithSource(loggable.Overlay{Base: loggable.Static{}, File: file})
*/
package loggable
