// Package fault classifies the errors observed by call instrumentation.
//
// Expected errors are routine business failures (a contract that does not
// exist, an operation a role may not perform). They are logged tersely.
// Unexpected errors are everything else; their log lines carry the error
// message and its stack frames.
//
// Classification never changes what the caller receives.
package fault

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind is the classification of an observed error.
type Kind int

const (
	Unexpected Kind = iota
	Expected
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Expected:
		return "expected"
	case Unexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Classifier decides whether an error is expected.
type Classifier func(err error) Kind

// Classify is the default classifier: functional errors are expected,
// everything else is not.
func Classify(err error) Kind {
	var fe *FunctionalError
	if errors.As(err, &fe) {
		return Expected
	}
	return Unexpected
}

// FunctionalError is a business failure identified by a message code.
type FunctionalError struct {
	Code    string
	Message string
	Args    []any
	cause   error
}

// Functional creates a functional error. The message is a fmt template.
func Functional(code, message string, args ...any) *FunctionalError {
	return &FunctionalError{Code: code, Message: message, Args: args}
}

// Wrap attaches the error that caused the functional failure.
func (e *FunctionalError) Wrap(cause error) *FunctionalError {
	e.cause = cause
	return e
}

func (e *FunctionalError) Error() string {
	if len(e.Args) == 0 {
		return e.Message
	}
	return fmt.Sprintf(e.Message, e.Args...)
}

func (e *FunctionalError) Unwrap() error {
	return e.cause
}

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value  any
	frames []string
}

// Recovered wraps a value obtained from recover. It must be called from the
// deferred function that recovered so the panicking frames are captured.
func Recovered(v any) *PanicError {
	return &PanicError{Value: v, frames: callers(3)}
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// KindName returns a short name for the dynamic type of err, used in
// "thrown <kind>" messages.
func KindName(err error) string {
	if err == nil {
		return "nil"
	}
	if pe, ok := err.(*PanicError); ok {
		if inner, ok := pe.Value.(error); ok {
			return "panic(" + KindName(inner) + ")"
		}
		return "panic"
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// ObservedAt leads the frames of an error that carries no stack of its own.
// The frames after it show where the error was logged, not where it was
// created.
const ObservedAt = "observed at"

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Frames returns the stack frames associated with err. Errors created with
// github.com/pkg/errors and recovered panics carry their own frames; for any
// other error the current stack is used, skipping skip callers of Frames,
// and preceded by ObservedAt.
func Frames(err error, skip int) []string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe.frames
	}
	var st stackTracer
	if errors.As(err, &st) {
		trace := st.StackTrace()
		out := make([]string, 0, len(trace))
		for _, f := range trace {
			out = append(out, fmt.Sprintf("%n(%s:%d)", f, f, f))
		}
		return out
	}
	return append([]string{ObservedAt}, callers(skip+2)...)
}

// callers renders the calling stack, skipping skip frames including callers
// itself.
func callers(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if f.Function != "" && !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, fmt.Sprintf("%s(%s:%d)", f.Function, shortFile(f.File), f.Line))
		}
		if !more {
			break
		}
	}
	return out
}

func shortFile(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
