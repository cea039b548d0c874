package trace

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrConfiguration is returned by Build when a required field is missing.
var ErrConfiguration = errors.New("trace record misconfigured")

// Record is an immutable trace entry.
type Record struct {
	service string
	message string
	args    []any
	context map[string]string
	cause   error
}

// Service returns the logical service that produced the record.
func (r *Record) Service() string {
	return r.service
}

// Message returns the message template.
func (r *Record) Message() string {
	return r.message
}

// Args returns a copy of the message arguments.
func (r *Record) Args() []any {
	return slices.Clone(r.args)
}

// Context returns a copy of the record context.
func (r *Record) Context() map[string]string {
	return maps.Clone(r.context)
}

// ContextValue returns a single context item.
func (r *Record) ContextValue(key string) (string, bool) {
	v, ok := r.context[key]
	return v, ok
}

// Cause returns the error the record was produced for, if any.
func (r *Record) Cause() error {
	return r.cause
}

// Text renders the message template with its arguments.
func (r *Record) Text() string {
	if len(r.args) == 0 {
		return r.message
	}
	return fmt.Sprintf(r.message, r.args...)
}

// Builder accumulates the fields of a Record. Service and context survive
// Build; message, arguments and cause are cleared by it. A Builder is safe
// for concurrent use.
type Builder struct {
	mu      sync.Mutex
	service string
	message string
	args    []any
	context map[string]string
	cause   error
}

// ForService returns a builder for the given service.
func ForService(service string) *Builder {
	return &Builder{
		service: service,
		context: make(map[string]string),
	}
}

// ForTrace returns a builder for a plain trace message.
func ForTrace(service, message string, args ...any) *Builder {
	return ForService(service).Message(message, args...)
}

// ForError returns a builder for a record caused by err.
func ForError(service string, err error, message string, args ...any) *Builder {
	return ForService(service).Error(err, message, args...)
}

// Service sets the service name. Blank names are ignored.
func (b *Builder) Service(service string) *Builder {
	if strings.TrimSpace(service) != "" {
		b.mu.Lock()
		b.service = service
		b.mu.Unlock()
	}
	return b
}

// Message sets the message template and its arguments.
func (b *Builder) Message(message string, args ...any) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = message
	b.args = args
	return b
}

// Context merges items into the builder context.
func (b *Builder) Context(items map[string]string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	maps.Copy(b.context, items)
	return b
}

// Put adds one context item.
func (b *Builder) Put(key, value string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.context[key] = value
	return b
}

// Error sets the cause along with the message template and its arguments.
func (b *Builder) Error(err error, message string, args ...any) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cause = err
	b.message = message
	b.args = args
	return b
}

// CurrentService returns the service the next record will carry.
func (b *Builder) CurrentService() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.service
}

// Fork returns a new builder sharing this builder's service and a copy of
// its context. Pending message, arguments and cause are not carried over.
func (b *Builder) Fork() *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &Builder{
		service: b.service,
		context: maps.Clone(b.context),
	}
}

// Build validates the builder and returns a new Record. On success the
// transient fields are reset so the builder can be reused.
func (b *Builder) Build() (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.service == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrConfiguration)
	}
	if b.message == "" {
		return nil, fmt.Errorf("%w: log message is required", ErrConfiguration)
	}

	rec := &Record{
		service: b.service,
		message: b.message,
		args:    slices.Clone(b.args),
		context: maps.Clone(b.context),
		cause:   b.cause,
	}
	b.reset()
	return rec, nil
}

// reset clears everything except service and context.
func (b *Builder) reset() {
	b.message = ""
	b.args = nil
	b.cause = nil
}
