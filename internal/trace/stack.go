package trace

import (
	"context"
	"sync"
)

// DefaultService names the seed frame of every stack.
const DefaultService = "default"

// Stack is the root of the ambient builder stack of one call chain. It owns
// the seed frame; call frames are pushed onto a context with Push and are
// never shared between sibling calls, so one stack may be reached from
// several goroutines.
type Stack struct {
	mu   sync.Mutex
	seed *Builder
	gen  uint64
}

// NewStack returns an empty stack. The seed frame is created on first use.
func NewStack() *Stack {
	return &Stack{}
}

// Seed returns the bottom frame, creating it if needed.
func (s *Stack) Seed() *Builder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seed == nil {
		s.seed = ForService(DefaultService)
	}
	return s.seed
}

// Reset discards the seed and every frame pushed so far. The next Seed or
// CurrentBuilder call re-seeds the stack.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = nil
	s.gen++
}

func (s *Stack) state() (seeded bool, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed != nil, s.gen
}

// frame is one immutable link of the call chain.
type frame struct {
	parent  *frame
	builder *Builder
	gen     uint64
}

type stackKey struct{}

type frameKey struct{}

// WithStack returns ctx carrying a stack. An existing stack is kept.
func WithStack(ctx context.Context) context.Context {
	if StackFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, stackKey{}, NewStack())
}

// StackFrom returns the stack carried by ctx, or nil.
func StackFrom(ctx context.Context) *Stack {
	s, _ := ctx.Value(stackKey{}).(*Stack)
	return s
}

func frameFrom(ctx context.Context) *frame {
	f, _ := ctx.Value(frameKey{}).(*frame)
	return f
}

// Push returns a child of ctx whose current frame is b. The frame is popped
// by dropping the returned context; ctx itself is left untouched.
func Push(ctx context.Context, b *Builder) context.Context {
	ctx = WithStack(ctx)
	s := StackFrom(ctx)
	s.Seed()
	_, gen := s.state()
	return context.WithValue(ctx, frameKey{}, &frame{parent: frameFrom(ctx), builder: b, gen: gen})
}

// CurrentBuilder returns the innermost builder of the call chain carried by
// ctx, seeding the stack if needed. Without a stack a detached default
// builder is returned; changes made to it are not visible to later calls.
func CurrentBuilder(ctx context.Context) *Builder {
	s := StackFrom(ctx)
	if s == nil {
		return ForService(DefaultService)
	}
	_, gen := s.state()
	// frames pushed before a Reset are stale
	if f := frameFrom(ctx); f != nil && f.gen == gen {
		return f.builder
	}
	return s.Seed()
}

// Depth returns the number of live frames visible from ctx, including the
// seed frame once it exists.
func Depth(ctx context.Context) int {
	s := StackFrom(ctx)
	if s == nil {
		return 0
	}
	seeded, gen := s.state()
	if !seeded {
		return 0
	}
	n := 1
	for f := frameFrom(ctx); f != nil && f.gen == gen; f = f.parent {
		n++
	}
	return n
}

// Reset drops every frame of the stack carried by ctx.
func Reset(ctx context.Context) {
	if s := StackFrom(ctx); s != nil {
		s.Reset()
	}
}
