package trace

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackIsNeverEmpty(t *testing.T) {
	ctx := WithStack(context.Background())
	assert.Equal(t, 0, Depth(ctx))

	b := CurrentBuilder(ctx)
	assert.NotNil(t, b)
	assert.Equal(t, DefaultService, b.CurrentService())
	assert.Equal(t, 1, Depth(ctx))
	assert.Same(t, b, CurrentBuilder(ctx))
	assert.Same(t, b, StackFrom(ctx).Seed())
}

func TestStackPushPop(t *testing.T) {
	ctx := WithStack(context.Background())
	seed := CurrentBuilder(ctx)

	outer := ForService("outer")
	outerCtx := Push(ctx, outer)
	assert.Same(t, outer, CurrentBuilder(outerCtx))

	inner := ForService("inner")
	innerCtx := Push(outerCtx, inner)
	assert.Same(t, inner, CurrentBuilder(innerCtx))
	assert.Equal(t, 3, Depth(innerCtx))

	// leaving a call means going back to its caller's context
	assert.Same(t, outer, CurrentBuilder(outerCtx))
	assert.Equal(t, 2, Depth(outerCtx))
	assert.Same(t, seed, CurrentBuilder(ctx))
	assert.Equal(t, 1, Depth(ctx))
}

func TestPushInstallsStack(t *testing.T) {
	b := ForService("svc")
	ctx := Push(context.Background(), b)

	require.NotNil(t, StackFrom(ctx))
	assert.Same(t, b, CurrentBuilder(ctx))
	assert.Equal(t, 2, Depth(ctx))
}

func TestStackResetReseeds(t *testing.T) {
	ctx := WithStack(context.Background())
	seed := CurrentBuilder(ctx)
	seed.Put("a", "1")
	pushed := Push(ctx, ForService("x"))

	Reset(ctx)
	assert.Equal(t, 0, Depth(ctx))
	assert.Equal(t, 0, Depth(pushed))

	// a frame pushed before the reset is not current any more
	fresh := CurrentBuilder(pushed)
	assert.NotSame(t, seed, fresh)
	assert.Equal(t, DefaultService, fresh.CurrentService())
	rec, err := fresh.Message("m").Build()
	assert.NoError(t, err)
	assert.Empty(t, rec.Context())
}

func TestContextStack(t *testing.T) {
	ctx := WithStack(context.Background())
	s := StackFrom(ctx)
	assert.NotNil(t, s)

	// installing twice keeps the original stack
	assert.Same(t, s, StackFrom(WithStack(ctx)))

	CurrentBuilder(ctx).Put("userId", "42")
	rec, err := CurrentBuilder(ctx).Message("m").Build()
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"userId": "42"}, rec.Context())

	Reset(ctx)
	assert.Equal(t, 0, Depth(ctx))
}

func TestCurrentBuilderWithoutStack(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, StackFrom(ctx))
	assert.Equal(t, 0, Depth(ctx))

	b := CurrentBuilder(ctx)
	b.Put("a", "1")
	assert.NotSame(t, b, CurrentBuilder(ctx))

	// no-op without a stack
	Reset(ctx)
}

func TestSiblingFramesDoNotInterfere(t *testing.T) {
	ctx := WithStack(context.Background())

	a := Push(ctx, ForService("svcA"))
	b := Push(ctx, ForService("svcB"))

	assert.Equal(t, "svcA", CurrentBuilder(a).CurrentService())
	assert.Equal(t, "svcB", CurrentBuilder(b).CurrentService())
	assert.Equal(t, 2, Depth(b))
	assert.Equal(t, DefaultService, CurrentBuilder(ctx).CurrentService())
}

func TestConcurrentPushOnSharedContext(t *testing.T) {
	ctx := WithStack(context.Background())
	CurrentBuilder(ctx).Put("requestId", "r1")

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			service := "svc" + strconv.Itoa(g)
			for i := 0; i < 500; i++ {
				b := CurrentBuilder(ctx).Fork().Service(service)
				child := Push(ctx, b)
				CurrentBuilder(child).Put("i", strconv.Itoa(i))

				rec, err := CurrentBuilder(child).Message("m").Build()
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, service, rec.Service())
				assert.Equal(t, "r1", rec.Context()["requestId"])
				assert.Equal(t, strconv.Itoa(i), rec.Context()["i"])
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 1, Depth(ctx))
	rec, err := CurrentBuilder(ctx).Message("m").Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"requestId": "r1"}, rec.Context())
}
