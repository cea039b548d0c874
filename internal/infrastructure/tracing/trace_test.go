package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/GriffinCanCode/loggable/internal/emit"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/shared/id"
	"github.com/GriffinCanCode/loggable/internal/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sequentialIDs(t *Tracer) {
	n := 0
	next := func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
	t.newTraceID = next
	t.newSpanID = next
}

func TestBeginKeepsInboundTraceID(t *testing.T) {
	tracer := New("contracts", nil)
	sequentialIDs(tracer)

	ctx, scope := tracer.Begin(context.Background(), "GET /x", "inbound", "caller")
	assert.Equal(t, "inbound", scope.TraceID)
	assert.Equal(t, "id-1", scope.SpanID)
	assert.Equal(t, "caller", scope.ParentID)

	assert.Equal(t, "inbound", TraceID(ctx))
	assert.Equal(t, "id-1", SpanID(ctx))
	assert.NotNil(t, trace.StackFrom(ctx))
}

func TestBeginGeneratesTraceID(t *testing.T) {
	tracer := New("contracts", nil)

	ctx, scope := tracer.Begin(context.Background(), "GET /x", "", "")
	assert.NotEmpty(t, scope.TraceID)
	assert.NotEqual(t, scope.TraceID, scope.SpanID)
	assert.True(t, id.IsValid(scope.SpanID), scope.SpanID)
	assert.Equal(t, scope.TraceID, TraceID(ctx))
}

func TestLookupWithoutScope(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, SpanID(context.Background()))
}

func TestFinishLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("contracts", zap.New(core))

	_, scope := tracer.Begin(context.Background(), "GET /x", "t", "")
	tracer.Finish(scope, "200", nil)
	tracer.Finish(scope, "500", errors.New("boom"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "request completed", logs.All()[0].Message)
	assert.Equal(t, "t", logs.All()[0].ContextMap()["trace_id"])
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sinks := logging.NewFromZap(zap.New(core), zapcore.InfoLevel)
	tracer := New("contracts", nil)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/api/v1/contracts/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		_ = emit.Business(ctx, sinks.For("ContractController"), "contract %s viewed", c.Param("id"))
		c.String(http.StatusOK, TraceID(ctx))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/7", nil)
	req.Header.Set(HeaderTraceID, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc-123", fields[KeyTraceID])
	assert.Equal(t, w.Header().Get(HeaderSpanID), fields[KeySpanID])
	assert.Equal(t, "BUSINESS", fields["category"])
}

func TestHTTPMiddlewareSeparatesRequests(t *testing.T) {
	tracer := New("contracts", nil)

	var seen []string
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/", func(c *gin.Context) {
		seen = append(seen, TraceID(c.Request.Context()))
		trace.CurrentBuilder(c.Request.Context()).Put("leak", "yes")
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
}

func TestGRPCUnaryInterceptor(t *testing.T) {
	tracer := New("contracts", nil)
	interceptor := GRPCUnaryInterceptor(tracer)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(HeaderTraceID, "grpc-trace", HeaderSpanID, "parent"))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := interceptor(ctx, "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.Equal(t, "grpc-trace", TraceID(ctx))
		assert.NotEmpty(t, SpanID(ctx))
		assert.NotEqual(t, "parent", SpanID(ctx))
		return "resp", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
}

type fakeStream struct {
	grpc.ServerStream
	ctx    context.Context
	header metadata.MD
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func (s *fakeStream) SetHeader(md metadata.MD) error {
	s.header = metadata.Join(s.header, md)
	return nil
}

func TestGRPCStreamInterceptor(t *testing.T) {
	tracer := New("contracts", nil)
	interceptor := GRPCStreamInterceptor(tracer)

	ss := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(HeaderTraceID, "stream-trace"))}
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}

	err := interceptor(nil, ss, info, func(srv interface{}, stream grpc.ServerStream) error {
		assert.Equal(t, "stream-trace", TraceID(stream.Context()))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stream-trace"}, ss.header.Get(HeaderTraceID))
}
