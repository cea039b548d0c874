package tracing

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// HTTPMiddleware creates Gin middleware that opens a scope per request and
// returns the identifiers in the response headers.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}

		ctx, scope := tracer.Begin(c.Request.Context(), c.Request.Method+" "+name,
			c.GetHeader(HeaderTraceID), c.GetHeader(HeaderSpanID))
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, scope.TraceID)
		c.Header(HeaderSpanID, scope.SpanID)

		c.Next()

		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracer.Finish(scope, strconv.Itoa(c.Writer.Status()), err)
	}
}

// GRPCUnaryInterceptor creates a gRPC unary interceptor that opens a scope
// per call from the incoming metadata.
func GRPCUnaryInterceptor(tracer *Tracer) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		traceID, parentID := fromMetadata(ctx)
		ctx, scope := tracer.Begin(ctx, info.FullMethod, traceID, parentID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(HeaderTraceID, scope.TraceID, HeaderSpanID, scope.SpanID))

		resp, err := handler(ctx, req)

		tracer.Finish(scope, status.Code(err).String(), err)
		return resp, err
	}
}

// GRPCStreamInterceptor creates a gRPC stream interceptor that opens a
// scope per stream.
func GRPCStreamInterceptor(tracer *Tracer) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		traceID, parentID := fromMetadata(ss.Context())
		ctx, scope := tracer.Begin(ss.Context(), info.FullMethod, traceID, parentID)
		_ = ss.SetHeader(metadata.Pairs(HeaderTraceID, scope.TraceID, HeaderSpanID, scope.SpanID))

		err := handler(srv, &tracedServerStream{ServerStream: ss, ctx: ctx})

		tracer.Finish(scope, status.Code(err).String(), err)
		return err
	}
}

// fromMetadata returns the inbound trace and span identifiers.
func fromMetadata(ctx context.Context) (traceID, spanID string) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ""
	}
	if vals := md.Get(HeaderTraceID); len(vals) > 0 {
		traceID = vals[0]
	}
	if vals := md.Get(HeaderSpanID); len(vals) > 0 {
		spanID = vals[0]
	}
	return traceID, spanID
}

// tracedServerStream wraps grpc.ServerStream with the scoped context
type tracedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedServerStream) Context() context.Context {
	return s.ctx
}
