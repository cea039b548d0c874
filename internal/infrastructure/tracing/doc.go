/*
Package tracing opens a request scope for every inbound HTTP request and
gRPC call.

# Overview

A scope gives the request context its own trace stack and diagnostic map,
so the instrumented calls made while serving the request share neither
frames nor diagnostic keys with other requests. The correlation
identifiers are published in the diagnostic map and end up as fields of
every record logged during the request.

# Identifiers

  - X-Trace-ID: kept as received; generated when absent
  - X-Span-ID: generated per request; the inbound value becomes the parent

Both are returned in the response headers (HTTP) or header metadata (gRPC)
and published under the diagnostic keys traceId and spanId.

# Usage

	tracer := tracing.New("contracts", logger)

	router.Use(tracing.HTTPMiddleware(tracer))

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(tracing.GRPCUnaryInterceptor(tracer)),
		grpc.ChainStreamInterceptor(tracing.GRPCStreamInterceptor(tracer)),
	)
*/
package tracing
