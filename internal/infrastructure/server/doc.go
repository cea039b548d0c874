// Package server assembles the contracts service.
//
// NewServer builds the logger from the configuration and hands it, with a
// Prometheus registry, to New, which wires:
//
//	interceptor  loggable.Interceptor with the metrics observer, the global
//	             perf switch and optional file declarations
//	contracts    memory repository, seeder, ContractService
//	users        users service client behind a circuit breaker
//	http         gin router: tracing, metrics, CORS, rate limiting,
//	             /api/v1/contracts, /health, /metrics
//	grpc         standard health service with tracing and metrics
//	             interceptors
//
// The users-service health status follows the users client breaker.
package server
