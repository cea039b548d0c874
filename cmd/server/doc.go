// Package main is the entry point of the contracts service.
//
// The service manages contracts and enriches them with owner details from
// the users service. Every controller, service and client call is
// instrumented: performance records carry the duration and call context,
// debug records the arguments and results, business records the domain
// events, all tagged with the request trace id.
//
// Architecture:
//
//	Client → Contracts (REST, gRPC health) → Users service (REST)
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8080 -users http://users:8081/api/v1/users
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Per-component declarations layered over the code
//	LOGGABLE_CONFIG=loggable.yaml ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
