// Package config provides 12-factor configuration management for the
// contracts service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - GRPC: gRPC health endpoint
//   - Logging: Log level, per-component levels, perf switch, declarations file
//   - Users: Users service client (URL, timeout, retries, rate limit)
//   - Contracts: Seed file of the contract repository
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: Allowed origins
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, GRPC_PORT, GRPC_ENABLED
//   - LOG_LEVEL, LOG_DEV, LOG_PERF_ENABLED, LOG_LEVELS, LOGGABLE_CONFIG
//   - USERS_SERVICE_URL, USERS_TIMEOUT, USERS_RETRY_MAX, USERS_RATE_LIMIT
//   - CONTRACTS_SEED_FILE
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
