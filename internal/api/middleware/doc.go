// Package middleware provides HTTP middleware for the contract API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - GlobalRateLimit: One token bucket for all clients
//   - BodyLimit: Rejects oversized request bodies with 413
//
// CORS Configuration:
//   - AllowOrigins: Permitted origin domains, "*" for any
//   - AllowHeaders: Request headers, including Authorization and X-Trace-ID
//   - ExposeHeaders: X-Trace-ID and X-Span-ID are readable by browsers
//   - MaxAge: Preflight cache duration
//
// Rate Limiting:
//   - Per-IP tracking, idle clients are dropped
//   - Rejections are JSON bodies with code rate.limit.exceeded
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins...)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
