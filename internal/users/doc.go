// Package users is the client of the users service, used to enrich
// contracts with their owner's details and to look up roles.
//
// Features:
//   - Retries with backoff (go-retryablehttp) under a resty client
//   - Circuit breaker that ignores 4xx answers
//   - Optional client-side rate limit
//   - Authorization header forwarding through the request context
//   - Every call instrumented by the loggable interceptor
//
// Example Usage:
//
//	client := users.NewClient(users.DefaultConfig(url), interceptor, logger)
//	ctx = users.WithAuthorization(ctx, c.GetHeader("Authorization"))
//	role, err := client.Role(ctx, 42)
package users
