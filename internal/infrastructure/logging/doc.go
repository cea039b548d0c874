// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Besides the plain *zap.Logger, a Logger hands out one Sink per
// instrumented component. Sinks:
//   - Filter on their own level, so a single component can run at debug
//     while the rest of the service stays at info
//   - Attach the diagnostic map of the call (service, context, category,
//     duration, traceId, ...) as string fields of every line
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8080"))
//
//	sink := logger.For("ContractService")
//	if sink.Enabled(zapcore.DebugLevel) {
//		sink.Write(ctx, zapcore.DebugLevel, "found %d contracts", []any{n})
//	}
package logging
