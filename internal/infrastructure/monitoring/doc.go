/*
Package monitoring provides metrics collection.

# Overview

This package implements Prometheus-based metrics for the contract service:
HTTP requests, intercepted calls, gRPC calls and circuit breakers.

# Features

- HTTP request metrics labelled by route template
- Intercepted call counts by outcome and their duration, fed by the
  loggable interceptor through the Observer interface
- gRPC call metrics
- Circuit breaker state gauges
- Running totals served as JSON

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	router.Use(monitoring.Middleware(metrics))
	interceptor.WithObserver(metrics)

	cfg := users.DefaultConfig(url)
	cfg.OnBreakerChange = metrics.BreakerChanged

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/v1/status/metrics", monitoring.Handler(metrics))
*/
package monitoring
