package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/loggable"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveCall("ContractService", "FindContract", loggable.OutcomeReturned, 10*time.Millisecond)
	m.ObserveCall("ContractService", "FindContract", loggable.OutcomeExpected, time.Millisecond)
	m.ObserveCall("ContractService", "FindContract", loggable.OutcomeUnexpected, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("ContractService", "FindContract", "returned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("ContractService", "FindContract", "unexpected_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CallDuration))

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.TotalCalls)
	assert.Equal(t, int64(1), s.UnexpectedErrors)
}

func TestMetricsImplementObserver(t *testing.T) {
	var _ loggable.Observer = NewMetrics(prometheus.NewRegistry())
}

func TestBreakerChanged(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.BreakerChanged("users-service", resilience.StateClosed, resilience.StateOpen)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("users-service")))

	m.BreakerChanged("users-service", resilience.StateOpen, resilience.StateHalfOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("users-service")))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/v1/contracts/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, path := range []string{"/api/v1/contracts/1", "/api/v1/contracts/2", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/v1/contracts/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.TotalRequests)
	assert.Equal(t, int64(3), s.TotalErrors)
}

func TestHandlerServesSnapshot(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveCall("C", "M", loggable.OutcomeReturned, time.Millisecond)

	router := gin.New()
	router.GET("/status", Handler(m))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalCalls":1`)
}

func TestSeparateRegistries(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["contracts_uptime_seconds"])
}

func TestGRPCUnaryInterceptor(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	interceptor := GRPCUnaryInterceptor(m)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCCalls.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCCalls.WithLabelValues(info.FullMethod, "NotFound")))
}
