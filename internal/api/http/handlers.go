package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
)

// Version is the service version reported by Root.
const Version = "1.0.0"

// BreakerReporter exposes the circuit breaker of an outbound client.
type BreakerReporter interface {
	BreakerState() resilience.State
}

// Handlers contains the service level HTTP handlers.
type Handlers struct {
	users BreakerReporter
}

// NewHandlers creates the service handlers. users may be nil.
func NewHandlers(users BreakerReporter) *Handlers {
	return &Handlers{users: users}
}

// Root handles the root endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "contracts",
		"version": Version,
	})
}

// Health handles detailed health check. An open users service breaker
// degrades the service without failing the check.
func (h *Handlers) Health(c *gin.Context) {
	status := "healthy"
	usersService := gin.H{"configured": h.users != nil}
	if h.users != nil {
		state := h.users.BreakerState()
		usersService["breaker"] = state.String()
		if state == resilience.StateOpen {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"users_service": usersService,
	})
}
