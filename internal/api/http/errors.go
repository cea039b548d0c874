package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/loggable/internal/contract"
	"github.com/GriffinCanCode/loggable/internal/fault"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/users"
)

// Codes of the errors that do not come from the contract domain.
const (
	CodeUserNotFound       = "user.not.found"
	CodeUsersUnavailable   = "users.service.unavailable"
	CodeUsersServiceFailed = "users.service.error"
	CodeInternal           = "internal.error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError records err on the request and answers with its status
// and body.
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	var fe *fault.FunctionalError
	var se *users.StatusError

	switch {
	case errors.As(err, &fe):
		return functionalStatus(fe.Code), ErrorResponse{Code: fe.Code, Message: fe.Error()}
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: CodeUserNotFound, Message: "Could not find the contract owner"}
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable, ErrorResponse{Code: CodeUsersUnavailable, Message: "Users service is unavailable"}
	case errors.As(err, &se):
		return http.StatusBadGateway, ErrorResponse{Code: CodeUsersServiceFailed, Message: "Users service answered with an error"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "An unexpected error occurred"}
	}
}

// functionalStatus maps a message code to a status: missing entities are
// 404, refused operations 403, anything else a bad request.
func functionalStatus(code string) int {
	switch {
	case code == contract.CodeNotAllowed:
		return http.StatusForbidden
	case strings.Contains(code, "not.found"):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
