package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/loggable/internal/contract"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/loggable/internal/loggable"
	"github.com/GriffinCanCode/loggable/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	known map[int]contract.UserInfo
	roles map[int]string
	err   error
	auth  []string
}

func (f *fakeUsers) Exists(ctx context.Context, userID int) (bool, error) {
	f.auth = append(f.auth, users.Authorization(ctx))
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.known[userID]
	return ok, nil
}

func (f *fakeUsers) Get(ctx context.Context, userID int) (contract.UserInfo, error) {
	f.auth = append(f.auth, users.Authorization(ctx))
	return f.known[userID], nil
}

func (f *fakeUsers) Role(ctx context.Context, userID int) (string, error) {
	f.auth = append(f.auth, users.Authorization(ctx))
	if f.err != nil {
		return "", f.err
	}
	return f.roles[userID], nil
}

type fixture struct {
	router *gin.Engine
	users  *fakeUsers
	logs   *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	sinks := logging.NewFromZap(zap.New(core), zapcore.DebugLevel)
	interceptor := loggable.New(sinks)

	repo := contract.NewMemoryRepository()
	_, err := contract.NewSeeder(repo, "", nil).Seed(context.Background())
	require.NoError(t, err)

	fu := &fakeUsers{
		known: map[int]contract.UserInfo{
			1: {FirstName: "Ada", LastName: "Lovelace", Role: contract.RoleUser, Email: "ada@example.com", Username: "ada"},
		},
		roles: map[int]string{1: contract.RoleUser, 2: contract.RoleAdmin},
	}

	controller := NewContractController(contract.NewService(repo, interceptor, sinks, nil), fu, interceptor, sinks, nil)

	router := gin.New()
	router.Use(tracing.HTTPMiddleware(tracing.New("contracts", nil)))
	controller.Register(router.Group("/api/v1"))

	return &fixture{router: router, users: fu, logs: logs}
}

func (f *fixture) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (f *fixture) messages(filter string) []string {
	var out []string
	for _, e := range f.logs.All() {
		if strings.Contains(e.Message, filter) {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestGetContracts(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []contract.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestGetContractByIDEnrichesWithUser(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/1", "", "Authorization", "Bearer token")
	require.Equal(t, http.StatusOK, w.Code)

	var got contract.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{"Bearer token", "Bearer token"}, f.users.auth)
}

func TestGetContractByIDUnknownOwner(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "firstName")
	assert.Equal(t, []string{""}, f.users.auth)
}

func TestGetContractByIDNotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/9", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, contract.CodeNotFound, body.Code)
	assert.Equal(t, "Could not find contract with id = 9", body.Message)
}

func TestInvalidParameter(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidParameter, decodeError(t, w).Code)
	assert.Empty(t, f.messages("called with"), "rejected before any intercepted call")
}

func TestGetContractsByUserID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/userId/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []contract.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, contract.TypeVAC, got[0].Type)

	w = f.do(http.MethodGet, "/api/v1/contracts/userId/8", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, contract.CodeNotFoundForUser, decodeError(t, w).Code)
}

func TestAddContract(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/contracts",
		`{"type":"LLD","duration":12,"price":199.5,"userId":1}`, "Authorization", "Bearer token")
	require.Equal(t, http.StatusOK, w.Code)

	var got contract.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 4, got.ID)
	assert.Equal(t, []string{"Bearer token"}, f.users.auth)
	assert.Equal(t, []string{"Contract with id= 4 has been created"}, f.messages("has been created"))
}

func TestAddContractNotAllowed(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/contracts", `{"type":"VAC","duration":12,"price":10,"userId":1}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, contract.CodeNotAllowed, decodeError(t, w).Code)
	assert.Empty(t, f.messages("has been created"))
}

func TestAddContractValidation(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{
		`{"type":"LLD","duration":40,"price":10,"userId":1}`,
		`{"type":"XYZ","duration":12,"price":10,"userId":1}`,
		`{"type":"LLD","duration":12,"userId":1}`,
		`not json`,
	} {
		w := f.do(http.MethodPost, "/api/v1/contracts", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, CodeInvalidContract, decodeError(t, w).Code, body)
	}
	assert.Empty(t, f.users.auth)
}

func TestAddContractUsersUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = resilience.ErrCircuitOpen

	w := f.do(http.MethodPost, "/api/v1/contracts", `{"type":"LLD","duration":12,"price":10,"userId":1}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, CodeUsersUnavailable, decodeError(t, w).Code)
}

func TestAddContractUnknownOwner(t *testing.T) {
	f := newFixture(t)
	f.users.err = &users.StatusError{Method: http.MethodGet, Path: "/role/5", Status: http.StatusNotFound}

	w := f.do(http.MethodPost, "/api/v1/contracts", `{"type":"LLD","duration":12,"price":10,"userId":5}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeUserNotFound, decodeError(t, w).Code)
}

func TestUpdateContract(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/contracts/1", `{"type":"LOA","duration":24,"price":300,"userId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got contract.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, 24, got.Duration)

	w = f.do(http.MethodPut, "/api/v1/contracts/9", `{"type":"LOA","duration":24,"price":300,"userId":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, contract.CodeUpdateNotFound, decodeError(t, w).Code)
}

func TestDeleteContract(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodDelete, "/api/v1/contracts/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Contract with id= 2 has been deleted"}, f.messages("has been deleted"))

	w = f.do(http.MethodDelete, "/api/v1/contracts/2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, contract.CodeDeleteNotFound, decodeError(t, w).Code)
}

func TestNestedCallsShareService(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/contracts/9", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var thrown []observer.LoggedEntry
	for _, e := range f.logs.All() {
		if strings.Contains(e.Message, "thrown FunctionalError") {
			thrown = append(thrown, e)
		}
	}
	require.Len(t, thrown, 2, "service call then controller call")
	assert.True(t, strings.HasPrefix(thrown[0].Message, "ContractService.FindContract"))
	assert.True(t, strings.HasPrefix(thrown[1].Message, "ContractController.GetContractByID"))
	for _, e := range thrown {
		fields := e.ContextMap()
		assert.Equal(t, "contractService", fields["service"])
		assert.Equal(t, "PERF", fields["category"])
		assert.NotEmpty(t, fields[tracing.KeyTraceID])
	}
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"users 5xx", &users.StatusError{Status: http.StatusBadGateway}, http.StatusBadGateway, CodeUsersServiceFailed},
		{"half-open breaker", resilience.ErrTooManyRequests, http.StatusServiceUnavailable, CodeUsersUnavailable},
		{"unexpected", assert.AnError, http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}
