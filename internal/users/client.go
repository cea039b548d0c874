package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/loggable/internal/contract"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/loggable"
)

// ErrNotFound matches StatusError values for 404 responses.
var ErrNotFound = errors.New("user not found")

// StatusError is a non-2xx answer of the users service.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("users service: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Is reports 404 answers as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Config configures the users service client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is in requests per second; zero disables limiting
	RateLimit float64
	// OnBreakerChange is called when the circuit breaker changes state
	OnBreakerChange func(name string, from, to resilience.State)
}

// DefaultConfig returns defaults for a users service at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// ComponentName is the name the client is instrumented and logged under.
const ComponentName = "UsersClient"

// Client calls the users service. The Authorization header of the inbound
// request is forwarded when the context carries one.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger

	exists func(context.Context, int) (bool, error)
	get    func(context.Context, int) (contract.UserInfo, error)
	role   func(context.Context, int) (string, error)
}

// NewClient creates a client whose calls run through interceptor.
func NewClient(cfg Config, interceptor *loggable.Interceptor, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("users")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "contract-service/1.0")
	restyClient.JSONMarshal = sonic.Marshal
	restyClient.JSONUnmarshal = sonic.Unmarshal

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c := &Client{
		resty:   restyClient,
		limiter: limiter,
		logger:  logger,
	}
	c.breaker = resilience.New("users-service", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.Status < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			if cfg.OnBreakerChange != nil {
				cfg.OnBreakerChange(name, from, to)
			}
		},
	})

	comp := loggable.NamedComponent("users", ComponentName, loggable.Declared{Service: "usersService", ShowArgValues: loggable.On})
	c.exists = loggable.Func1(interceptor, comp.Method("Exists", loggable.Declared{}), c.fetchExists)
	c.get = loggable.Func1(interceptor, comp.Method("Get", loggable.Declared{}), c.fetchUser)
	c.role = loggable.Func1(interceptor, comp.Method("Role", loggable.Declared{}), c.fetchRole)
	return c
}

// Exists reports whether the user is known.
func (c *Client) Exists(ctx context.Context, userID int) (bool, error) {
	return c.exists(ctx, userID)
}

// Get returns the details of a user.
func (c *Client) Get(ctx context.Context, userID int) (contract.UserInfo, error) {
	return c.get(ctx, userID)
}

// Role returns the role of a user, for example USER or ADMIN.
func (c *Client) Role(ctx context.Context, userID int) (string, error) {
	return c.role(ctx, userID)
}

// BreakerState returns the state of the client's circuit breaker.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) fetchExists(ctx context.Context, userID int) (bool, error) {
	body, err := c.fetch(ctx, "/exists/id/"+strconv.Itoa(userID))
	if err != nil {
		return false, err
	}
	var exists bool
	if err := sonic.Unmarshal(body, &exists); err != nil {
		return false, pkgerrors.Wrapf(err, "users service: invalid exists answer %q", body)
	}
	return exists, nil
}

func (c *Client) fetchUser(ctx context.Context, userID int) (contract.UserInfo, error) {
	body, err := c.fetch(ctx, "/"+strconv.Itoa(userID))
	if err != nil {
		return contract.UserInfo{}, err
	}
	var user contract.UserInfo
	if err := sonic.Unmarshal(body, &user); err != nil {
		return contract.UserInfo{}, pkgerrors.Wrap(err, "users service: invalid user")
	}
	return user, nil
}

// fetchRole accepts the role as plain text or as a JSON string.
func (c *Client) fetchRole(ctx context.Context, userID int) (string, error) {
	body, err := c.fetch(ctx, "/role/"+strconv.Itoa(userID))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	var role string
	if err := sonic.UnmarshalString(text, &role); err == nil {
		return role, nil
	}
	return text, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("users service rate limit: %w", err)
	}

	return resilience.Call(c.breaker, func() ([]byte, error) {
		req := c.resty.R().SetContext(ctx)
		if auth := Authorization(ctx); auth != "" {
			req.SetHeader("Authorization", auth)
		}

		resp, err := req.Get(path)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "users service: GET %s", path)
		}
		if resp.IsError() {
			return nil, &StatusError{
				Method: http.MethodGet,
				Path:   path,
				Status: resp.StatusCode(),
				Body:   strings.TrimSpace(resp.String()),
			}
		}
		return resp.Body(), nil
	})
}

type authKey struct{}

// WithAuthorization stores the Authorization header value to forward.
func WithAuthorization(ctx context.Context, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, authKey{}, value)
}

// Authorization returns the header value stored by WithAuthorization.
func Authorization(ctx context.Context) string {
	v, _ := ctx.Value(authKey{}).(string)
	return v
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
