package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	apihttp "github.com/GriffinCanCode/loggable/internal/api/http"
	"github.com/GriffinCanCode/loggable/internal/api/middleware"
	"github.com/GriffinCanCode/loggable/internal/contract"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/config"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/loggable/internal/loggable"
	"github.com/GriffinCanCode/loggable/internal/users"
)

// Names reported by the gRPC health service.
const (
	HealthContracts = "contracts"
	HealthUsers     = "users-service"
)

// Server wires the contract API and serves it over HTTP, with a gRPC
// health endpoint next to it.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a server logging through a logger built from cfg and
// exporting metrics from a dedicated registry.
func NewServer(cfg *config.Config) (*Server, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	logCfg.ComponentLevels = cfg.Logging.ComponentLevels

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(cfg, logger, reg)
}

// New creates a server from its logger and metrics registry.
func New(cfg *config.Config, logger *logging.Logger, reg *prometheus.Registry) (*Server, error) {
	logger.Info("Initializing contracts server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("users_service", cfg.Users.URL),
		zap.Bool("perf_enabled", cfg.Logging.PerfEnabled),
	)

	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New("contracts", logger.Named("tracing"))

	source, err := declarations(cfg.Logging.DeclarationsFile)
	if err != nil {
		return nil, err
	}
	if cfg.Logging.DeclarationsFile != "" {
		logger.Info("Loaded instrumentation declarations", zap.String("file", cfg.Logging.DeclarationsFile))
	}

	interceptor := loggable.New(logger).
		WithSource(source).
		WithObserver(metrics).
		WithPerformance(cfg.Logging.PerfEnabled).
		WithFallback(logger.Named("loggable"))

	repo := contract.NewMemoryRepository()
	seeded, err := contract.NewSeeder(repo, cfg.Contracts.SeedFile, logger.Named("seeder")).Seed(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to seed contracts: %w", err)
	}
	logger.Info("Contract repository ready", zap.Int("seeded", seeded))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(HealthContracts, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthUsers, healthpb.HealthCheckResponse_SERVING)

	usersCfg := users.DefaultConfig(cfg.Users.URL)
	usersCfg.Timeout = cfg.Users.Timeout
	usersCfg.RetryMax = cfg.Users.RetryMax
	usersCfg.RateLimit = cfg.Users.RateLimit
	usersCfg.OnBreakerChange = func(name string, from, to resilience.State) {
		metrics.BreakerChanged(name, from, to)
		status := healthpb.HealthCheckResponse_SERVING
		if to == resilience.StateOpen {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		healthServer.SetServingStatus(HealthUsers, status)
	}
	usersClient := users.NewClient(usersCfg, interceptor, logger.Logger)

	service := contract.NewService(repo, interceptor, logger, logger.Named("contracts"))
	controller := apihttp.NewContractController(service, usersClient, interceptor, logger, logger.Named("controller"))
	handlers := apihttp.NewHandlers(usersClient)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins...)))
	router.Use(middleware.BodyLimit(middleware.MaxBodySize))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	api := router.Group("/api/v1")
	controller.Register(api)
	api.GET("/status/metrics", monitoring.Handler(metrics))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			tracing.GRPCUnaryInterceptor(tracer),
			monitoring.GRPCUnaryInterceptor(metrics),
		),
		grpc.ChainStreamInterceptor(tracing.GRPCStreamInterceptor(tracer)),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: router,
		},
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// declarations returns the code declarations, overlaid with the file at
// path when one is given.
func declarations(path string) (loggable.Source, error) {
	if path == "" {
		return loggable.Static{}, nil
	}
	file, err := loggable.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrumentation declarations: %w", err)
	}
	return loggable.Overlay{Base: loggable.Static{}, File: file}, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Logger returns the server logger.
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Run serves gRPC, when enabled, and HTTP until Shutdown is called or a
// listener fails.
func (s *Server) Run() error {
	errCh := make(chan error, 2)

	if s.config.GRPC.Enabled {
		addr := s.config.Server.Host + ":" + s.config.GRPC.Port
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		s.logger.Info("Starting gRPC server", zap.String("addr", addr))
		go func() {
			if err := s.grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// Shutdown gracefully stops both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.health.Shutdown()
	s.grpcServer.GracefulStop()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	_ = s.logger.Sync()
	return err
}
