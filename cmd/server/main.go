package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/loggable/internal/infrastructure/config"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override environment variables
	port := flag.String("port", cfg.Server.Port, "HTTP server port")
	grpcPort := flag.String("grpc-port", cfg.GRPC.Port, "gRPC health server port")
	usersURL := flag.String("users", cfg.Users.URL, "Users service base URL")
	seedFile := flag.String("seed", cfg.Contracts.SeedFile, "Contract seed file (YAML)")
	declarations := flag.String("loggable", cfg.Logging.DeclarationsFile, "Instrumentation declarations file (YAML or TOML)")
	perf := flag.Bool("perf", cfg.Logging.PerfEnabled, "Emit performance records")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.GRPC.Port = *grpcPort
	cfg.Users.URL = *usersURL
	cfg.Contracts.SeedFile = *seedFile
	cfg.Logging.DeclarationsFile = *declarations
	cfg.Logging.PerfEnabled = *perf
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	logger := srv.Logger()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down gracefully", zap.Stringer("signal", sig))
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
}
