package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/products-repository-api/internal/app/service"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/config"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/http"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/telemetry"
)

const instrumentationName = "products-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(cfg)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Ensure telemetry is flushed on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Products API")

	repo := memory.NewProductRepository(tracer, logger)
	productService := service.NewProductService(repo, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	server := http.NewServer(&cfg.Server, productHandler, logger, telem)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}
