package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/cache"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/config"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/database"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/event"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/handler"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/job"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/queue"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/repository"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/router"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order manager API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize the product listing cache, falling back to a no-op cache
	// when redis is disabled or unreachable
	listCache := cache.Noop()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to redis, product listing cache disabled")
		} else {
			listCache = redisCache
		}
	} else {
		logger.Info().Msg("redis disabled, product listing cache is a no-op")
	}

	// Initialize the event bus and job dispatcher
	bus := event.NewBus(logger)
	dispatcher := queue.NewDispatcher(cfg.Queue.Workers, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, listCache, cfg.Redis.TTL, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, bus, logger)

	// Wire lifecycle events to job dispatch
	job.RegisterListeners(bus, dispatcher, job.Deps{
		Orders:   orderService,
		Products: productService,
		Policy:   job.PolicyFromConfig(cfg.Queue),
		Logger:   logger,
	})

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService, logger)
	productHandler := handler.NewProductHandler(productService, logger)

	// Initialize router
	mux := router.New(orderHandler, productHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Stop accepting requests first, then drain in-flight jobs
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to drain job dispatcher")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
