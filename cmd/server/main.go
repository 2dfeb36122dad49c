package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/application"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/auth"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/config"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/database"
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/events"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/handler"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/health"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/logger"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/middleware"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.DraftModel{},
			&repository.VehicleModel{},
			&repository.CustomerModel{},
			&repository.InvoiceCounterModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.Database.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := events.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	draftRepo := repository.NewGormDraftRepository(db)
	vehicleCatalog := repository.NewGormVehicleCatalog(db)
	customerDirectory := repository.NewGormCustomerDirectory(db)
	invoiceSequence := repository.NewGormInvoiceSequence(db)

	// Initialize pricing strategy
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		draftRepo,
		vehicleCatalog,
		customerDirectory,
		invoiceSequence,
		pricingStrategy,
		kafkaProducer,
		log,
	)
	availabilityService := application.NewAvailabilityService(bookingRepo, vehicleCatalog, log)
	draftService := application.NewDraftService(draftRepo, customerDirectory, log)

	// Initialize and start fleet event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "rental-service"
	fleetConsumer := events.NewFleetEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		vehicleCatalog,
		log,
	)
	defer func() { _ = fleetConsumer.Close() }()

	go func() {
		log.Info("starting fleet event consumer")
		if err := fleetConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("fleet event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	draftHandler := handler.NewDraftHandler(draftService, bookingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	adminHandler := handler.NewAdminBookingHandler(bookingService, vehicleCatalog)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	draftHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	availabilityHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
