package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	grpcapi "carrental-backend/internal/api/grpc"
	httpapi "carrental-backend/internal/api/http"
	"carrental-backend/internal/config"
	"carrental-backend/internal/excel"
	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/pdf"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/cache"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting car rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Booking configuration", "timezone", cfg.Booking.Timezone, "rate_limit_per_hour", cfg.Booking.RateLimitPerHour,
		"max_advance_months", cfg.Booking.MaxAdvanceMonths, "availability_fail_open", cfg.Booking.FailOpen())

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema is up to date")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)
	var carRepo repository.CarRepository = store.CarRepository
	var loginLimiter service.LoginLimiter

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn("Redis unavailable, running without car cache and login limiter", "error", err)
		} else {
			defer client.Close()
			carRepo = cache.NewCarCache(carRepo, client, cfg.Redis.CarCacheTTL())
			loginLimiter = cache.NewLoginLimiter(client)
			logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
		}
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.Email.SendGridAPIKey != "" {
		emailSvc = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	} else {
		logger.Info("No SendGrid API key configured, customer emails are disabled")
		emailSvc = service.NewNoopEmailService()
	}

	// Initialize Services
	loc := cfg.Booking.Location()
	availabilitySvc := service.NewAvailabilityService(store.RentalRepository, loc, cfg.Booking.FailOpen())
	bookingSvc := service.NewBookingService(
		store.BorrowRequestRepository,
		carRepo,
		availabilitySvc,
		security.ContextIdentity{},
		emailSvc,
		service.BookingPolicy{
			RateLimitPerHour: cfg.Booking.RateLimitPerHour,
			MaxAdvanceMonths: cfg.Booking.MaxAdvanceMonths,
			Location:         loc,
			FailOpen:         cfg.Booking.FailOpen(),
		},
	)
	requestSvc := service.NewRequestService(store.BorrowRequestRepository, store.RentalRepository, carRepo, availabilitySvc, emailSvc, loc)
	rentalSvc := service.NewRentalService(store.RentalRepository, store.BorrowRequestRepository, carRepo, availabilitySvc, loc)
	statusSvc := service.NewStatusService(store.RentalRepository, loc)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager, loginLimiter)
	jobRunner := jobs.NewJobRunner(statusSvc)

	// HTTP API
	handler := httpapi.NewHandler(httpapi.Dependencies{
		Auth:         authSvc,
		Booking:      bookingSvc,
		Availability: availabilitySvc,
		Requests:     requestSvc,
		Rentals:      rentalSvc,
		Sweeper:      jobRunner,
		Contracts:    pdf.NewGenerator(cfg.Email.FromName),
		Exporter:     excel.NewGenerator(),
		DB:           db,
		Location:     loc,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// gRPC health endpoint
	health := grpcapi.NewHealthServer(db)
	grpcServer := grpcapi.NewServer(health)
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		go health.Watch(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
