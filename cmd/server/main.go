package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
	commonconfig "github.com/tourbook/service-earnings/internal/common/config"
	"github.com/tourbook/service-earnings/internal/common/database"
	"github.com/tourbook/service-earnings/internal/common/health"
	"github.com/tourbook/service-earnings/internal/common/kafka"
	"github.com/tourbook/service-earnings/internal/common/logger"
	"github.com/tourbook/service-earnings/internal/common/middleware"
	"github.com/tourbook/service-earnings/internal/config"
	earningsEvents "github.com/tourbook/service-earnings/internal/events"
	"github.com/tourbook/service-earnings/internal/handler"
	"github.com/tourbook/service-earnings/internal/infra"
	"github.com/tourbook/service-earnings/internal/repository"
	"github.com/tourbook/service-earnings/migrations"
)

const serviceName = "service-earnings"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	baseLogger, err := logger.NewWithLevel(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zapLogger := baseLogger.Named(serviceName)
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("booking_source", cfg.BookingSource),
		zap.String("supabase_key", logger.MaskSecret(cfg.SupabaseConfig.Key)),
	)

	checks := map[string]health.Pinger{}

	// Connect to database when bookings are read directly from Postgres
	var db *gorm.DB
	if cfg.BookingSource == config.BookingSourcePostgres {
		db = connectDatabase(cfg, zapLogger)
		checks["postgres"] = health.GormPinger(db)
	}

	// Initialize Supabase client
	supabaseClient, err := infra.NewSupabaseClient(cfg.SupabaseConfig)
	if err != nil {
		zapLogger.Fatal("failed to initialize supabase", zap.Error(err))
	}

	bookingSource, err := infra.NewBookingSource(cfg.BookingSource, db, supabaseClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize booking source", zap.Error(err))
	}
	storageAdapter, err := infra.NewStorageAdapter(context.Background(), supabaseClient, cfg.StorageConfig.AvatarBucket, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize avatar storage", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTokenTTL,
		cfg.JWTConfig.RefreshTokenTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize application services
	metrics := application.DefaultMetrics()
	earningsService := application.NewEarningsService(bookingSource, kafkaProducer, metrics, zapLogger)
	storageService := application.NewStorageService(storageAdapter, application.StorageConfig{
		Bucket:              cfg.StorageConfig.AvatarBucket,
		AvatarMaxBytes:      cfg.StorageConfig.AvatarMaxBytes,
		CreateMissingBucket: cfg.StorageConfig.CreateMissingBucket,
	}, metrics, zapLogger)

	// Initialize Kafka consumer for booking events
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "earnings-service"
	bookingConsumer := earningsEvents.NewBookingEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		earningsService,
		zapLogger,
	)
	defer bookingConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting booking event consumer")
		if err := bookingConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("booking event consumer failed", zap.Error(err))
			}
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	health.NewHandler(serviceName, checks).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register API routes
	apiV1 := router.Group("/api/v1")
	handler.NewEarningsHandler(earningsService).RegisterRoutes(apiV1, jwtManager)
	handler.NewProfileHandler(storageService).RegisterRoutes(apiV1, jwtManager)
	handler.NewAdminHandler(earningsService, storageService).RegisterRoutes(apiV1, jwtManager)

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
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info(serviceName+" stopped", zap.Int("open_sessions", earningsService.ActiveSessions()))
}

// connectDatabase opens Postgres and brings the schema up to date.
func connectDatabase(cfg *config.ServiceConfig, zapLogger *zap.Logger) *gorm.DB {
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	db, err := database.Connect(dbConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == commonconfig.EnvDevelopment {
		if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), migrations.FS, ".", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return db
}
