package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tourbook/service-earnings/internal/adapter"
	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/database"
	"github.com/tourbook/service-earnings/internal/common/logger"
	"github.com/tourbook/service-earnings/internal/config"
	"github.com/tourbook/service-earnings/internal/domain/booking"
	"github.com/tourbook/service-earnings/internal/infra"
)

// runtime is what a command needs from the environment.
type runtime struct {
	cfg     *config.ServiceConfig
	logger  *zap.Logger
	source  booking.Source
	storage adapter.StorageAdapter
	metrics *application.Metrics
	close   func()
}

// newRuntime is replaced in tests.
var newRuntime = loadRuntime

func loadRuntime(envFile string) (*runtime, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewWithLevel(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zapLogger = zapLogger.Named("earningsctl")

	var db *gorm.DB
	closeFn := func() { _ = zapLogger.Sync() }
	if cfg.BookingSource == config.BookingSourcePostgres {
		db, err = database.Connect(database.PostgresConfig{
			Host:     cfg.DBConfig.Host,
			Port:     cfg.DBConfig.Port,
			User:     cfg.DBConfig.User,
			Password: cfg.DBConfig.Password,
			DBName:   cfg.DBConfig.DBName,
			SSLMode:  cfg.DBConfig.SSLMode,
		}, zapLogger)
		if err != nil {
			return nil, err
		}
		closeFn = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = zapLogger.Sync()
		}
	}

	sb, err := infra.NewSupabaseClient(cfg.SupabaseConfig)
	if err != nil {
		return nil, err
	}
	source, err := infra.NewBookingSource(cfg.BookingSource, db, sb, zapLogger)
	if err != nil {
		return nil, err
	}

	storage, err := infra.NewStorageAdapter(context.Background(), sb, cfg.StorageConfig.AvatarBucket, zapLogger)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		logger:  zapLogger,
		source:  source,
		storage: storage,
		metrics: application.NewMetrics(prometheus.NewRegistry()),
		close:   closeFn,
	}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
