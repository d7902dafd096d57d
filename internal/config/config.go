package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tourbook/service-earnings/internal/common/config"
)

// Booking sources.
const (
	BookingSourceSupabase = "supabase"
	BookingSourcePostgres = "postgres"
)

// SupabaseConfig holds Supabase project credentials.
type SupabaseConfig struct {
	URL string
	Key string
}

// Enabled reports whether a Supabase project is configured.
func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.Key != ""
}

// StorageConfig holds avatar storage settings.
type StorageConfig struct {
	AvatarBucket        string
	AvatarMaxBytes      int64
	CreateMissingBucket bool
}

// ServiceConfig holds all configuration for the earnings service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	LogLevel       string
	BookingSource  string
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	SupabaseConfig SupabaseConfig
	StorageConfig  StorageConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load(envFiles ...string) (*ServiceConfig, error) {
	v, err := config.Load("earnings", envFiles...)
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "earnings")
	v.SetDefault("BOOKING_SOURCE", BookingSourcePostgres)
	v.SetDefault("AVATAR_BUCKET", "avatars")
	v.SetDefault("AVATAR_MAX_BYTES", 2<<20)
	v.SetDefault("STORAGE_CREATE_MISSING_BUCKET", false)

	cfg := &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		LogLevel:       v.GetString("LOG_LEVEL"),
		BookingSource:  v.GetString("BOOKING_SOURCE"),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		SupabaseConfig: loadSupabaseConfig(v),
		StorageConfig:  loadStorageConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *ServiceConfig) Validate() error {
	switch c.BookingSource {
	case BookingSourcePostgres:
	case BookingSourceSupabase:
		if !c.SupabaseConfig.Enabled() {
			return fmt.Errorf("BOOKING_SOURCE=supabase requires SUPABASE_URL and SUPABASE_KEY")
		}
	default:
		return fmt.Errorf("unknown BOOKING_SOURCE %q", c.BookingSource)
	}
	if c.JWTConfig.Secret == "" && c.AppEnv == config.EnvProduction {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.StorageConfig.AvatarMaxBytes <= 0 {
		return fmt.Errorf("AVATAR_MAX_BYTES must be positive")
	}
	return nil
}

// loadSupabaseConfig extracts Supabase configuration from Viper.
func loadSupabaseConfig(v *viper.Viper) SupabaseConfig {
	return SupabaseConfig{
		URL: v.GetString("SUPABASE_URL"),
		Key: v.GetString("SUPABASE_KEY"),
	}
}

// loadStorageConfig extracts avatar storage configuration from Viper.
func loadStorageConfig(v *viper.Viper) StorageConfig {
	return StorageConfig{
		AvatarBucket:        v.GetString("AVATAR_BUCKET"),
		AvatarMaxBytes:      v.GetInt64("AVATAR_MAX_BYTES"),
		CreateMissingBucket: v.GetBool("STORAGE_CREATE_MISSING_BUCKET"),
	}
}
