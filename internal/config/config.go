package config

import (
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration settings for the coverage service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port for the monitoring server.
// - HTTPAddr: The listen address of the public API.
// - Provider: Geocoding provider settings.
// - Resolver: Proximity lookup settings.
// - CacheTTL: Lifetime of cached geocoding answers, zero disables the cache.
// - Database: Configuration settings for the PostgreSQL database.
// - Redis: Configuration settings for the geocoding cache.
type Config struct {
	Env      string // Env is the current environment: local, development, production.
	Port     int    // Port is the monitoring server port.
	HTTPAddr string // HTTPAddr is the public API listen address.
	Provider ProviderConfig
	Resolver ResolverConfig
	CacheTTL time.Duration
	Database PostgresConfig // Database holds the postgres database configuration
	Redis    RedisConfig
}

// ProviderConfig selects and tunes the geocoding provider.
type ProviderConfig struct {
	Type      string        // adresse, nominatim or google.
	APIKey    string        // Required for google.
	RateLimit int           // Requests per second.
	Timeout   time.Duration // Caller visible geocoding timeout.
}

// ResolverConfig configures the proximity lookup.
type ResolverConfig struct {
	Mode            string        // memory or postgis.
	MaxDistance     float64       // Exclusive radius in planar meters.
	RefreshInterval time.Duration // Snapshot reload interval, zero disables reloads.
	LambertStrict   bool          // Reject projected inputs outside the Lambert-93 extent.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig holds the Redis connection settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	ResolverModeMemory  = "memory"
	ResolverModePostGIS = "postgis"
)

// MustLoad reads the configuration from the environment, optionally seeded by a .env file,
// and panics when a value cannot be parsed.
func MustLoad() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("CELLMAP_ENV", "production")
	v.SetDefault("CELLMAP_HEALTH_PORT", "8080")
	v.SetDefault("CELLMAP_HTTP_ADDR", ":8000")
	v.SetDefault("CELLMAP_PROVIDER_TYPE", "adresse")
	v.SetDefault("CELLMAP_PROVIDER_RATE", "10")
	v.SetDefault("CELLMAP_GEOCODE_TIMEOUT", "5s")
	v.SetDefault("CELLMAP_RESOLVER_MODE", ResolverModeMemory)
	v.SetDefault("CELLMAP_MAX_DISTANCE", "200")
	v.SetDefault("CELLMAP_REFRESH_INTERVAL", "10m")
	v.SetDefault("CELLMAP_LAMBERT_STRICT", "false")
	v.SetDefault("CELLMAP_CACHE_TTL", "24h")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_DB", "0")

	healthPort, err := strconv.Atoi(v.GetString("CELLMAP_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	rate, err := strconv.Atoi(v.GetString("CELLMAP_PROVIDER_RATE"))
	if err != nil || rate <= 0 {
		panic("failed to parse provider rate from configuration, must be a positive integer")
	}

	geocodeTimeout, err := time.ParseDuration(v.GetString("CELLMAP_GEOCODE_TIMEOUT"))
	if err != nil {
		panic("failed to parse geocoding timeout from configuration")
	}

	mode := v.GetString("CELLMAP_RESOLVER_MODE")
	if mode != ResolverModeMemory && mode != ResolverModePostGIS {
		panic("unknown resolver mode in configuration, must be memory or postgis")
	}

	maxDistance, err := strconv.ParseFloat(v.GetString("CELLMAP_MAX_DISTANCE"), 64)
	if err != nil || maxDistance <= 0 {
		panic("failed to parse max distance from configuration, must be a positive number")
	}

	refresh, err := time.ParseDuration(v.GetString("CELLMAP_REFRESH_INTERVAL"))
	if err != nil {
		panic("failed to parse refresh interval from configuration")
	}

	strict, err := strconv.ParseBool(v.GetString("CELLMAP_LAMBERT_STRICT"))
	if err != nil {
		panic("failed to parse lambert strict flag from configuration")
	}

	cacheTTL, err := time.ParseDuration(v.GetString("CELLMAP_CACHE_TTL"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	redisDB, err := strconv.Atoi(v.GetString("REDIS_DB"))
	if err != nil {
		panic("failed to parse redis db from configuration, must be an integer")
	}

	return &Config{
		Env:      v.GetString("CELLMAP_ENV"),
		Port:     healthPort,
		HTTPAddr: v.GetString("CELLMAP_HTTP_ADDR"),
		Provider: ProviderConfig{
			Type:      v.GetString("CELLMAP_PROVIDER_TYPE"),
			APIKey:    v.GetString("CELLMAP_PROVIDER_KEY"),
			RateLimit: rate,
			Timeout:   geocodeTimeout,
		},
		Resolver: ResolverConfig{
			Mode:            mode,
			MaxDistance:     maxDistance,
			RefreshInterval: refresh,
			LambertStrict:   strict,
		},
		CacheTTL: cacheTTL,
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}
}
