package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Location providers accepted by LOCATION_PROVIDER.
const (
	LocationStatic = "static"
	LocationMapbox = "mapbox"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the picker service settings, populated from environment variables.
type Config struct {
	PlacesAPIURL     string
	PlacesAPITimeout time.Duration

	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	LocationProvider string
	LocationLat      float64
	LocationLon      float64
	LocationTimeout  time.Duration

	// Mapbox geocoding configuration, used when LocationProvider is "mapbox".
	MapboxToken     string
	MapboxQuery     string
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// LoggingLevel implements observability.LoggerConfig.
func (c *Config) LoggingLevel() string { return c.LogLevel }

// LoggingFormat implements observability.LoggerConfig.
func (c *Config) LoggingFormat() string { return c.LogFormat }

// BackendConfig holds the settings of the reference places service.
type BackendConfig struct {
	Addr            string
	CatalogFile     string
	StoreDriver     string
	RedisAddr       string
	RedisDB         int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// LoggingLevel implements observability.LoggerConfig.
func (c *BackendConfig) LoggingLevel() string { return c.LogLevel }

// LoggingFormat implements observability.LoggerConfig.
func (c *BackendConfig) LoggingFormat() string { return c.LogFormat }

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; real environment wins

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	apiTimeout, err := parseDuration("PLACES_API_TIMEOUT", "10s", true)
	if err != nil {
		return nil, err
	}
	locationTimeout, err := parseDuration("LOCATION_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}
	lat, err := parseFloat("LOCATION_LAT", "0")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("LOCATION_LON", "0")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PlacesAPIURL:       strings.TrimRight(sharedcfg.EnvOrDefault("PLACES_API_URL", "http://localhost:3000"), "/"),
		PlacesAPITimeout:   apiTimeout,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		LocationProvider: sharedcfg.EnvOrDefault("LOCATION_PROVIDER", LocationStatic),
		LocationLat:      lat,
		LocationLon:      lon,
		LocationTimeout:  locationTimeout,

		MapboxToken:     os.Getenv("MAPBOX_TOKEN"),
		MapboxQuery:     os.Getenv("MAPBOX_QUERY"),
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "user-places-changed"),
	}

	if cfg.PlacesAPIURL == "" {
		return nil, errors.New("PLACES_API_URL is required")
	}
	if cfg.LocationLat < -90 || cfg.LocationLat > 90 {
		return nil, errors.New("LOCATION_LAT must be within [-90, 90]")
	}
	if cfg.LocationLon < -180 || cfg.LocationLon > 180 {
		return nil, errors.New("LOCATION_LON must be within [-180, 180]")
	}
	switch cfg.LocationProvider {
	case LocationStatic:
	case LocationMapbox:
		if cfg.MapboxToken == "" {
			return nil, errors.New("LOCATION_PROVIDER is mapbox but MAPBOX_TOKEN is not set")
		}
		if cfg.MapboxQuery == "" {
			return nil, errors.New("LOCATION_PROVIDER is mapbox but MAPBOX_QUERY is not set")
		}
	default:
		return nil, fmt.Errorf("invalid LOCATION_PROVIDER %q", cfg.LocationProvider)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// LoadBackend reads the reference places service configuration.
func LoadBackend() (*BackendConfig, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	cfg := &BackendConfig{
		Addr:            sharedcfg.EnvOrDefault("BACKEND_ADDR", ":3000"),
		CatalogFile:     sharedcfg.EnvOrDefault("CATALOG_FILE", "data/places.json"),
		StoreDriver:     sharedcfg.EnvOrDefault("STORE_DRIVER", StoreMemory),
		RedisAddr:       sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:         redisDB,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.CatalogFile == "" {
		return nil, errors.New("CATALOG_FILE is required")
	}

	return cfg, nil
}

// parseDuration reads key as a duration. Zero is accepted only when allowZero is set.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
