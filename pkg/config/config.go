package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all panel configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Filesystem layout
	Paths PathsConfig

	// Record store configuration
	Store StoreConfig

	// Application registry configuration
	Apps AppsConfig

	// Icon cache configuration
	Icons IconsConfig

	// Cache maintenance configuration
	Maintenance MaintenanceConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// PathsConfig holds the two filesystem roots the panel works from
type PathsConfig struct {
	// InstallRoot is the directory applications are installed under,
	// one subdirectory per application id.
	InstallRoot string

	// CacheRoot is the directory derived assets are written under.
	CacheRoot string
}

// StoreConfig holds record store configuration
type StoreConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int

	// Optional redis read-through cache in front of the record store
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
}

// AppsConfig holds application registry configuration
type AppsConfig struct {
	// DevMode enables the per-app link step during verification
	DevMode bool

	// LinkCommand is the shell command run to link an app in dev mode
	LinkCommand string

	// Watch enables the install root watcher for live install/uninstall
	Watch bool

	// WatchSettle is how long a new install directory must sit quiet
	// before it is loaded
	WatchSettle time.Duration
}

// IconsConfig holds icon rendering and cache configuration
type IconsConfig struct {
	// MemoryCacheSize is the entry cap of the in-memory rendition cache
	MemoryCacheSize int

	// MemoryCacheTTL is how long rendition bytes stay in memory
	MemoryCacheTTL time.Duration

	// Quality is the lossy encoder quality, 1-100
	Quality int

	// PrewarmWorkers is the worker count used to pre-generate renditions
	// at startup; 0 disables prewarming
	PrewarmWorkers int

	// RateLimitRPS and RateLimitBurst bound per-client icon requests
	RateLimitRPS   int
	RateLimitBurst int
}

// MaintenanceConfig holds cache sweeper configuration
type MaintenanceConfig struct {
	SweepEnabled  bool
	SweepSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel logrus.Level

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Paths:         loadPathsConfig(),
		Store:         loadStoreConfig(),
		Apps:          loadAppsConfig(),
		Icons:         loadIconsConfig(),
		Maintenance:   loadMaintenanceConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("GRIDDECK_HOST", "0.0.0.0"),
		Port:            getEnv("GRIDDECK_PORT", "8080"),
		ReadTimeout:     getEnvDuration("GRIDDECK_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("GRIDDECK_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("GRIDDECK_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("GRIDDECK_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("GRIDDECK_HEALTH_PORT", "9090"),
	}
}

// loadPathsConfig loads filesystem layout from environment
func loadPathsConfig() PathsConfig {
	return PathsConfig{
		InstallRoot: getEnv("GRIDDECK_INSTALL_ROOT", "/var/lib/griddeck/applications"),
		CacheRoot:   getEnv("GRIDDECK_CACHE_ROOT", "/var/cache/griddeck"),
	}
}

// loadStoreConfig loads record store configuration from environment
func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:        getEnv("GRIDDECK_DB_DRIVER", "sqlite3"),
		DSN:           getEnv("GRIDDECK_DB_DSN", "/var/lib/griddeck/griddeck.db"),
		MaxOpenConns:  getEnvInt("GRIDDECK_DB_MAX_CONNS", 10),
		MaxIdleConns:  getEnvInt("GRIDDECK_DB_IDLE_CONNS", 5),
		RedisEnabled:  getEnvBool("GRIDDECK_REDIS_ENABLED", false),
		RedisAddr:     getEnv("GRIDDECK_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("GRIDDECK_REDIS_PASSWORD", ""),
	}
}

// loadAppsConfig loads registry configuration from environment
func loadAppsConfig() AppsConfig {
	return AppsConfig{
		DevMode:     getEnvBool("GRIDDECK_DEV_MODE", false),
		LinkCommand: getEnv("GRIDDECK_LINK_COMMAND", ""),
		Watch:       getEnvBool("GRIDDECK_WATCH", false),
		WatchSettle: getEnvDuration("GRIDDECK_WATCH_SETTLE", 2*time.Second),
	}
}

// loadIconsConfig loads icon configuration from environment
func loadIconsConfig() IconsConfig {
	return IconsConfig{
		MemoryCacheSize: getEnvInt("GRIDDECK_ICON_CACHE_SIZE", 256),
		MemoryCacheTTL:  getEnvDuration("GRIDDECK_ICON_CACHE_TTL", 15*time.Minute),
		Quality:         getEnvInt("GRIDDECK_ICON_QUALITY", 90),
		PrewarmWorkers:  getEnvInt("GRIDDECK_PREWARM_WORKERS", 4),
		RateLimitRPS:    getEnvInt("GRIDDECK_ICON_RATE_LIMIT", 20),
		RateLimitBurst:  getEnvInt("GRIDDECK_ICON_RATE_BURST", 40),
	}
}

// loadMaintenanceConfig loads sweeper configuration from environment
func loadMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		SweepEnabled:  getEnvBool("GRIDDECK_SWEEP_ENABLED", true),
		SweepSchedule: getEnv("GRIDDECK_SWEEP_SCHEDULE", "@hourly"),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("GRIDDECK_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("GRIDDECK_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("GRIDDECK_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("GRIDDECK_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("GRIDDECK_OTEL_SERVICE_NAME", "griddeck"),
		OTelServiceVersion: getEnv("GRIDDECK_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("GRIDDECK_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate filesystem layout
	if c.Paths.InstallRoot == "" {
		return fmt.Errorf("install root is required")
	}
	if c.Paths.CacheRoot == "" {
		return fmt.Errorf("cache root is required")
	}
	if c.Paths.InstallRoot == c.Paths.CacheRoot {
		return fmt.Errorf("install root and cache root must be different")
	}

	// Validate record store config
	switch c.Store.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid db driver: %s (must be sqlite3 or postgres)", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("db DSN is required")
	}
	if c.Store.RedisEnabled && c.Store.RedisAddr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	// Validate registry config
	if c.Apps.Watch && c.Apps.WatchSettle <= 0 {
		return fmt.Errorf("watch settle must be positive when the watcher is enabled")
	}

	// Validate icon config
	if c.Icons.Quality < 1 || c.Icons.Quality > 100 {
		return fmt.Errorf("icon quality must be between 1 and 100")
	}
	if c.Icons.MemoryCacheSize < 0 {
		return fmt.Errorf("icon cache size must not be negative")
	}

	// Validate maintenance config
	if c.Maintenance.SweepEnabled && c.Maintenance.SweepSchedule == "" {
		return fmt.Errorf("sweep schedule is required when the sweeper is enabled")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
