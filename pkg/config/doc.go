// Package config provides panel configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	GRIDDECK_HOST="0.0.0.0"
//	GRIDDECK_PORT="8080"
//	GRIDDECK_HEALTH_PORT="9090"
//	GRIDDECK_READ_TIMEOUT="15s"
//	GRIDDECK_WRITE_TIMEOUT="15s"
//
// Filesystem layout:
//
//	GRIDDECK_INSTALL_ROOT="/var/lib/griddeck/applications"
//	GRIDDECK_CACHE_ROOT="/var/cache/griddeck"
//
// Record store settings:
//
//	GRIDDECK_DB_DRIVER="sqlite3"  # sqlite3, postgres
//	GRIDDECK_DB_DSN="/var/lib/griddeck/griddeck.db"
//	GRIDDECK_REDIS_ENABLED="false"
//	GRIDDECK_REDIS_ADDR="localhost:6379"
//
// Registry settings:
//
//	GRIDDECK_DEV_MODE="false"
//	GRIDDECK_LINK_COMMAND=""
//	GRIDDECK_WATCH="false"
//	GRIDDECK_WATCH_SETTLE="2s"
//
// Icon settings:
//
//	GRIDDECK_ICON_CACHE_SIZE="256"
//	GRIDDECK_ICON_CACHE_TTL="15m"
//	GRIDDECK_ICON_QUALITY="90"
//	GRIDDECK_PREWARM_WORKERS="4"
//	GRIDDECK_ICON_RATE_LIMIT="20"
//
// Observability settings:
//
//	GRIDDECK_LOG_LEVEL="info"  # debug, info, warn, error
//	GRIDDECK_METRICS_ENABLED="true"
//	GRIDDECK_OTEL_ENABLED="false"
//	GRIDDECK_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Install root: %s\n", cfg.Paths.InstallRoot)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/store: Uses record store configuration
//   - pkg/observability: Uses observability configuration
package config
