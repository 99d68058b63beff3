package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/api"
	"github.com/griddeck/griddeck/pkg/assets"
	"github.com/griddeck/griddeck/pkg/async"
	"github.com/griddeck/griddeck/pkg/config"
	"github.com/griddeck/griddeck/pkg/maintenance"
	"github.com/griddeck/griddeck/pkg/observability"
	"github.com/griddeck/griddeck/pkg/pins"
	"github.com/griddeck/griddeck/pkg/plugins"
	"github.com/griddeck/griddeck/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	log.SetLevel(cfg.Observability.LogLevel)
	log.Info("Starting Griddeck application panel")

	ctx := context.Background()

	// Both filesystem roots must exist before anything scans or writes them.
	if err := os.MkdirAll(cfg.Paths.InstallRoot, 0755); err != nil {
		log.Fatalf("Failed to create install root %s: %v", cfg.Paths.InstallRoot, err)
	}
	if err := os.MkdirAll(cfg.Paths.CacheRoot, 0755); err != nil {
		log.Fatalf("Failed to create cache root %s: %v", cfg.Paths.CacheRoot, err)
	}
	if cfg.Store.Driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.DSN), 0755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	sqlStore, err := store.Open(store.Options{
		Driver:       cfg.Store.Driver,
		DSN:          cfg.Store.DSN,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	if err := sqlStore.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate record store: %v", err)
	}
	log.Infof("Record store ready (%s)", cfg.Store.Driver)

	var records store.RecordStore = sqlStore
	if cfg.Store.RedisEnabled {
		cached, err := store.NewCachedStore(sqlStore, cfg.Store.RedisAddr, cfg.Store.RedisPassword, log)
		if err != nil {
			log.Fatalf("Failed to connect redis cache: %v", err)
		}
		records = cached
		log.Infof("Redis read-through cache enabled at %s", cfg.Store.RedisAddr)
	}

	var linker plugins.Linker
	if cfg.Apps.DevMode && cfg.Apps.LinkCommand != "" {
		linker = &plugins.CommandLinker{Command: cfg.Apps.LinkCommand, Log: log}
	}
	registry := plugins.NewRegistry(plugins.RegistryOptions{
		InstallRoot: cfg.Paths.InstallRoot,
		Linker:      linker,
		DevMode:     cfg.Apps.DevMode,
		Log:         log,
	})
	if err := registry.LoadAll(ctx); err != nil {
		log.Fatalf("Failed to scan install root: %v", err)
	}
	log.Infof("Loaded %d applications from %s", registry.Len(), cfg.Paths.InstallRoot)

	icons := assets.NewCache(assets.CacheOptions{
		CacheRoot: cfg.Paths.CacheRoot,
		Registry:  registry,
		Resizer:   &assets.ImageResizer{Quality: float32(cfg.Icons.Quality)},
		Memory:    assets.NewMemoryCache(cfg.Icons.MemoryCacheSize, cfg.Icons.MemoryCacheTTL),
		Log:       log,
	})
	if err := icons.ProvisionFallback(ctx); err != nil {
		log.Fatalf("Failed to provision fallback icon: %v", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	if cfg.Icons.PrewarmWorkers > 0 {
		loaded := registry.ListLoaded()
		ids := make([]string, 0, len(loaded))
		for _, s := range loaded {
			ids = append(ids, s.ID)
		}
		async.SafeGo(runCtx, 10*time.Minute, "icon prewarm", func(ctx context.Context) error {
			icons.Prewarm(ctx, ids, cfg.Icons.PrewarmWorkers)
			return nil
		})
	}

	pinService := pins.NewService(records, registry, log)

	var promRegistry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		promRegistry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(promRegistry)
	}

	var otelProviders *observability.OTelProviders
	var otelMetrics *observability.OTelMetrics
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(ctx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, log)
		if err != nil {
			log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
		}
		otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			log.Fatalf("Failed to create OpenTelemetry instruments: %v", err)
		}
	}

	server := api.NewServer(api.Options{
		Registry:      registry,
		Icons:         icons,
		Pins:          pinService,
		Records:       records,
		Logger:        log,
		Metrics:       metrics,
		OTelMetrics:   otelMetrics,
		IconRateRPS:   cfg.Icons.RateLimitRPS,
		IconRateBurst: cfg.Icons.RateLimitBurst,
		Tracing:       cfg.Observability.OTelEnabled,
	})

	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(records, cfg.Paths.InstallRoot, cfg.Paths.CacheRoot)
	observability.RegisterHealthRoutes(healthMux, checker)
	if promRegistry != nil {
		observability.RegisterMetricsEndpoint(healthMux, promRegistry)
	}

	apiAddr := cfg.Server.Host + ":" + cfg.Server.Port
	apiServer := &http.Server{
		Addr:         apiAddr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthAddr := cfg.Server.Host + ":" + cfg.Server.HealthPort
	healthServer := &http.Server{
		Addr:         healthAddr,
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(log, cfg.Server.ShutdownTimeout)
	shutdown.AddServer(apiServer)
	shutdown.AddServer(healthServer)

	if cfg.Apps.Watch {
		watcher, err := plugins.NewWatcher(registry, cfg.Apps.WatchSettle, log)
		if err != nil {
			log.Fatalf("Failed to start install watcher: %v", err)
		}
		go func() {
			if err := watcher.Run(runCtx); err != nil && err != context.Canceled {
				log.WithError(err).Error("Install watcher stopped")
			}
		}()
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			cancelRun()
			return watcher.Close()
		})
	}

	if cfg.Maintenance.SweepEnabled {
		sweeper := maintenance.NewSweeper(maintenance.Options{
			InstallRoot: cfg.Paths.InstallRoot,
			CacheRoot:   cfg.Paths.CacheRoot,
			Invalidator: icons,
			Registry:    registry,
			Metrics:     metrics,
			Logger:      log,
		})
		sweepCron, err := sweeper.Start(cfg.Maintenance.SweepSchedule)
		if err != nil {
			log.Fatalf("Failed to schedule cache sweep: %v", err)
		}
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			// Stop returns once running jobs drain.
			select {
			case <-sweepCron.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		})
	}

	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, log)
		})
	}
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return records.Close()
	})

	go func() {
		log.Infof("API server listening on %s", apiAddr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()
	go func() {
		log.Infof("Health server listening on %s", healthAddr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Health server failed: %v", err)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}
