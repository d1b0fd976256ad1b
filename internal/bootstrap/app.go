// Package bootstrap wires configuration, storage, and services into a
// runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/api"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/batch"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/config"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/coordination"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/discovery"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/logger"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/metrics"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/provider"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/queue"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/quota"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/scheduler"
)

const (
	shutdownTimeout = 30 * time.Second
	gaugeInterval   = 30 * time.Second

	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
)

// App holds the wired application components.
type App struct {
	Config    *config.Config
	Logger    logger.Interface
	DB        *sqlx.DB
	Redis     *redis.Client
	Queue     *queue.Service
	Quota     *quota.Manager
	Scheduler *scheduler.Service
	Batch     *batch.Processor
	Discovery *discovery.Orchestrator
	Lock      coordination.Locker
	Metrics   *metrics.Metrics

	businesses *database.BusinessRepository
}

// New builds the application: configuration, logger, storage, and all
// services, in dependency order.
func New() (*App, error) {
	// Phase 1: configuration
	if err := config.InitializeViper(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Phase 2: logger
	log, err := logger.New(&logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Phase 3: storage
	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	// Phase 4: run lock
	if cfg.Redis.Enabled {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.Lock = coordination.NewRunLock(app.Redis, coordination.BatchRunKey, coordination.DefaultRunLockTTL)
		log.Info("Using Redis run lock", "addr", cfg.Redis.Addr)
	} else {
		app.Lock = coordination.NewLocalLock()
		log.Warn("Redis disabled, using in-process run lock")
	}

	// Phase 5: services
	app.Metrics = metrics.New(nil)
	app.buildServices()

	return app, nil
}

// buildServices wires repositories and services onto the app.
func (a *App) buildServices() {
	queueRepo := database.NewScanQueueRepository(a.DB)
	businessRepo := database.NewBusinessRepository(a.DB)
	settingsRepo := database.NewSettingsRepository(a.DB)
	quotaRepo := database.NewQuotaRepository(a.DB)
	a.businesses = businessRepo

	a.Queue = queue.NewService(a.Logger, queueRepo)
	a.Queue.SetMetrics(a.Metrics)

	a.Quota = quota.NewManager(a.Logger, quotaRepo, map[string]int{
		provider.ProviderPageSpeed: a.Config.PageSpeed.MonthlyLimit,
	})
	a.Quota.SetMetrics(a.Metrics)

	a.Scheduler = scheduler.NewService(a.Logger, settingsRepo)

	var adapter provider.Adapter = provider.NewPageSpeedAdapter(
		a.Config.PageSpeed.Endpoint,
		a.Config.PageSpeed.APIKey,
		a.Config.PageSpeed.Timeout,
	)
	if a.Config.PageSpeed.RatePerSec > 0 {
		adapter = provider.NewPacedAdapter(adapter, a.Config.PageSpeed.RatePerSec)
	}

	a.Batch = batch.NewProcessor(a.Logger, businessRepo, a.Queue, a.Quota, adapter, batch.Options{
		StalenessDays: a.Config.Batch.StalenessDays,
		ItemDelayMin:  a.Config.Batch.ItemDelayMin,
		ItemDelayMax:  a.Config.Batch.ItemDelayMax,
		CallTimeout:   a.Config.PageSpeed.Timeout,
	})
	a.Batch.SetMetrics(a.Metrics)

	sources := make([]discovery.Source, 0, len(a.Config.Discovery.Sources))
	for _, src := range a.Config.Discovery.Sources {
		sources = append(sources, discovery.NewHTTPSource(src.Name, src.Endpoints))
	}

	policy := provider.DefaultRetryPolicy()
	if a.Config.Discovery.MaxAttempts > 0 {
		policy.MaxAttempts = a.Config.Discovery.MaxAttempts
	}
	if a.Config.Discovery.BaseDelay > 0 {
		policy.BaseDelay = a.Config.Discovery.BaseDelay
	}
	if a.Config.Discovery.MaxDelay > 0 {
		policy.MaxDelay = a.Config.Discovery.MaxDelay
	}

	a.Discovery = discovery.NewOrchestrator(a.Logger, sources, policy)
	a.Discovery.SetMetrics(a.Metrics)
}

// Close releases storage connections.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Failed to close database", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("Failed to close Redis client", "error", err)
		}
	}
}

// Serve runs the scheduler and the HTTP API until interrupted.
func (a *App) Serve() error {
	runner := scheduler.NewRunner(
		a.Logger,
		a.Scheduler,
		a.Queue,
		a.Batch,
		a.Lock,
		a.Config.Batch.ProcessingStaleAge,
	)
	runner.SetMetrics(a.Metrics)

	scansHandler := api.NewScansHandler(a.Logger, a.Scheduler, a.Batch, a.Lock)
	scansHandler.SetMetrics(a.Metrics)

	router := api.SetupRouter(a.Logger, api.Handlers{
		Settings:   api.NewSettingsHandler(a.Scheduler),
		Queue:      api.NewQueueHandler(a.Queue),
		Scans:      scansHandler,
		Quota:      api.NewQuotaHandler(a.Quota),
		Discovery:  api.NewDiscoveryHandler(a.Discovery),
		Businesses: api.NewBusinessHandler(a.businesses),
	})
	server := api.NewServer(a.Logger, a.Config.Server, router)

	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler runner: %w", err)
	}

	gaugeCtx, stopGauges := context.WithCancel(context.Background())
	go a.refreshGauges(gaugeCtx)

	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.Logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	stopGauges()
	runner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// refreshGauges periodically samples queue depth and quota usage into
// the exported gauges.
func (a *App) refreshGauges(ctx context.Context) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sampleGauges(ctx)
		}
	}
}

// sampleGauges takes one reading of the depth and usage gauges.
func (a *App) sampleGauges(ctx context.Context) {
	for _, status := range []string{"pending", "processing", "failed"} {
		count, err := a.Queue.Count(ctx, status)
		if err != nil {
			a.Logger.Debug("Failed to sample queue depth", "status", status, "error", err)
			continue
		}
		a.Metrics.QueueDepth.WithLabelValues(status).Set(float64(count))
	}

	for _, name := range a.Quota.Providers() {
		counter, err := a.Quota.GetUsage(ctx, name)
		if err != nil {
			a.Logger.Debug("Failed to sample quota usage", "provider", name, "error", err)
			continue
		}
		a.Metrics.QuotaUsed.WithLabelValues(name).Set(float64(counter.Used))
	}
}
