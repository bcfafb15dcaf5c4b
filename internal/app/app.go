// Package app wires configuration into a running set of services.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jobtrack/internal/config"
	"jobtrack/internal/core/ports"
	"jobtrack/internal/core/repository"
	"jobtrack/internal/document"
	"jobtrack/internal/infrastructure/fs"
	"jobtrack/internal/infrastructure/inproc"
	"jobtrack/internal/infrastructure/memdb"
	"jobtrack/internal/infrastructure/pebble"
	redisinfra "jobtrack/internal/infrastructure/redis"
	"jobtrack/internal/infrastructure/sqldb"
	"jobtrack/internal/logging"
	"jobtrack/internal/metrics"
	"jobtrack/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	Metrics   *metrics.Metrics
	Store     ports.KVStore
	Bus       ports.EventBus
	Workflows service.WorkflowService
	Jobs      service.JobService

	closers []func() error
}

// New opens the configured store and event bus and builds the services.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}

	var client *redis.Client
	if cfg.Store.Driver == "redis" || cfg.Events.Driver == "redis" {
		c, err := redisinfra.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, err
		}
		client = c
		a.closers = append(a.closers, client.Close)
	}

	kv, err := a.openStore(ctx, client)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = metrics.InstrumentKV(kv, cfg.Store.Driver, a.Metrics)

	switch cfg.Events.Driver {
	case "redis":
		a.Bus = redisinfra.NewRedisEventBus(client, cfg.Redis.Prefix, logging.Component(log, "event_bus"))
	default:
		a.Bus = inproc.NewEventBus(cfg.Events.Buffer)
	}

	store := document.NewStore(a.Store)
	workflowRepo := repository.NewWorkflowRepository(store, logging.Component(log, "workflow_repository"))
	jobRepo := repository.NewJobRepository(store, logging.Component(log, "job_repository"))

	locker := service.NewLocker()
	common := []service.Option{
		service.WithLocker(locker),
		service.WithLease(cfg.Jobs.Lease),
		service.WithMetrics(a.Metrics),
		service.WithLogger(logging.Component(log, "service")),
	}
	a.Workflows = service.NewWorkflowService(workflowRepo, jobRepo, a.Bus, common...)
	a.Jobs = service.NewJobService(jobRepo, a.Bus, common...)

	log.WithFields(logrus.Fields{
		"store":  cfg.Store.Driver,
		"events": cfg.Events.Driver,
		"lease":  cfg.Jobs.Lease,
	}).Info("jobtrack initialized")
	return a, nil
}

func (a *App) openStore(ctx context.Context, client *redis.Client) (ports.KVStore, error) {
	cfg := a.Config.Store
	switch cfg.Driver {
	case "fs":
		return fs.New(cfg.Path)
	case "memory":
		return memdb.New()
	case "pebble":
		s, err := pebble.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case "redis":
		return redisinfra.NewKVStore(client, a.Config.Redis.Prefix), nil
	case "postgres", "sqlite":
		dsn := cfg.DSN
		if dsn == "" && cfg.Driver == "sqlite" {
			if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
				return nil, fmt.Errorf("app: create %s: %w", cfg.Path, err)
			}
			dsn = filepath.Join(cfg.Path, "jobtrack.db")
		}
		db, err := sqldb.Open(cfg.Driver, dsn, logging.Component(a.Log, "sqldb"))
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		s := sqldb.New(db)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("app: unknown store driver %q", cfg.Driver)
	}
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
