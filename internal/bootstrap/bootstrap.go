// Package bootstrap wires a storage adapter, booking lock and manager from
// configuration. The HTTP host and the CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/interview-scheduler/internal/audit"
	"github.com/BruksfildServices01/interview-scheduler/internal/config"
	"github.com/BruksfildServices01/interview-scheduler/internal/db"
	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/interview-scheduler/internal/lock"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
	slotuc "github.com/BruksfildServices01/interview-scheduler/internal/usecase/slot"
)

type App struct {
	Config   *config.Config
	Manager  *slotuc.Manager
	Repo     slot.Repository
	Metrics  *telemetry.Metrics
	Registry *prometheus.Registry
	Audit    *audit.Dispatcher

	gorm     *gorm.DB
	pool     *pgxpool.Pool
	redis    *redis.Client
	postgres *repository.SlotPostgresRepository
}

// Build opens the backends named by cfg. Close releases them.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}
	if cfg.MetricsEnabled {
		app.Metrics = telemetry.NewMetrics(app.Registry)
	}

	if err := app.open(ctx, log); err != nil {
		app.Close()
		return nil, err
	}

	repo, err := app.buildRepository(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Repo = repository.NewInstrumented(repo, cfg.Storage, app.Metrics).WithLogger(log)

	locker, err := app.buildLocker(log)
	if err != nil {
		app.Close()
		return nil, err
	}

	var sink audit.Sink = audit.NewLogSink(log)
	if app.gorm != nil {
		sink = audit.New(app.gorm)
	}
	app.Audit = audit.NewDispatcher(sink, log, 0)

	app.Manager = slotuc.NewManager(app.Repo, slotuc.ManagerOptions{
		AllowOverlap: cfg.AllowOverlap,
		Locker:       locker,
		Audit:        app.Audit,
		Metrics:      app.Metrics,
		Logger:       log,
	})

	log.Info().
		Str("storage", cfg.Storage).
		Str("lock", cfg.Lock).
		Bool("allow_overlap", cfg.AllowOverlap).
		Msg("slot engine ready")
	return app, nil
}

func (a *App) open(ctx context.Context, log zerolog.Logger) error {
	var err error

	switch a.Config.Storage {
	case config.StorageGorm:
		if a.gorm, err = db.NewGorm(a.Config); err != nil {
			return err
		}
		if err := db.Migrate(a.gorm); err != nil {
			return err
		}
	case config.StoragePostgres:
		if a.pool, err = db.NewPgxPool(ctx, a.Config); err != nil {
			return err
		}
	}

	if a.Config.NeedsRedis() {
		if a.redis, err = db.NewRedis(ctx, a.Config, log); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) buildRepository(ctx context.Context) (slot.Repository, error) {
	cfg := a.Config

	switch cfg.Storage {
	case config.StorageMemory:
		return repository.NewSlotMemoryRepository(), nil
	case config.StorageGorm:
		return repository.NewSlotGormRepository(a.gorm, repository.GormOptions{OwnerID: cfg.OwnerID}), nil
	case config.StorageRedis:
		return repository.NewSlotRedisRepository(a.redis, repository.RedisOptions{TTL: cfg.RedisTTL}), nil
	case config.StoragePostgres:
		a.postgres = repository.NewSlotPostgresRepository(a.pool, repository.PostgresOptions{
			Schema:              cfg.SlotsSchema,
			Table:               cfg.SlotsTable,
			ExclusionConstraint: cfg.ExclusionConstraint,
		})
		return a.postgres, nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func (a *App) buildLocker(log zerolog.Logger) (lock.Locker, error) {
	switch a.Config.Lock {
	case config.LockLocal:
		return lock.NewLocal(), nil
	case config.LockNone:
		return lock.Noop, nil
	case config.LockRedis:
		if a.redis == nil {
			return nil, errors.New("redis lock requires a redis client")
		}
		return lock.NewRedis(a.redis, a.Config.LockTTL, log), nil
	}
	return nil, fmt.Errorf("unknown lock %q", a.Config.Lock)
}

// DB is the gorm host database, nil for the other backends.
func (a *App) DB() *gorm.DB { return a.gorm }

// Migrate creates the storage schema ahead of first use: the gorm host
// tables, or the postgres slots table and its indexes.
func (a *App) Migrate(ctx context.Context) error {
	switch {
	case a.gorm != nil:
		return db.Migrate(a.gorm)
	case a.postgres != nil:
		return a.postgres.Init(ctx)
	}
	return nil
}

func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.gorm != nil {
		if sqlDB, err := a.gorm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
