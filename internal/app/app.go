package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/greencart/internal/cartsync"
	"github.com/angelmondragon/greencart/internal/persistence"
	"github.com/angelmondragon/greencart/internal/remote"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/db"
	"github.com/angelmondragon/greencart/pkg/enums"
	"github.com/angelmondragon/greencart/pkg/logger"
	"github.com/angelmondragon/greencart/pkg/metrics"
	"github.com/angelmondragon/greencart/pkg/migrate"
	pkgredis "github.com/angelmondragon/greencart/pkg/redis"
)

// App bundles the engine with the resources it was built from.
type App struct {
	Config       *config.Config
	Logger       *logger.Logger
	Engine       *cartsync.Engine
	Connectivity *remote.Switch
	Registry     *prometheus.Registry

	// Redis and DB are set only when the matching store driver is selected.
	Redis *pkgredis.Client
	DB    *db.Client
}

// Options overrides parts of the configuration at build time.
type Options struct {
	// BaseURL replaces cfg.Sync.BaseURL, e.g. for an in-process fake service.
	BaseURL string
	// Now is the engine clock. Defaults to time.Now.
	Now func() time.Time
}

// Build opens the configured snapshot store and wires the engine around it.
// Closing the engine releases every resource Build opened.
func Build(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	a := &App{
		Config:       cfg,
		Logger:       logg,
		Connectivity: remote.NewSwitch(true),
		Registry:     prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closers, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.Sync.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	client, err := remote.NewClient(baseURL, cfg.Sync.UserID,
		remote.WithTimeout(cfg.Sync.RequestTimeout),
		remote.WithConnectivity(a.Connectivity),
	)
	if err != nil {
		return nil, multierr.Append(err, closeAll(closers))
	}

	engine, err := cartsync.New(cartsync.Params{
		Store:        store,
		Remote:       client,
		Connectivity: a.Connectivity,
		Cooldown:     cfg.Sync.RetryCooldown,
		Logger:       logg,
		Metrics:      metrics.NewSyncMetrics(a.Registry),
		UserID:       cfg.Sync.UserID,
		Now:          opts.Now,
		Closers:      closers,
		SaveTimeout:  cfg.Storage.SaveTimeout,
	})
	if err != nil {
		return nil, multierr.Append(err, closeAll(closers))
	}
	a.Engine = engine

	logg.Info(logg.WithFields(ctx, map[string]any{
		"store":    cfg.Storage.DriverKind().String(),
		"base_url": baseURL,
		"user_id":  cfg.Sync.UserID,
	}), "cart engine ready")
	return a, nil
}

// Close shuts the engine down, which closes the store connections.
func (a *App) Close() error {
	if a == nil || a.Engine == nil {
		return nil
	}
	return a.Engine.Close()
}

func (a *App) openStore(ctx context.Context) (persistence.Store, []io.Closer, error) {
	cfg := a.Config
	switch cfg.Storage.DriverKind() {
	case enums.StorageDriverMemory:
		return persistence.NewMemoryStore(), nil, nil

	case enums.StorageDriverRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, a.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		store, err := persistence.NewRedisStore(client, cfg.Storage.Key)
		if err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		a.Redis = client
		return store, []io.Closer{client}, nil

	case enums.StorageDriverDB:
		client, err := db.New(ctx, cfg.DB, a.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening db store: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg.DB, a.Logger, client); err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		store, err := persistence.NewDBStore(client, cfg.Storage.Key)
		if err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		a.DB = client
		return store, []io.Closer{client}, nil

	default:
		store, err := persistence.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening file store: %w", err)
		}
		return store, nil, nil
	}
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
