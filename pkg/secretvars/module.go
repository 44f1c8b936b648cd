package secretvars

import (
	"context"
	"io"
	"time"

	"github.com/goliatone/go-secretvars/internal/di"
	"github.com/goliatone/go-secretvars/pkg/activity"
	"github.com/goliatone/go-secretvars/pkg/commands"
	"github.com/goliatone/go-secretvars/pkg/config"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/gate"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/storage"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/uptrace/bun"
)

// ModuleOptions configure the secretvars module facade. UserActivity forwards
// decisions to a go-users activity feed.
type ModuleOptions struct {
	Config       config.Config
	Storage      storage.Providers
	DB           *bun.DB
	Logger       logger.Logger
	Activity     activity.Hooks
	UserActivity types.ActivitySink
	Random       io.Reader
	Clock        func() time.Time
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
	db        *bun.DB
}

// NewModule assembles repositories, services, gate and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:       opts.Config,
		Storage:      opts.Storage,
		DB:           opts.DB,
		Logger:       opts.Logger,
		Activity:     opts.Activity,
		UserActivity: opts.UserActivity,
		Random:       opts.Random,
		Clock:        opts.Clock,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Open builds a module from configuration alone, opening the SQLite database
// when the sqlite driver is selected. Close releases it.
func Open(ctx context.Context, cfg config.Config, lgr logger.Logger) (*Module, error) {
	opts := ModuleOptions{Config: cfg, Logger: lgr}
	if cfg.Persistence.Driver == config.DriverSQLite {
		db, err := storage.OpenSQLite(ctx, cfg.Persistence.DSN, lgr)
		if err != nil {
			return nil, err
		}
		opts.DB = db
	}
	mod, err := NewModule(opts)
	if err != nil {
		if opts.DB != nil {
			_ = opts.DB.Close()
		}
		return nil, err
	}
	mod.db = opts.DB
	return mod, nil
}

// Close releases resources opened by Open.
func (m *Module) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// DB returns the database opened by Open, if any.
func (m *Module) DB() *bun.DB {
	if m == nil {
		return nil
	}
	return m.db
}

// Gate returns the authorization gate.
func (m *Module) Gate() *gate.Gate {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Gate
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// AccessEvents lists recorded gate decisions.
func (m *Module) AccessEvents(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AccessEvent], error) {
	if m == nil || m.container == nil || m.container.Storage.AccessEvents == nil {
		return store.ListResult[domain.AccessEvent]{}, nil
	}
	return m.container.Storage.AccessEvents.List(ctx, opts)
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
