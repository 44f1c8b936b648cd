package di

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/goliatone/go-secretvars/pkg/activity"
	"github.com/goliatone/go-secretvars/pkg/activity/storesink"
	"github.com/goliatone/go-secretvars/pkg/activity/usersink"
	"github.com/goliatone/go-secretvars/pkg/commands"
	"github.com/goliatone/go-secretvars/pkg/config"
	"github.com/goliatone/go-secretvars/pkg/gate"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/secrets"
	"github.com/goliatone/go-secretvars/pkg/state"
	"github.com/goliatone/go-secretvars/pkg/storage"
	"github.com/goliatone/go-secretvars/pkg/viewingkey"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/uptrace/bun"
)

// Options configure the DI container. DB backs the sqlite driver when Storage
// is not supplied. UserActivity forwards decisions to a go-users activity feed.
type Options struct {
	Config       config.Config
	Storage      storage.Providers
	DB           *bun.DB
	Logger       logger.Logger
	Activity     activity.Hooks
	UserActivity types.ActivitySink
	Random       io.Reader
	Clock        func() time.Time
}

// Container wires repositories, services, gate and commands.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	State       *state.Store
	Credentials *viewingkey.Manager
	Gate        *gate.Gate
	Commands    *commands.Registry
	Activity    activity.Hooks
}

var (
	errDBRequired      = errors.New("di: sqlite driver requires a bun DB")
	errGenesisRequired = errors.New("di: storage providers require a genesis repository")
)

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	providers := opts.Storage
	if providers.State == nil {
		var err error
		providers, err = buildProviders(cfg, opts.DB, lgr)
		if err != nil {
			return nil, err
		}
	}
	if providers.Genesis == nil {
		return nil, errGenesisRequired
	}

	hooks := append(activity.Hooks{}, opts.Activity...)
	if cfg.Activity.IsEnabled() {
		hooks = append(hooks,
			storesink.Hook{Repository: providers.AccessEvents, Logger: lgr},
			activity.LoggerHook{Logger: lgr},
		)
		if opts.UserActivity != nil {
			hooks = append(hooks, usersink.Hook{Sink: opts.UserActivity})
		}
	}

	stateStore, err := state.New(state.Dependencies{
		Repository: providers.State,
		Genesis:    providers.Genesis,
		Logger:     lgr,
		Clock:      opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	keys, err := viewingkey.NewManager(viewingkey.Dependencies{
		Keys:             providers.ViewingKeys,
		Seeds:            providers.Seeds,
		Logger:           lgr,
		Random:           opts.Random,
		Clock:            opts.Clock,
		TokenPrefix:      cfg.Credentials.TokenPrefix,
		MaxEntropyLength: cfg.Credentials.MaxEntropyLength,
	})
	if err != nil {
		return nil, err
	}

	g, err := gate.New(gate.Dependencies{
		State:       stateStore,
		Credentials: keys,
		Logger:      lgr,
		Activity:    hooks,
		Clock:       opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Gate:   g,
		Logger: lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:      cfg,
		Storage:     providers,
		State:       stateStore,
		Credentials: keys,
		Gate:        g,
		Commands:    cmdRegistry,
		Activity:    hooks,
	}, nil
}

func buildProviders(cfg config.Config, db *bun.DB, lgr logger.Logger) (storage.Providers, error) {
	switch cfg.Persistence.Driver {
	case config.DriverSQLite:
		if db == nil {
			return storage.Providers{}, errDBRequired
		}
		sealer, err := buildSealer(cfg.Encryption, lgr)
		if err != nil {
			return storage.Providers{}, err
		}
		return storage.NewBunProviders(db, sealer), nil
	default:
		return storage.NewMemoryProviders(), nil
	}
}

func buildSealer(enc config.EncryptionConfig, lgr logger.Logger) (secrets.Sealer, error) {
	key, err := enc.Key()
	if err != nil {
		return nil, err
	}
	if key == nil {
		lgr.Warn("di: encryption.payload_key not set, secret payload stored unsealed")
		return secrets.PlainSealer{}, nil
	}
	sealer, err := secrets.NewXChaChaSealer(key)
	if err != nil {
		return nil, fmt.Errorf("di: payload sealer: %w", err)
	}
	return sealer, nil
}
