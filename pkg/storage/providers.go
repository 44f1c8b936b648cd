package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bunrepo "github.com/goliatone/go-secretvars/internal/storage/bun"
	"github.com/goliatone/go-secretvars/internal/storage/memory"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/secrets"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Providers exposes all repositories needed by services.
type Providers struct {
	State        store.StateRepository
	ViewingKeys  store.ViewingKeyRepository
	Seeds        store.SeedRepository
	Genesis      store.GenesisRepository
	AccessEvents store.AccessEventRepository
}

type Option func(*Providers)

// WithAccessEvents replaces the audit repository, e.g. to ship events elsewhere.
func WithAccessEvents(repo store.AccessEventRepository) Option {
	return func(p *Providers) {
		if repo != nil {
			p.AccessEvents = repo
		}
	}
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	stateRepo := memory.NewStateRepository()
	seedRepo := memory.NewSeedRepository()
	providers := Providers{
		State:        stateRepo,
		ViewingKeys:  memory.NewViewingKeyRepository(),
		Seeds:        seedRepo,
		Genesis:      memory.NewGenesisRepository(stateRepo, seedRepo),
		AccessEvents: memory.NewAccessEventRepository(),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed repositories. The caller owns the *bun.DB
// lifecycle. A nil sealer stores the payload unsealed.
func NewBunProviders(db *bun.DB, sealer secrets.Sealer, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(bunrepo.Models()...)

	stateRepo := bunrepo.NewStateRepository(db, sealer)
	providers := Providers{
		State:        stateRepo,
		ViewingKeys:  bunrepo.NewViewingKeyRepository(db),
		Seeds:        bunrepo.NewSeedRepository(db),
		Genesis:      bunrepo.NewGenesisRepository(db, stateRepo),
		AccessEvents: bunrepo.NewAccessEventRepository(db),
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// OpenSQLite opens a SQLite database through sqliteshim and ensures the schema.
// The pool is limited to one connection: the store has a single writer.
func OpenSQLite(ctx context.Context, dsn string, lgr logger.Logger) (*bun.DB, error) {
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("storage: sqlite dsn is required")
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := sqldb.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		lgr.Warn("storage: enable sqlite wal", logger.Field{Key: "error", Value: err})
	}

	if err := bunrepo.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSQLiteDir(dsn string) error {
	if !strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
