package bunrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

const seedRowID int64 = 1

type seedRecord struct {
	bun.BaseModel `bun:"table:viewing_key_seeds"`

	ID        int64     `bun:",pk"`
	Digest    []byte    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

type SeedRepository struct {
	db *bun.DB
}

var _ store.SeedRepository = (*SeedRepository)(nil)

func NewSeedRepository(db *bun.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

func (r *SeedRepository) Put(ctx context.Context, digest []byte) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*seedRecord)(nil)).Where("id = ?", seedRowID).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrAlreadyExists
		}
		_, err = tx.NewInsert().Model(&seedRecord{ID: seedRowID, Digest: digest}).Exec(ctx)
		return err
	})
}

func (r *SeedRepository) Get(ctx context.Context) ([]byte, error) {
	var rec seedRecord
	err := r.db.NewSelect().Model(&rec).Where("id = ?", seedRowID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return rec.Digest, nil
}
