package bunrepo

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

// GenesisRepository inserts the state row and the seed row in one transaction.
type GenesisRepository struct {
	db    *bun.DB
	state *StateRepository
}

var _ store.GenesisRepository = (*GenesisRepository)(nil)

func NewGenesisRepository(db *bun.DB, state *StateRepository) *GenesisRepository {
	return &GenesisRepository{db: db, state: state}
}

func (r *GenesisRepository) Create(ctx context.Context, state domain.ContractState, seedDigest []byte) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		stateExists, err := tx.NewSelect().Model((*stateRecord)(nil)).Where("id = ?", stateRowID).Exists(ctx)
		if err != nil {
			return err
		}
		seedExists, err := tx.NewSelect().Model((*seedRecord)(nil)).Where("id = ?", seedRowID).Exists(ctx)
		if err != nil {
			return err
		}
		if stateExists || seedExists {
			return store.ErrAlreadyExists
		}

		rec, err := r.state.toRecord(state)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(&seedRecord{ID: seedRowID, Digest: seedDigest}).Exec(ctx)
		return err
	})
}
