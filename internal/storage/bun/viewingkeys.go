package bunrepo

import (
	"context"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

type ViewingKeyRepository struct {
	db *bun.DB
}

var _ store.ViewingKeyRepository = (*ViewingKeyRepository)(nil)

func NewViewingKeyRepository(db *bun.DB) *ViewingKeyRepository {
	return &ViewingKeyRepository{db: db}
}

func (r *ViewingKeyRepository) Put(ctx context.Context, key domain.ViewingKey) error {
	model := &domain.ViewingKey{
		Account: key.Account,
		KeyHash: key.KeyHash,
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (account) DO UPDATE").
		Set("key_hash = EXCLUDED.key_hash").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func (r *ViewingKeyRepository) Get(ctx context.Context, account string) (domain.ViewingKey, error) {
	var key domain.ViewingKey
	err := r.db.NewSelect().
		Model(&key).
		Where("account = ?", account).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.ViewingKey{}, mapError(err)
	}
	return key, nil
}
