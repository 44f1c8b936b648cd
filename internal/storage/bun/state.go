package bunrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/secrets"
	"github.com/uptrace/bun"
)

const stateRowID int64 = 1

var stateAssociatedData = []byte("contract_states/1")

type stateRecord struct {
	bun.BaseModel `bun:"table:contract_states"`

	ID             int64             `bun:",pk"`
	Owner          string            `bun:",notnull"`
	AllowedViewers domain.StringList `bun:"type:jsonb"`
	PayloadCipher  []byte
	PayloadNonce   []byte
	Revision       int64             `bun:",notnull,default:0"`
	CreatedAt      time.Time         `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time         `bun:",nullzero,notnull,default:current_timestamp"`
}

// StateRepository persists the singleton ContractState in one row. The
// secret payload is sealed before it reaches the database.
type StateRepository struct {
	db     *bun.DB
	sealer secrets.Sealer
	now    func() time.Time
}

var _ store.StateRepository = (*StateRepository)(nil)

func NewStateRepository(db *bun.DB, sealer secrets.Sealer) *StateRepository {
	if sealer == nil {
		sealer = secrets.PlainSealer{}
	}
	return &StateRepository{
		db:     db,
		sealer: sealer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *StateRepository) Create(ctx context.Context, state domain.ContractState) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*stateRecord)(nil)).Where("id = ?", stateRowID).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrAlreadyExists
		}
		rec, err := r.toRecord(state)
		if err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
}

func (r *StateRepository) Get(ctx context.Context) (domain.ContractState, error) {
	rec, err := r.load(ctx, r.db)
	if err != nil {
		return domain.ContractState{}, err
	}
	return r.fromRecord(rec)
}

func (r *StateRepository) Update(ctx context.Context, fn func(domain.ContractState) (domain.ContractState, error)) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		rec, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		current, err := r.fromRecord(rec)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		next.Revision = current.Revision + 1
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = r.now()
		updated, err := r.toRecord(next)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model(updated).
			Column("owner", "allowed_viewers", "payload_cipher", "payload_nonce", "revision", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

func (r *StateRepository) load(ctx context.Context, db bun.IDB) (*stateRecord, error) {
	rec := new(stateRecord)
	err := db.NewSelect().Model(rec).Where("id = ?", stateRowID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *StateRepository) toRecord(state domain.ContractState) (*stateRecord, error) {
	cipher, nonce, err := r.sealer.Seal([]byte(state.SecretPayload), stateAssociatedData)
	if err != nil {
		return nil, fmt.Errorf("bunrepo: seal payload: %w", err)
	}
	viewers := state.AllowedViewers
	if viewers == nil {
		viewers = domain.StringList{}
	}
	return &stateRecord{
		ID:             stateRowID,
		Owner:          state.Owner,
		AllowedViewers: viewers,
		PayloadCipher:  cipher,
		PayloadNonce:   nonce,
		Revision:       state.Revision,
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}, nil
}

func (r *StateRepository) fromRecord(rec *stateRecord) (domain.ContractState, error) {
	plain, err := r.sealer.Open(rec.PayloadCipher, rec.PayloadNonce, stateAssociatedData)
	if err != nil {
		return domain.ContractState{}, fmt.Errorf("bunrepo: open payload: %w", err)
	}
	viewers := rec.AllowedViewers
	if viewers == nil {
		viewers = domain.StringList{}
	}
	return domain.ContractState{
		Owner:          rec.Owner,
		AllowedViewers: viewers,
		SecretPayload:  string(plain),
		Revision:       rec.Revision,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}
