package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccessEventRepository struct {
	repo repository.Repository[*domain.AccessEvent]
}

var _ store.AccessEventRepository = (*AccessEventRepository)(nil)

func NewAccessEventRepository(db *bun.DB) *AccessEventRepository {
	handlers := repository.ModelHandlers[*domain.AccessEvent]{
		NewRecord:          func() *domain.AccessEvent { return &domain.AccessEvent{} },
		GetID:              func(e *domain.AccessEvent) uuid.UUID { return e.ID },
		SetID:              func(e *domain.AccessEvent, id uuid.UUID) { e.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(e *domain.AccessEvent) string { return e.ID.String() },
	}
	return &AccessEventRepository{
		repo: repository.MustNewRepository[*domain.AccessEvent](db, handlers),
	}
}

func (r *AccessEventRepository) Create(ctx context.Context, event *domain.AccessEvent) error {
	event.EnsureID()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	_, err := r.repo.Create(ctx, event)
	return mapError(err)
}

func (r *AccessEventRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AccessEvent], error) {
	records, total, err := r.repo.List(ctx, withListOptions(opts))
	if err != nil {
		return store.ListResult[domain.AccessEvent]{}, mapError(err)
	}
	items := make([]domain.AccessEvent, len(records))
	for i, rec := range records {
		items[i] = *rec
	}
	return store.ListResult[domain.AccessEvent]{Items: items, Total: total}, nil
}
