package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// ViewingKeyRepository keeps credential digests keyed by account.
type ViewingKeyRepository struct {
	mu     sync.RWMutex
	keys   map[string]domain.ViewingKey
	nextID int64
}

var _ store.ViewingKeyRepository = (*ViewingKeyRepository)(nil)

func NewViewingKeyRepository() *ViewingKeyRepository {
	return &ViewingKeyRepository{keys: make(map[string]domain.ViewingKey)}
}

func (r *ViewingKeyRepository) Put(_ context.Context, key domain.ViewingKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.keys[key.Account]; ok {
		key.ID = existing.ID
		key.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		key.ID = r.nextID
		if key.CreatedAt.IsZero() {
			key.CreatedAt = now
		}
	}
	key.UpdatedAt = now
	key.KeyHash = append([]byte(nil), key.KeyHash...)
	r.keys[key.Account] = key
	return nil
}

func (r *ViewingKeyRepository) Get(_ context.Context, account string) (domain.ViewingKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[account]
	if !ok {
		return domain.ViewingKey{}, store.ErrNotFound
	}
	key.KeyHash = append([]byte(nil), key.KeyHash...)
	return key, nil
}
