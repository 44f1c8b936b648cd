package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// SeedRepository keeps the hashed credential seed in memory.
type SeedRepository struct {
	mu     sync.RWMutex
	digest []byte
}

var _ store.SeedRepository = (*SeedRepository)(nil)

func NewSeedRepository() *SeedRepository {
	return &SeedRepository{}
}

func (r *SeedRepository) Put(_ context.Context, digest []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.digest != nil {
		return store.ErrAlreadyExists
	}
	r.digest = append([]byte(nil), digest...)
	return nil
}

func (r *SeedRepository) Get(_ context.Context) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.digest == nil {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), r.digest...), nil
}
