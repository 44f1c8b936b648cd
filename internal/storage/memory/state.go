package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// StateRepository keeps the singleton ContractState in memory.
type StateRepository struct {
	mu     sync.RWMutex
	state  domain.ContractState
	exists bool
	now    func() time.Time
}

var _ store.StateRepository = (*StateRepository)(nil)

func NewStateRepository() *StateRepository {
	return &StateRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *StateRepository) Create(_ context.Context, state domain.ContractState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exists {
		return store.ErrAlreadyExists
	}
	r.state = state.Clone()
	r.exists = true
	return nil
}

func (r *StateRepository) Get(_ context.Context) (domain.ContractState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.exists {
		return domain.ContractState{}, store.ErrNotFound
	}
	return r.state.Clone(), nil
}

func (r *StateRepository) Update(_ context.Context, fn func(domain.ContractState) (domain.ContractState, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists {
		return store.ErrNotFound
	}
	next, err := fn(r.state.Clone())
	if err != nil {
		return err
	}
	next.Revision = r.state.Revision + 1
	next.UpdatedAt = r.now()
	r.state = next.Clone()
	return nil
}
