package memory

import (
	"context"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// GenesisRepository creates the state and seed together across the two
// in-memory repositories, holding both locks for the duration.
type GenesisRepository struct {
	state *StateRepository
	seeds *SeedRepository
}

var _ store.GenesisRepository = (*GenesisRepository)(nil)

func NewGenesisRepository(state *StateRepository, seeds *SeedRepository) *GenesisRepository {
	return &GenesisRepository{state: state, seeds: seeds}
}

func (r *GenesisRepository) Create(_ context.Context, state domain.ContractState, seedDigest []byte) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.seeds.mu.Lock()
	defer r.seeds.mu.Unlock()

	if r.state.exists || r.seeds.digest != nil {
		return store.ErrAlreadyExists
	}
	r.state.state = state.Clone()
	r.state.exists = true
	r.seeds.digest = append([]byte(nil), seedDigest...)
	return nil
}
