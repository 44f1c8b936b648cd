package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
)

// Transform derives the next state from the committed one. Returning an error
// aborts the update and leaves the committed state untouched.
type Transform func(current domain.ContractState) (domain.ContractState, error)

// Dependencies wires persistence and ambient services into the store.
type Dependencies struct {
	Repository store.StateRepository
	Genesis    store.GenesisRepository
	Logger     logger.Logger
	Clock      func() time.Time
}

// Store owns the singleton ContractState. Writes are serialized; reads observe
// the last committed state only.
type Store struct {
	mu      sync.Mutex
	repo    store.StateRepository
	genesis store.GenesisRepository
	logger  logger.Logger
	now    func() time.Time
}

var (
	errRepositoryRequired = errors.New("state: repository is required")
	errGenesisRequired    = errors.New("state: genesis repository is required")
)

// New constructs the state store.
func New(deps Dependencies) (*Store, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		repo:    deps.Repository,
		genesis: deps.Genesis,
		logger:  deps.Logger,
		now:     deps.Clock,
	}, nil
}

// Initialize creates the state with owner set, an empty allow-list and an
// empty payload. It fails with AlreadyInitialized when a state exists.
func (s *Store) Initialize(ctx context.Context, owner string) (domain.ContractState, error) {
	if owner == "" {
		return domain.ContractState{}, domain.Malformed("owner is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	initial := domain.NewContractState(owner, s.now())
	if err := s.repo.Create(ctx, initial); err != nil {
		return domain.ContractState{}, translate(err)
	}
	return initial.Clone(), nil
}

// Bootstrap creates the initial state and stores the credential seed digest
// as one unit. On any failure neither record is written.
func (s *Store) Bootstrap(ctx context.Context, owner string, seedDigest []byte) (domain.ContractState, error) {
	if owner == "" {
		return domain.ContractState{}, domain.Malformed("owner is required")
	}
	if len(seedDigest) == 0 {
		return domain.ContractState{}, domain.Malformed("seed is required")
	}
	if s.genesis == nil {
		return domain.ContractState{}, errGenesisRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	initial := domain.NewContractState(owner, s.now())
	if err := s.genesis.Create(ctx, initial, seedDigest); err != nil {
		return domain.ContractState{}, translate(err)
	}
	return initial.Clone(), nil
}

// Load returns the current committed state.
func (s *Store) Load(ctx context.Context) (domain.ContractState, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return domain.ContractState{}, translate(err)
	}
	return current, nil
}

// Update applies fn atomically. The owner is fixed for the lifetime of the
// state; a transform that changes it is rejected.
func (s *Store) Update(ctx context.Context, fn Transform) (domain.ContractState, error) {
	if fn == nil {
		return domain.ContractState{}, domain.Malformed("transform is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var committed domain.ContractState
	err := s.repo.Update(ctx, func(current domain.ContractState) (domain.ContractState, error) {
		next, err := fn(current.Clone())
		if err != nil {
			return domain.ContractState{}, err
		}
		if next.Owner != current.Owner {
			return domain.ContractState{}, domain.Malformed("owner cannot change")
		}
		next.CreatedAt = current.CreatedAt
		committed = next
		return next, nil
	})
	if err != nil {
		return domain.ContractState{}, translate(err)
	}

	// Repository bumps revision and timestamp; read back what was stored.
	stored, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Warn("state: reload after update failed", logger.Field{Key: "error", Value: err})
		return committed, nil
	}
	return stored, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domain.NotFound("state is not initialized")
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.AlreadyInitialized("state is already initialized")
	default:
		return err
	}
}
