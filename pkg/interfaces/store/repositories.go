package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
)

var (
	// ErrNotFound is returned when a record cannot be located.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists is returned when a singleton record is created twice.
	ErrAlreadyExists = errors.New("store: already exists")
)

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit  int
	Offset int
	Since  time.Time
	Until  time.Time
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// StateRepository persists the singleton ContractState.
type StateRepository interface {
	// Create stores the initial record, failing with ErrAlreadyExists when one exists.
	Create(ctx context.Context, state domain.ContractState) error
	// Get returns the committed record or ErrNotFound.
	Get(ctx context.Context) (domain.ContractState, error)
	// Update applies fn to the committed record and stores the result in a single
	// atomic step. When fn fails nothing is written.
	Update(ctx context.Context, fn func(domain.ContractState) (domain.ContractState, error)) error
}

// ViewingKeyRepository stores one credential digest per account.
type ViewingKeyRepository interface {
	// Put inserts or overwrites the key for key.Account.
	Put(ctx context.Context, key domain.ViewingKey) error
	Get(ctx context.Context, account string) (domain.ViewingKey, error)
}

// SeedRepository stores the hashed credential seed.
type SeedRepository interface {
	// Put stores the digest, failing with ErrAlreadyExists when one exists.
	Put(ctx context.Context, digest []byte) error
	Get(ctx context.Context) ([]byte, error)
}

// AccessEventRepository keeps the audit trail of gate decisions.
type AccessEventRepository interface {
	Create(ctx context.Context, event *domain.AccessEvent) error
	List(ctx context.Context, opts ListOptions) (ListResult[domain.AccessEvent], error)
}

// GenesisRepository writes the initial state and the credential seed digest in
// one atomic step. It fails with ErrAlreadyExists, writing nothing, when either
// record exists.
type GenesisRepository interface {
	Create(ctx context.Context, state domain.ContractState, seedDigest []byte) error
}
