package viewingkey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/secrets"
)

const (
	DefaultTokenPrefix      = "api_key_"
	DefaultMaxEntropyLength = 1024
)

// CallContext carries the environment the host supplies with a call.
type CallContext struct {
	Height uint64
	Time   time.Time
	Sender string
}

// Dependencies wires repositories and knobs into the manager.
type Dependencies struct {
	Keys             store.ViewingKeyRepository
	Seeds            store.SeedRepository
	Logger           logger.Logger
	Random           io.Reader
	Clock            func() time.Time
	TokenPrefix      string
	MaxEntropyLength int
}

// Manager issues and verifies per-account viewing keys.
type Manager struct {
	mu         sync.Mutex
	keys       store.ViewingKeyRepository
	seeds      store.SeedRepository
	logger     logger.Logger
	random     io.Reader
	now        func() time.Time
	prefix     string
	maxEntropy int
}

var (
	errKeysRequired  = errors.New("viewingkey: key repository is required")
	errSeedsRequired = errors.New("viewingkey: seed repository is required")
)

// NewManager constructs the credential manager.
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Keys == nil {
		return nil, errKeysRequired
	}
	if deps.Seeds == nil {
		return nil, errSeedsRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Random == nil {
		deps.Random = rand.Reader
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	if deps.TokenPrefix == "" {
		deps.TokenPrefix = DefaultTokenPrefix
	}
	if deps.MaxEntropyLength <= 0 {
		deps.MaxEntropyLength = DefaultMaxEntropyLength
	}
	return &Manager{
		keys:       deps.Keys,
		seeds:      deps.Seeds,
		logger:     deps.Logger,
		random:     deps.Random,
		now:        deps.Clock,
		prefix:     deps.TokenPrefix,
		maxEntropy: deps.MaxEntropyLength,
	}, nil
}

// SeedDigest returns the stored form of an instance seed. Callers that persist
// the seed alongside other records use it instead of SetSeed.
func (m *Manager) SeedDigest(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, domain.Malformed("seed is required")
	}
	digest := sha256.Sum256(raw)
	return digest[:], nil
}

// SetSeed records the hash of the instance seed. It can only run once.
func (m *Manager) SetSeed(ctx context.Context, raw []byte) error {
	digest, err := m.SeedDigest(raw)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.seeds.Put(ctx, digest); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.AlreadyInitialized("seed is already set")
		}
		return fmt.Errorf("viewingkey: store seed: %w", err)
	}
	return nil
}

// Create mints a fresh token for account, replacing any previous one, and
// returns it. The token is shown once; only its digest is stored.
func (m *Manager) Create(ctx context.Context, account, entropy string, call CallContext) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", domain.Malformed("account is required")
	}
	if len(entropy) > m.maxEntropy {
		return "", domain.Malformed("entropy is too long")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seedHash, err := m.seeds.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.NotFound("seed is not set")
		}
		return "", fmt.Errorf("viewingkey: load seed: %w", err)
	}

	random := make([]byte, randomSize)
	if _, err := io.ReadFull(m.random, random); err != nil {
		return "", fmt.Errorf("viewingkey: read random: %w", err)
	}

	token, err := derive(seedHash, derivationInput{
		Account: account,
		Entropy: entropy,
		Height:  call.Height,
		TimeNs:  call.Time.UnixNano(),
		Sender:  call.Sender,
		Random:  random,
	}, m.prefix)
	if err != nil {
		return "", err
	}

	now := m.now()
	if err := m.keys.Put(ctx, domain.ViewingKey{
		Account:   account,
		KeyHash:   Digest(token),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("viewingkey: store key: %w", err)
	}

	m.logger.Debug("viewing key created", logger.Field{Key: "account", Value: secrets.MaskIdentity(account)})
	return token, nil
}

// Check verifies presented against the stored key for account.
func (m *Manager) Check(ctx context.Context, account, presented string) error {
	if account == "" || presented == "" {
		return domain.Unauthorized("invalid viewing key")
	}
	record, err := m.keys.Get(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Unauthorized("invalid viewing key")
		}
		return fmt.Errorf("viewingkey: load key: %w", err)
	}
	if !Equal(record.KeyHash, Digest(presented)) {
		return domain.Unauthorized("invalid viewing key")
	}
	return nil
}
