package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-secretvars/pkg/activity"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/identity"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/secrets"
	"github.com/goliatone/go-secretvars/pkg/state"
	"github.com/goliatone/go-secretvars/pkg/viewingkey"
)

const (
	msgOwnerSetViewers   = "only the owner can set viewers"
	msgOwnerSetSecret    = "only the owner can set secret variables"
	msgViewerGenerateKey = "only allowed viewers can generate viewing keys"
	msgViewerQuery       = "only allowed viewers can query secret variables"
)

// StateStore is the subset of state.Store the gate relies on.
type StateStore interface {
	Bootstrap(ctx context.Context, owner string, seedDigest []byte) (domain.ContractState, error)
	Load(ctx context.Context) (domain.ContractState, error)
	Update(ctx context.Context, fn state.Transform) (domain.ContractState, error)
}

// Credentials is the subset of viewingkey.Manager the gate relies on.
type Credentials interface {
	SeedDigest(raw []byte) ([]byte, error)
	Create(ctx context.Context, account, entropy string, call viewingkey.CallContext) (string, error)
	Check(ctx context.Context, account, presented string) error
}

// Dependencies wires the state store, credential manager and hooks into the gate.
type Dependencies struct {
	State       StateStore
	Credentials Credentials
	Logger      logger.Logger
	Activity    activity.Hooks
	Clock       func() time.Time
}

// Gate enforces who may mutate the state, mint viewing keys and read the payload.
type Gate struct {
	mu       sync.Mutex
	state    StateStore
	keys     Credentials
	logger   logger.Logger
	activity activity.Hooks
	now      func() time.Time
	calls    atomic.Uint64
}

var (
	errStateRequired       = errors.New("gate: state store is required")
	errCredentialsRequired = errors.New("gate: credential manager is required")
)

// New constructs the authorization gate.
func New(deps Dependencies) (*Gate, error) {
	if deps.State == nil {
		return nil, errStateRequired
	}
	if deps.Credentials == nil {
		return nil, errCredentialsRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Gate{
		state:    deps.State,
		keys:     deps.Credentials,
		logger:   deps.Logger,
		activity: deps.Activity,
		now:      deps.Clock,
	}, nil
}

// Instantiate records caller as the owner and sets the credential seed. The
// state and the seed are written together or not at all.
func (g *Gate) Instantiate(ctx context.Context, caller string, seed []byte) (err error) {
	owner := caller
	defer func() { g.record(ctx, domain.VerbInstantiate, owner, "", err, nil) }()

	canonical, err := identity.Canonicalize(caller)
	if err != nil {
		return err
	}
	owner = canonical
	digest, err := g.keys.SeedDigest(seed)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.Add(1)

	if _, err := g.state.Bootstrap(ctx, owner, digest); err != nil {
		return err
	}

	g.logger.Debug("contract initialized", logger.Field{Key: "owner", Value: secrets.MaskIdentity(owner)})
	return nil
}

// SetViewers replaces the allow-list. Only the owner may call it. Keys issued
// to accounts that drop off the list stay valid.
func (g *Gate) SetViewers(ctx context.Context, caller string, viewers []string) (err error) {
	actor := caller
	defer func() {
		g.record(ctx, domain.VerbSetViewers, actor, "", err, map[string]any{"viewers": len(viewers)})
	}()

	canonical, err := identity.Canonicalize(caller)
	if err != nil {
		return err
	}
	actor = canonical

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.Add(1)

	// The list is only validated once the caller is known to be the owner.
	var applied []string
	_, err = g.state.Update(ctx, func(current domain.ContractState) (domain.ContractState, error) {
		if !identity.Equal(actor, current.Owner) {
			return current, domain.Unauthorized(msgOwnerSetViewers)
		}
		list, err := identity.CanonicalizeAll(viewers)
		if err != nil {
			return current, err
		}
		applied = list
		current.AllowedViewers = domain.StringList(list)
		return current, nil
	})
	if err != nil {
		return err
	}

	g.logger.Debug("viewers set successfully",
		logger.Field{Key: "count", Value: len(applied)},
		logger.Field{Key: "viewers", Value: secrets.MaskIdentities(applied)},
	)
	return nil
}

// SetSecret replaces the payload. Only the owner may call it.
func (g *Gate) SetSecret(ctx context.Context, caller, payload string) (err error) {
	actor := caller
	defer func() { g.record(ctx, domain.VerbSetSecret, actor, "", err, nil) }()

	canonical, err := identity.Canonicalize(caller)
	if err != nil {
		return err
	}
	actor = canonical

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.Add(1)

	_, err = g.state.Update(ctx, func(current domain.ContractState) (domain.ContractState, error) {
		if !identity.Equal(actor, current.Owner) {
			return current, domain.Unauthorized(msgOwnerSetSecret)
		}
		current.SecretPayload = payload
		return current, nil
	})
	if err != nil {
		return err
	}

	g.logger.Debug("secret variables set successfully")
	return nil
}

// GenerateViewingKey mints a key for caller. The caller must be on the
// allow-list; the owner is not implicitly allowed.
func (g *Gate) GenerateViewingKey(ctx context.Context, caller, entropy string, call viewingkey.CallContext) (token string, err error) {
	actor := caller
	defer func() { g.record(ctx, domain.VerbGenerateViewingKey, actor, actor, err, nil) }()

	canonical, err := identity.Canonicalize(caller)
	if err != nil {
		return "", err
	}
	actor = canonical

	g.mu.Lock()
	defer g.mu.Unlock()
	height := g.calls.Add(1)

	current, err := g.state.Load(ctx)
	if err != nil {
		return "", err
	}
	if !current.IsViewer(actor) {
		return "", domain.Unauthorized(msgViewerGenerateKey)
	}

	if call.Height == 0 {
		call.Height = height
	}
	if call.Time.IsZero() {
		call.Time = g.now()
	}
	if call.Sender == "" {
		call.Sender = actor
	}
	return g.keys.Create(ctx, actor, entropy, call)
}

// QuerySecret returns the payload when token verifies for account.
func (g *Gate) QuerySecret(ctx context.Context, token, account string) (payload string, err error) {
	canonical, cerr := identity.Canonicalize(account)
	recorded := canonical
	if cerr != nil {
		recorded = account
	}
	defer func() { g.record(ctx, domain.VerbQuerySecret, "", recorded, err, nil) }()

	current, err := g.state.Load(ctx)
	if err != nil {
		return "", err
	}
	if cerr != nil {
		return "", domain.Unauthorized(msgViewerQuery)
	}
	if err := g.keys.Check(ctx, canonical, token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", domain.Unauthorized(msgViewerQuery)
		}
		return "", err
	}
	return current.SecretPayload, nil
}

// Owner returns the owner identity.
func (g *Gate) Owner(ctx context.Context) (string, error) {
	current, err := g.state.Load(ctx)
	if err != nil {
		return "", err
	}
	return current.Owner, nil
}

// Viewers returns a copy of the allow-list.
func (g *Gate) Viewers(ctx context.Context) ([]string, error) {
	current, err := g.state.Load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, current.AllowedViewers...), nil
}

func (g *Gate) record(ctx context.Context, verb, actor, account string, err error, metadata map[string]any) {
	evt := activity.Event{
		Verb:       verb,
		ActorID:    actor,
		Account:    account,
		Outcome:    domain.OutcomeAllowed,
		Metadata:   metadata,
		OccurredAt: g.now(),
	}
	if err != nil {
		evt.Outcome = domain.OutcomeFailed
		evt.Reason = string(domain.KindOf(err))
		if evt.Reason == "" {
			evt.Reason = "error"
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			evt.Outcome = domain.OutcomeDenied
		}
	}
	g.activity.Notify(ctx, evt)
}
