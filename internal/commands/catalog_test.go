package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-secretvars/internal/storage/memory"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/gate"
	"github.com/goliatone/go-secretvars/pkg/state"
	"github.com/goliatone/go-secretvars/pkg/viewingkey"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	states := memory.NewStateRepository()
	seeds := memory.NewSeedRepository()
	st, err := state.New(state.Dependencies{
		Repository: states,
		Genesis:    memory.NewGenesisRepository(states, seeds),
	})
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	keys, err := viewingkey.NewManager(viewingkey.Dependencies{
		Keys:  memory.NewViewingKeyRepository(),
		Seeds: seeds,
	})
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	g, err := gate.New(gate.Dependencies{State: st, Credentials: keys})
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	cat, err := NewCatalog(Dependencies{Gate: g})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func TestNewCatalogRequiresGate(t *testing.T) {
	if _, err := NewCatalog(Dependencies{}); err == nil {
		t.Fatalf("expected error without gate")
	}
}

func TestCatalogCommands(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)

	if err := cat.Instantiate.Execute(ctx, Instantiate{Caller: "creator", PRNGSeed: []byte("prng_seed")}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if err := cat.SetViewers.Execute(ctx, SetViewers{Caller: "creator", Viewers: []string{"viewer1"}}); err != nil {
		t.Fatalf("set viewers: %v", err)
	}
	if err := cat.SetSecret.Execute(ctx, SetSecret{Caller: "creator", SecretVariables: "this is a secret"}); err != nil {
		t.Fatalf("set secret: %v", err)
	}

	key := &ViewingKeyResult{}
	if err := cat.GenerateViewingKey.Execute(ctx, GenerateViewingKey{Caller: "viewer1", Entropy: "entropy", Result: key}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if key.Key == "" {
		t.Fatalf("expected key in result sink")
	}

	secret := &SecretResult{}
	if err := cat.QuerySecret.Execute(ctx, QuerySecret{ViewingKey: key.Key, Account: "viewer1", Result: secret}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if secret.SecretVariables != "this is a secret" {
		t.Fatalf("unexpected payload %q", secret.SecretVariables)
	}
}

func TestCatalogPropagatesDenials(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)
	_ = cat.Instantiate.Execute(ctx, Instantiate{Caller: "creator", PRNGSeed: []byte("seed")})

	err := cat.SetViewers.Execute(ctx, SetViewers{Caller: "anyone", Viewers: []string{"anyone"}})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	secret := &SecretResult{}
	err = cat.QuerySecret.Execute(ctx, QuerySecret{ViewingKey: "asda", Account: "viewer1", Result: secret})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if secret.SecretVariables != "" {
		t.Fatalf("payload written on denial")
	}
}

func TestCatalogRequiresResultSink(t *testing.T) {
	ctx := context.Background()
	cat := newTestCatalog(t)
	if err := cat.GenerateViewingKey.Execute(ctx, GenerateViewingKey{Caller: "viewer1"}); !errors.Is(err, errResultRequired) {
		t.Fatalf("expected result sink error, got %v", err)
	}
	if err := cat.QuerySecret.Execute(ctx, QuerySecret{Account: "viewer1"}); !errors.Is(err, errResultRequired) {
		t.Fatalf("expected result sink error, got %v", err)
	}
}
