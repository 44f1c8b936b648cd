package viewingkey

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-secretvars/internal/storage/memory"
	"github.com/goliatone/go-secretvars/pkg/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(Dependencies{
		Keys:  memory.NewViewingKeyRepository(),
		Seeds: memory.NewSeedRepository(),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func seededManager(t *testing.T) *Manager {
	t.Helper()
	mgr := newTestManager(t)
	if err := mgr.SetSeed(context.Background(), []byte("instance-seed")); err != nil {
		t.Fatalf("set seed: %v", err)
	}
	return mgr
}

func testCall() CallContext {
	return CallContext{Height: 12345, Time: time.Unix(1571797419, 879305533), Sender: "viewer1"}
}

func TestNewManagerRequiresRepositories(t *testing.T) {
	if _, err := NewManager(Dependencies{Seeds: memory.NewSeedRepository()}); err == nil {
		t.Fatalf("expected error without key repository")
	}
	if _, err := NewManager(Dependencies{Keys: memory.NewViewingKeyRepository()}); err == nil {
		t.Fatalf("expected error without seed repository")
	}
}

func TestSetSeedOnce(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)
	if err := mgr.SetSeed(ctx, nil); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected malformed for empty seed, got %v", err)
	}
	if err := mgr.SetSeed(ctx, []byte("seed")); err != nil {
		t.Fatalf("set seed: %v", err)
	}
	if err := mgr.SetSeed(ctx, []byte("other")); !errors.Is(err, domain.ErrAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
}

func TestCreateWithoutSeed(t *testing.T) {
	mgr := newTestManager(t)
	if _, err := mgr.Create(context.Background(), "viewer1", "entropy", testCall()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateThenCheck(t *testing.T) {
	ctx := context.Background()
	mgr := seededManager(t)

	token, err := mgr.Create(ctx, "viewer1", "entropy", testCall())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(token, DefaultTokenPrefix) {
		t.Fatalf("expected prefix %q, got %q", DefaultTokenPrefix, token)
	}
	if err := mgr.Check(ctx, "viewer1", token); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := mgr.Check(ctx, "viewer2", token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for other account, got %v", err)
	}
	if err := mgr.Check(ctx, "viewer1", token+"x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for altered token, got %v", err)
	}
	if err := mgr.Check(ctx, "viewer1", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
}

func TestDifferentEntropyOnlyLatestVerifies(t *testing.T) {
	ctx := context.Background()
	mgr := seededManager(t)

	first, err := mgr.Create(ctx, "viewer1", "entropy", testCall())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := mgr.Create(ctx, "viewer1", "another entropy", testCall())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
	if err := mgr.Check(ctx, "viewer1", first); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected superseded token to fail, got %v", err)
	}
	if err := mgr.Check(ctx, "viewer1", second); err != nil {
		t.Fatalf("expected latest token to verify: %v", err)
	}
}

func TestCreateIsDeterministicForFixedRandom(t *testing.T) {
	ctx := context.Background()
	build := func() *Manager {
		mgr, err := NewManager(Dependencies{
			Keys:   memory.NewViewingKeyRepository(),
			Seeds:  memory.NewSeedRepository(),
			Random: bytes.NewReader(make([]byte, randomSize)),
		})
		if err != nil {
			t.Fatalf("new manager: %v", err)
		}
		if err := mgr.SetSeed(ctx, []byte("seed")); err != nil {
			t.Fatalf("set seed: %v", err)
		}
		return mgr
	}

	a, err := build().Create(ctx, "viewer1", "entropy", testCall())
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := build().Create(ctx, "viewer1", "entropy", testCall())
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical tokens for identical inputs")
	}
}

func TestCreateRejectsOversizedEntropy(t *testing.T) {
	mgr, err := NewManager(Dependencies{
		Keys:             memory.NewViewingKeyRepository(),
		Seeds:            memory.NewSeedRepository(),
		MaxEntropyLength: 4,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := mgr.Create(context.Background(), "viewer1", "too long", testCall()); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestCustomPrefix(t *testing.T) {
	ctx := context.Background()
	mgr, err := NewManager(Dependencies{
		Keys:        memory.NewViewingKeyRepository(),
		Seeds:       memory.NewSeedRepository(),
		TokenPrefix: "vk_",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	_ = mgr.SetSeed(ctx, []byte("seed"))
	token, err := mgr.Create(ctx, "viewer1", "", testCall())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(token, "vk_") {
		t.Fatalf("expected custom prefix, got %q", token)
	}
}

func TestStoredDigestIsNotToken(t *testing.T) {
	ctx := context.Background()
	keys := memory.NewViewingKeyRepository()
	mgr, _ := NewManager(Dependencies{Keys: keys, Seeds: memory.NewSeedRepository()})
	_ = mgr.SetSeed(ctx, []byte("seed"))

	token, err := mgr.Create(ctx, "viewer1", "entropy", testCall())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err := keys.Get(ctx, "viewer1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if bytes.Contains(record.KeyHash, []byte(token)) {
		t.Fatalf("raw token persisted")
	}
	if !bytes.Equal(record.KeyHash, Digest(token)) {
		t.Fatalf("expected digest of token to be stored")
	}
}

func TestSeedDigestIsStable(t *testing.T) {
	mgr := newTestManager(t)
	if _, err := mgr.SeedDigest(nil); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected malformed for empty seed, got %v", err)
	}
	a, err := mgr.SeedDigest([]byte("seed"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	b, _ := mgr.SeedDigest([]byte("seed"))
	if !bytes.Equal(a, b) || len(a) != 32 {
		t.Fatalf("expected stable 32 byte digest, got %x and %x", a, b)
	}
	if _, err := mgr.seeds.Get(context.Background()); err == nil {
		t.Fatalf("digest must not store the seed")
	}
}
