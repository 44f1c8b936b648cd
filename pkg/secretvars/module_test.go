package secretvars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-secretvars/pkg/commands"
	"github.com/goliatone/go-secretvars/pkg/config"
	"github.com/goliatone/go-secretvars/pkg/domain"
	"github.com/goliatone/go-secretvars/pkg/interfaces/logger"
	"github.com/goliatone/go-secretvars/pkg/interfaces/store"
	"github.com/goliatone/go-secretvars/pkg/storage"
)

func TestModuleConstruction(t *testing.T) {
	module, err := NewModule(ModuleOptions{
		Logger:  &logger.Nop{},
		Storage: storage.NewMemoryProviders(),
	})
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	if module.Gate() == nil {
		t.Fatalf("expected gate")
	}
	if module.Commands() == nil || len(module.Commands().Commanders()) != 5 {
		t.Fatalf("expected commands registry with five handlers")
	}
	if module.Config().Credentials.TokenPrefix != "api_key_" {
		t.Fatalf("expected default config")
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNilModuleAccessors(t *testing.T) {
	var m *Module
	if m.Gate() != nil || m.Commands() != nil || m.Container() != nil {
		t.Fatalf("expected nil accessors on nil module")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenSQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.Persistence = config.PersistenceConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	cfg.Encryption.PayloadKey = strings.Repeat("k", 32)

	module, err := Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer module.Close()

	cmds := module.Commands()
	if err := cmds.Instantiate.Execute(ctx, commands.Instantiate{Caller: "creator", PRNGSeed: []byte("prng_seed")}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if err := cmds.SetViewers.Execute(ctx, commands.SetViewers{Caller: "creator", Viewers: []string{"viewer1"}}); err != nil {
		t.Fatalf("set viewers: %v", err)
	}
	if err := cmds.SetSecret.Execute(ctx, commands.SetSecret{Caller: "creator", SecretVariables: "this is a secret"}); err != nil {
		t.Fatalf("set secret: %v", err)
	}

	key := &commands.ViewingKeyResult{}
	if err := cmds.GenerateViewingKey.Execute(ctx, commands.GenerateViewingKey{Caller: "viewer1", Entropy: "entropy", Result: key}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := cmds.GenerateViewingKey.Execute(ctx, commands.GenerateViewingKey{Caller: "hacker", Entropy: "entropy", Result: &commands.ViewingKeyResult{}}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected hacker to be rejected, got %v", err)
	}

	secret := &commands.SecretResult{}
	if err := cmds.QuerySecret.Execute(ctx, commands.QuerySecret{ViewingKey: key.Key, Account: "viewer1", Result: secret}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if secret.SecretVariables != "this is a secret" {
		t.Fatalf("unexpected payload %q", secret.SecretVariables)
	}

	var cipher []byte
	row := module.DB().QueryRowContext(ctx, "SELECT payload_cipher FROM contract_states WHERE id = 1")
	if err := row.Scan(&cipher); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if bytes.Contains(cipher, []byte("this is a secret")) {
		t.Fatalf("payload stored in plaintext")
	}

	events, err := module.AccessEvents(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("access events: %v", err)
	}
	if events.Total != 6 {
		t.Fatalf("expected 6 audited decisions, got %d", events.Total)
	}
	for _, evt := range events.Items {
		if evt.Verb == domain.VerbGenerateViewingKey && evt.ActorID == "hacker" && evt.Outcome != domain.OutcomeDenied {
			t.Fatalf("expected hacker attempt to be denied, got %+v", evt)
		}
	}
}
