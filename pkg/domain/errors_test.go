package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	err := Unauthorized("only the owner can set viewers")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized to match sentinel")
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatalf("unexpected match against malformed")
	}

	wrapped := fmt.Errorf("gate: %w", err)
	if !errors.Is(wrapped, ErrUnauthorized) {
		t.Fatalf("expected wrapped error to match")
	}
	if KindOf(wrapped) != KindUnauthorized {
		t.Fatalf("expected kind unauthorized, got %q", KindOf(wrapped))
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
}

func TestContractStateCloneDoesNotAlias(t *testing.T) {
	state := ContractState{Owner: "creator", AllowedViewers: StringList{"viewer1"}}
	clone := state.Clone()
	clone.AllowedViewers[0] = "mallory"
	if state.AllowedViewers[0] != "viewer1" {
		t.Fatalf("clone aliased allow-list")
	}
	if !state.IsViewer("viewer1") || state.IsViewer("mallory") {
		t.Fatalf("unexpected membership result")
	}
}
