package secrets

import "testing"

func TestMaskIdentityHidesMiddle(t *testing.T) {
	masked := MaskIdentity("viewer1")
	if masked == "viewer1" {
		t.Fatalf("expected identity to be masked")
	}
	if masked == "" {
		t.Fatalf("expected a rendering for non-empty identity")
	}
}

func TestMaskIdentityEmpty(t *testing.T) {
	if MaskIdentity("") != "" {
		t.Fatalf("expected empty output")
	}
	if MaskIdentities(nil) != nil {
		t.Fatalf("expected nil output for nil input")
	}
}

func TestMaskIdentitiesKeepsOrder(t *testing.T) {
	out := MaskIdentities([]string{"viewer1", "viewer2"})
	if len(out) != 2 || out[0] == "viewer1" || out[1] == "viewer2" {
		t.Fatalf("unexpected masked list %v", out)
	}
}
