// Package identity canonicalizes principal identities before they are compared
// or persisted. Hosts hand the core raw, already authenticated identity strings;
// canonical forms make "Viewer1" and " viewer1 " the same principal.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-secretvars/pkg/domain"
)

const (
	MinLength = 3
	MaxLength = 90
)

var pattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._:-]*$`)

var rules = []validation.Rule{
	validation.Required,
	validation.Length(MinLength, MaxLength),
	validation.Match(pattern).Error("must contain only letters, digits, '.', '_', ':' or '-'"),
}

// Canonicalize trims and lowercases raw and validates the result. Failures are
// reported as domain Malformed errors.
func Canonicalize(raw string) (string, error) {
	canonical := strings.ToLower(strings.TrimSpace(raw))
	if err := validation.Validate(canonical, rules...); err != nil {
		return "", domain.Malformed(fmt.Sprintf("invalid identity: %v", err))
	}
	return canonical, nil
}

// CanonicalizeAll canonicalizes every entry, preserving order and duplicates.
// The first invalid entry aborts the whole list.
func CanonicalizeAll(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for i, entry := range raw {
		canonical, err := Canonicalize(entry)
		if err != nil {
			return nil, domain.Malformed(fmt.Sprintf("invalid identity at position %d", i))
		}
		out = append(out, canonical)
	}
	return out, nil
}

// Equal compares two raw identities by canonical form.
func Equal(a, b string) bool {
	ca, err := Canonicalize(a)
	if err != nil {
		return false
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false
	}
	return ca == cb
}
