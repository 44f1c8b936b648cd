package secrets

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

const identityMask = "preserveEnds(2,2)"

var defaultSecretFields = []string{
	"token", "viewing_key", "key",
	"secret", "secret_payload", "payload",
	"seed", "prng_seed", "entropy",
}

func init() {
	for _, field := range defaultSecretFields {
		masker.Default.RegisterMaskField(field, "filled")
	}
}

// MaskIdentity returns a log-safe rendering of an account identity.
func MaskIdentity(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(identityMask, value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// MaskIdentities masks every entry of list.
func MaskIdentities(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = MaskIdentity(v)
	}
	return out
}
