package viewingkey

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize    = 32
	randomSize = 32
	hkdfInfo   = "viewing-key"
)

// derivationInput is encoded with CBOR core deterministic rules so the same
// inputs always produce the same bytes.
type derivationInput struct {
	Account string `cbor:"1,keyasint"`
	Entropy string `cbor:"2,keyasint"`
	Height  uint64 `cbor:"3,keyasint"`
	TimeNs  int64  `cbor:"4,keyasint"`
	Sender  string `cbor:"5,keyasint"`
	Random  []byte `cbor:"6,keyasint"`
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("viewingkey: cbor enc mode: %v", err))
	}
	return em
}

func derive(seedHash []byte, input derivationInput, prefix string) (string, error) {
	encoded, err := encMode.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("viewingkey: encode input: %w", err)
	}
	salt := sha256.Sum256(encoded)

	out := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, seedHash, salt[:], []byte(hkdfInfo)), out); err != nil {
		return "", fmt.Errorf("viewingkey: expand: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(out), nil
}
