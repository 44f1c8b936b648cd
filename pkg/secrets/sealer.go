package secrets

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the payload key length accepted by NewXChaChaSealer.
const KeySize = chacha20poly1305.KeySize

// Sealer protects values at rest. Storage layers call Seal before writing and
// Open after reading; the nonce is stored next to the ciphertext.
type Sealer interface {
	Seal(plaintext, additionalData []byte) (ciphertext, nonce []byte, err error)
	Open(ciphertext, nonce, additionalData []byte) ([]byte, error)
}

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// XChaChaSealer seals values with XChaCha20-Poly1305.
type XChaChaSealer struct {
	aead cipherSuite
	rand io.Reader
}

var _ Sealer = (*XChaChaSealer)(nil)

// NewXChaChaSealer builds a sealer from a 32 byte key.
func NewXChaChaSealer(key []byte) (*XChaChaSealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", ErrInvalidKey, KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaChaSealer{aead: aead, rand: rand.Reader}, nil
}

func (s *XChaChaSealer) Seal(plaintext, additionalData []byte) ([]byte, []byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, nil, fmt.Errorf("nonce: %w", err)
	}
	return s.aead.Seal(nil, nonce, plaintext, additionalData), nonce, nil
}

func (s *XChaChaSealer) Open(ciphertext, nonce, additionalData []byte) ([]byte, error) {
	if len(nonce) == 0 {
		return nil, ErrEmptyNonce
	}
	plain, err := s.aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		// The AEAD error carries no secret material, but keep the surface uniform.
		return nil, ErrOpenFailed
	}
	return plain, nil
}

// PlainSealer stores values as-is. Intended for tests and deployments that rely
// on storage level encryption.
type PlainSealer struct{}

var _ Sealer = PlainSealer{}

func (PlainSealer) Seal(plaintext, _ []byte) ([]byte, []byte, error) {
	return append([]byte(nil), plaintext...), nil, nil
}

func (PlainSealer) Open(ciphertext, _, _ []byte) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}
