package secrets

import "errors"

var (
	ErrInvalidKey = errors.New("secrets: invalid key")
	ErrEmptyNonce = errors.New("secrets: empty nonce")
	ErrOpenFailed = errors.New("secrets: unable to open sealed value")
)
