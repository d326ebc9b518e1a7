// Package secure encrypts questionnaire payloads at rest. Holdings tables are
// financial PII, so the session store runs them through fernet when a key is
// configured. With no key the codec passes data through unchanged.
package secure

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// Codec encrypts and decrypts stored payloads with a fernet key.
// The zero-key Codec is a passthrough.
type Codec struct {
	key *fernet.Key
}

// NewCodec creates a Codec from a base64url fernet key. An empty key string
// returns a passthrough codec.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return &Codec{}, nil
	}

	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session encryption key: %w", err)
	}

	return &Codec{key: k}, nil
}

// Enabled reports whether the codec actually encrypts.
func (c *Codec) Enabled() bool {
	return c.key != nil
}

// Encrypt returns the fernet token for plaintext, or plaintext unchanged when
// no key is configured.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if c.key == nil {
		return plaintext, nil
	}

	tok, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt payload: %w", err)
	}

	return string(tok), nil
}

// Decrypt reverses Encrypt. Tokens never expire; stored payloads stay valid
// for the lifetime of the session.
func (c *Codec) Decrypt(stored string) (string, error) {
	if c.key == nil {
		return stored, nil
	}

	msg := fernet.VerifyAndDecrypt([]byte(stored), 0*time.Second, []*fernet.Key{c.key})
	if msg == nil {
		return "", fmt.Errorf("failed to decrypt payload: invalid token or wrong key")
	}

	return string(msg), nil
}

// GenerateKey produces a fresh base64url fernet key. Used by tests and by
// operators provisioning SESSION_ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return k.Encode(), nil
}
