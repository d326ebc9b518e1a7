package secure

import (
	"strings"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	codec, err := NewCodec(key)
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}

	if !codec.Enabled() {
		t.Error("Expected codec with key to be enabled")
	}

	plaintext := `{"US Equity":[{"ticker":"SPY","amount":10,"units":"shares"}]}`

	encrypted, err := codec.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if encrypted == plaintext {
		t.Error("Expected ciphertext to differ from plaintext")
	}

	decrypted, err := codec.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestCodecPassthrough(t *testing.T) {
	codec, err := NewCodec("")
	if err != nil {
		t.Fatalf("Failed to create passthrough codec: %v", err)
	}

	if codec.Enabled() {
		t.Error("Expected empty-key codec to be disabled")
	}

	out, err := codec.Encrypt("hello")
	if err != nil || out != "hello" {
		t.Errorf("Expected passthrough encrypt, got %q err %v", out, err)
	}

	out, err = codec.Decrypt("hello")
	if err != nil || out != "hello" {
		t.Errorf("Expected passthrough decrypt, got %q err %v", out, err)
	}
}

func TestCodecWrongKey(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()

	c1, _ := NewCodec(key1)
	c2, _ := NewCodec(key2)

	token, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if _, err := c2.Decrypt(token); err == nil {
		t.Error("Expected decrypt with wrong key to fail")
	}
}

func TestNewCodecRejectsGarbageKey(t *testing.T) {
	if _, err := NewCodec("not-a-key"); err == nil {
		t.Error("Expected error for malformed key")
	}
}

func TestGenerateKeyFormat(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	if strings.TrimSpace(key) == "" {
		t.Error("Expected non-empty key")
	}
}
