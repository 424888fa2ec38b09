package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealerInfo = "matterdesk/google-oauth-tokens/v1"

// ErrSealedTooShort is returned when a sealed value cannot hold a nonce.
var ErrSealedTooShort = errors.New("sealed value too short")

// TokenSealer encrypts credentials at rest with XChaCha20-Poly1305.
// The AEAD key is derived from a configured secret with HKDF-SHA256.
// Sealed layout: nonce || ciphertext.
type TokenSealer struct {
	aead cipher.AEAD
}

// NewTokenSealer derives the encryption key from secret.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token sealer: secret must be at least 32 characters (got %d)", len(secret))
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo)), key); err != nil {
		return nil, fmt.Errorf("token sealer: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}
	return &TokenSealer{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (s *TokenSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("token sealer: nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a value produced by Seal.
func (s *TokenSealer) Open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}
	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("token sealer: open: %w", err)
	}
	return plain, nil
}
