package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/repository"
)

// AESVault seals platform credentials with AES-GCM. Blobs are
// base64(nonce || ciphertext); the key is configured as hex.
type AESVault struct {
	aead cipher.AEAD
}

func NewAESVault(hexKey string) (repository.ICredentialVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("vault key is not valid hex: %w", err)
	}
	if len(key) != 16 && len(key) != 32 {
		return nil, fmt.Errorf("vault key must be 16 or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESVault{aead: aead}, nil
}

func (v *AESVault) Seal(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Reveal decrypts a sealed blob. Any malformed or tampered blob comes
// back as an invalid-credential error so the caller stops retrying.
func (v *AESVault) Reveal(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", apperror.InvalidCredential("credential blob is not valid base64", err)
	}
	if len(raw) < v.aead.NonceSize() {
		return "", apperror.InvalidCredential("credential blob is truncated", nil)
	}
	nonce, ciphertext := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperror.InvalidCredential("credential blob failed authentication", err)
	}
	return string(plaintext), nil
}
