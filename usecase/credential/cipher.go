package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

var errBadCiphertext = errors.New("credential: malformed ciphertext")

// Cipher seals credential passwords with AES-256-GCM. The wire form is
// base64(nonce || ciphertext).
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher expects key as 64 hex characters (32 bytes).
func NewCipher(key string) (*Cipher, error) {
	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, errors.New("credential: encryption key must be hex encoded")
	}
	if len(raw) != 32 {
		return nil, errors.New("credential: encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errBadCiphertext
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", errBadCiphertext
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errBadCiphertext
	}
	return string(plain), nil
}
