// Package crypto encrypts the cached OAuth token at rest.
//
// The calendar backend hands us a long-lived refresh token that ends up in a
// file next to the binary. When FIXTURESYNC_PASSPHRASE is set, the token
// file is sealed with AES-GCM under a PBKDF2-derived key; without it the
// token is stored as plain JSON, matching the previous behavior.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	keySize    = 32 // AES-256
)

// Encryptor handles encryption and decryption of the token file contents.
// A nil Encryptor passes data through unchanged, so callers never branch on
// whether a passphrase was configured.
type Encryptor struct {
	key []byte
}

// NewEncryptor creates an encryptor from a passphrase. Returns nil for an
// empty passphrase, which disables encryption.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// The salt is derived from the passphrase itself rather than stored
	// next to the ciphertext; there is exactly one secret per install.
	salt := sha256.Sum256([]byte(passphrase + "fixture-sync-token-salt"))
	key := pbkdf2.Key([]byte(passphrase), salt[:], iterations, keySize, sha256.New)

	return &Encryptor{key: key}
}

// Seal encrypts plaintext with AES-GCM and returns it base64-encoded.
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	if e == nil || e.key == nil {
		return plaintext, nil
	}
	if len(plaintext) == 0 {
		return nil, nil
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Open decrypts data produced by Seal. Content that is not valid base64 or
// fails authentication is returned unchanged, so a pre-encryption token file
// keeps working after a passphrase is introduced.
func (e *Encryptor) Open(data []byte) ([]byte, error) {
	if e == nil || e.key == nil {
		return data, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(decoded, data)
	if err != nil {
		return data, nil
	}
	decoded = decoded[:n]

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(decoded) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := decoded[:gcm.NonceSize()], decoded[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return data, nil
	}
	return plaintext, nil
}
