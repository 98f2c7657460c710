package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2 parameters for the key vault.
	// The round count matches wallets already stored by earlier releases and
	// must not be lowered; a higher count would need a record version.
	pbkdf2Iterations = 480000
	vaultKeyLen      = 32
	saltLen          = 16
)

// Envelope is an encrypted private key as stored by the wallet store.
// Ciphertext is a Fernet token (version, timestamp, IV and HMAC embedded).
type Envelope struct {
	Ciphertext []byte
	Salt       []byte
}

// SaltBase64 returns the salt in the standard base64 form used in storage.
func (e *Envelope) SaltBase64() string {
	return base64.StdEncoding.EncodeToString(e.Salt)
}

// EncryptPrivateKey encrypts plaintext under a key derived from password and a fresh salt.
// password must be []byte for security (caller should zero it after use)
func EncryptPrivateKey(plaintext, password []byte) (*Envelope, error) {
	// Generate salt
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveVaultKey(password, salt)
	defer clear(key[:])

	token, err := fernet.EncryptAndSign(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	return &Envelope{
		Ciphertext: token,
		Salt:       salt,
	}, nil
}

// deriveVaultKey runs PBKDF2-HMAC-SHA256 over password and salt.
// The first half of a Fernet key signs, the second half encrypts.
func deriveVaultKey(password, salt []byte) *fernet.Key {
	derived := pbkdf2.Key(password, salt, pbkdf2Iterations, vaultKeyLen, sha256.New)
	defer clear(derived)

	key := new(fernet.Key)
	copy(key[:], derived)
	return key
}
