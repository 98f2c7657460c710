package crypto

import (
	"encoding/base64"

	"github.com/fernet/fernet-go"
)

// tokens never expire; a negative ttl skips the timestamp check
const noTTL = -1

// DecryptPrivateKey opens a Fernet token produced by EncryptPrivateKey.
// Every failure (bad salt, wrong password, tampered or truncated token)
// returns ErrDecryptionFailed and nothing else.
// password must be []byte for security (caller should zero it after use)
func DecryptPrivateKey(ciphertext, password, salt []byte) ([]byte, error) {
	if len(salt) != saltLen || len(ciphertext) == 0 {
		// still derive so a malformed record costs the same as a wrong password
		key := deriveVaultKey(password, make([]byte, saltLen))
		clear(key[:])
		return nil, ErrDecryptionFailed
	}

	key := deriveVaultKey(password, salt)
	defer clear(key[:])

	plaintext := fernet.VerifyAndDecrypt(ciphertext, noTTL, []*fernet.Key{key})
	if plaintext == nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// DecodeSalt parses a stored base64 salt. A malformed salt is reported as
// ErrDecryptionFailed so callers cannot tell it apart from a wrong password.
func DecodeSalt(s string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(salt) != saltLen {
		return nil, ErrDecryptionFailed
	}
	return salt, nil
}
