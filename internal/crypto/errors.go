package crypto

import "errors"

var (
	// ErrInvalidStrength is returned for a mnemonic strength outside 128..256 in steps of 32 bits.
	ErrInvalidStrength = errors.New("invalid mnemonic strength")

	// ErrInvalidMnemonic is returned when a phrase fails the wordlist or checksum check.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

	// ErrInvalidPrivateKeyFormat is returned when a private key is not exactly 64 hex characters.
	ErrInvalidPrivateKeyFormat = errors.New("invalid private key format: must be a 64-character hex string")

	// ErrInvalidScalarRange is returned when a private key is 0 or not below the curve order.
	ErrInvalidScalarRange = errors.New("private key out of range")

	// ErrInvalidPublicKey is returned for anything but a 33-byte compressed point.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidAddress is returned for a malformed address or a checksum mismatch.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSigning is returned when no signature could be produced.
	ErrSigning = errors.New("failed to sign transaction")

	// ErrDecryptionFailed is the only error DecryptPrivateKey returns.
	// Wrong password and corrupted data are deliberately not told apart.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrStreamExhausted is returned if key derivation draws too many times.
	ErrStreamExhausted = errors.New("key derivation stream exhausted")
)
