package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// PrivateKeySize is the length of a serialized secp256k1 scalar.
	PrivateKeySize = 32

	// PublicKeySize is the length of a compressed secp256k1 point.
	PublicKeySize = 33
)

// PrivateKey is a secp256k1 scalar in [1, N), big-endian.
// It formats as "[redacted]" so it cannot end up in logs by accident;
// use Hex to get the key material.
type PrivateKey [PrivateKeySize]byte

// PublicKey is a compressed secp256k1 point.
type PublicKey [PublicKeySize]byte

// PrivateKeyFromHex parses a 64-character hex string and checks the scalar range.
func PrivateKeyFromHex(s string) (PrivateKey, error) {
	var key PrivateKey

	if len(s) != 2*PrivateKeySize {
		return key, ErrInvalidPrivateKeyFormat
	}
	if _, err := hex.Decode(key[:], []byte(s)); err != nil {
		return PrivateKey{}, ErrInvalidPrivateKeyFormat
	}

	if err := key.validate(); err != nil {
		key.Zero()
		return PrivateKey{}, err
	}

	return key, nil
}

// PrivateKeyFromBytes copies a 32-byte scalar and checks its range.
func PrivateKeyFromBytes(b []byte) (PrivateKey, error) {
	var key PrivateKey
	if len(b) != PrivateKeySize {
		return key, ErrInvalidPrivateKeyFormat
	}
	copy(key[:], b)

	if err := key.validate(); err != nil {
		key.Zero()
		return PrivateKey{}, err
	}

	return key, nil
}

// validate rejects 0 and anything >= N
func (k *PrivateKey) validate() error {
	var s btcec.ModNScalar
	b := [PrivateKeySize]byte(*k)
	overflow := s.SetBytes(&b)
	clear(b[:])
	defer s.Zero()

	if overflow != 0 || s.IsZero() {
		return ErrInvalidScalarRange
	}
	return nil
}

// Hex returns the lowercase hex form of the key. This is the only way the
// key leaves the package as text.
func (k PrivateKey) Hex() string {
	return hex.EncodeToString(k[:])
}

// Zero wipes the key.
func (k *PrivateKey) Zero() {
	clear(k[:])
}

// String implements fmt.Stringer without exposing key material.
func (k PrivateKey) String() string {
	return "[redacted]"
}

// GoString implements fmt.GoStringer without exposing key material.
func (k PrivateKey) GoString() string {
	return "crypto.PrivateKey([redacted])"
}

// PublicKey derives the compressed public key.
func (k PrivateKey) PublicKey() PublicKey {
	priv := k.btcec()
	defer priv.Zero()

	var pub PublicKey
	copy(pub[:], priv.PubKey().SerializeCompressed())
	return pub
}

// btcec converts the key for the curve library. Callers must Zero the result.
func (k PrivateKey) btcec() *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(k[:])
	return priv
}

// PublicKeyFromBytes checks that b is a 33-byte point on the curve.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pub PublicKey
	if len(b) != PublicKeySize {
		return pub, ErrInvalidPublicKey
	}
	if _, err := btcec.ParsePubKey(b); err != nil {
		return pub, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	copy(pub[:], b)
	return pub, nil
}

// Hex returns the lowercase hex form of the compressed point.
func (p PublicKey) Hex() string {
	return hex.EncodeToString(p[:])
}

// String implements fmt.Stringer.
func (p PublicKey) String() string {
	return p.Hex()
}
