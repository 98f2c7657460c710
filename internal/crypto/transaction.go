package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	// SigningBytesSize is the length of the buffer that is hashed and signed.
	SigningBytesSize = 32 + 4 + 4 + 3 + 8 + AddressHashSize + 8

	// SignatureSize is r || s || recovery id.
	SignatureSize = 65

	// compactHeader is the btcec compact signature magic for compressed keys.
	compactHeader = 27 + 4
)

// Transaction is a transfer ready to be signed. FeeE8 must already be the
// node-rounded value; it is signed and submitted as is.
type Transaction struct {
	PinHash   [32]byte
	PinHeight uint32
	NonceID   uint32
	FeeE8     uint64
	To        Address
	AmountE8  uint64
}

// SigningBytes returns the 79-byte big-endian layout the node verifies:
// pinHash | pinHeight | nonceId | 3 zero bytes | feeE8 | recipient[:20] | amountE8.
func (t *Transaction) SigningBytes() []byte {
	b := make([]byte, 0, SigningBytesSize)
	b = append(b, t.PinHash[:]...)
	b = binary.BigEndian.AppendUint32(b, t.PinHeight)
	b = binary.BigEndian.AppendUint32(b, t.NonceID)
	b = append(b, 0, 0, 0)
	b = binary.BigEndian.AppendUint64(b, t.FeeE8)
	b = append(b, t.To[:AddressHashSize]...)
	b = binary.BigEndian.AppendUint64(b, t.AmountE8)
	return b
}

// Digest is SHA256 over SigningBytes.
func (t *Transaction) Digest() [32]byte {
	return sha256.Sum256(t.SigningBytes())
}

// Sign signs the transaction digest with key.
func (t *Transaction) Sign(key PrivateKey) (Signature, error) {
	return SignDigest(key, t.Digest())
}

// Signature is r(32) || s(32) || recovery id(1). s is always in the lower half of the order.
type Signature [SignatureSize]byte

// SignDigest produces a recoverable, low-s ECDSA signature over digest.
func SignDigest(key PrivateKey, digest [32]byte) (Signature, error) {
	var sig Signature

	if err := key.validate(); err != nil {
		return sig, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	priv := key.btcec()
	defer priv.Zero()

	compact := ecdsa.SignCompact(priv, digest[:], true)
	if len(compact) != SignatureSize || compact[0] < compactHeader || compact[0] > compactHeader+3 {
		return sig, ErrSigning
	}
	recID := compact[0] - compactHeader

	var r, s btcec.ModNScalar
	if r.SetByteSlice(compact[1:33]) || r.IsZero() {
		return sig, ErrSigning
	}
	if s.SetByteSlice(compact[33:65]) || s.IsZero() {
		return sig, ErrSigning
	}

	recID = normalizeLowS(&s, recID)

	r.PutBytesUnchecked(sig[0:32])
	s.PutBytesUnchecked(sig[32:64])
	sig[64] = recID

	return sig, nil
}

// normalizeLowS replaces s with N-s when s > N/2 and flips the recovery id
// to match. The node accepts only the low-s form; SignCompact already
// produces it, this keeps the output canonical if that ever changes.
func normalizeLowS(s *btcec.ModNScalar, recID byte) byte {
	if s.IsOverHalfOrder() {
		s.Negate()
		recID ^= 1
	}
	return recID
}

// SignatureFromHex parses the 130-character hex form.
func SignatureFromHex(s string) (Signature, error) {
	var sig Signature
	if len(s) != 2*SignatureSize {
		return sig, fmt.Errorf("invalid signature length %d", len(s))
	}
	if _, err := hex.Decode(sig[:], []byte(s)); err != nil {
		return Signature{}, fmt.Errorf("invalid signature: %w", err)
	}
	return sig, nil
}

// R returns the r component.
func (s Signature) R() [32]byte { return [32]byte(s[0:32]) }

// S returns the s component.
func (s Signature) S() [32]byte { return [32]byte(s[32:64]) }

// RecoveryID returns the recovery id.
func (s Signature) RecoveryID() byte { return s[64] }

// Hex returns the lowercase hex form embedded in submitted transactions.
func (s Signature) Hex() string {
	return hex.EncodeToString(s[:])
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	return s.Hex()
}

// IsLowS reports whether s <= N/2.
func (s Signature) IsLowS() bool {
	var sc btcec.ModNScalar
	overflow := sc.SetByteSlice(s[32:64])
	return !overflow && !sc.IsOverHalfOrder()
}

// RecoverPublicKey returns the public key that produced sig over digest.
func RecoverPublicKey(sig Signature, digest [32]byte) (PublicKey, error) {
	var pub PublicKey
	if sig[64] > 3 {
		return pub, fmt.Errorf("invalid recovery id %d", sig[64])
	}

	compact := make([]byte, SignatureSize)
	compact[0] = compactHeader + sig[64]
	copy(compact[1:], sig[:64])

	key, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return pub, fmt.Errorf("failed to recover public key: %w", err)
	}

	copy(pub[:], key.SerializeCompressed())
	return pub, nil
}

// Verify checks sig over digest against pub.
func Verify(sig Signature, digest [32]byte, pub PublicKey) bool {
	key, err := btcec.ParsePubKey(pub[:])
	if err != nil {
		return false
	}

	var r, s btcec.ModNScalar
	if r.SetByteSlice(sig[0:32]) || s.SetByteSlice(sig[32:64]) {
		return false
	}

	return ecdsa.NewSignature(&r, &s).Verify(digest[:], key)
}
