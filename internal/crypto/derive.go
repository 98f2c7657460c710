package crypto

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
)

// SchemePRNGv1 names the derivation implemented by DeriveScalar. It is stored
// with every wallet so a different scheme can be introduced later without
// silently deriving other keys for existing phrases.
const SchemePRNGv1 = "prng-v1"

// maxDraws bounds the rejection loop. Each draw is rejected with probability
// about 1/2 (guard bit), so reaching this is not a practical outcome.
const maxDraws = 1 << 12

// DeriveScalar maps seed bytes to a private key by rejection sampling over
// a Stream: each draw is one guard byte followed by 32 bytes. The low bit of
// the guard byte is the 257th bit of the candidate, so a set bit rejects the
// draw outright. A candidate g with 1 <= g and g+1 < N yields g+1.
func DeriveScalar(seed []byte) (PrivateKey, error) {
	stream := NewStream(seed)

	var one btcec.ModNScalar
	one.SetInt(1)

	var guard [1]byte
	var guess [PrivateKeySize]byte
	defer clear(guess[:])

	for range maxDraws {
		_, _ = stream.Read(guard[:])
		_, _ = stream.Read(guess[:])

		if guard[0]&1 == 1 {
			continue
		}

		var g btcec.ModNScalar
		if overflow := g.SetBytes(&guess); overflow != 0 || g.IsZero() {
			continue
		}
		// N-1 would wrap to zero
		if g.Add(&one).IsZero() {
			continue
		}

		key, err := roundTrip(&g)
		g.Zero()
		if err != nil {
			return PrivateKey{}, err
		}
		return key, nil
	}

	return PrivateKey{}, ErrStreamExhausted
}

// roundTrip re-encodes the scalar through the curve library's private key
// constructor and requires the result to match byte for byte.
func roundTrip(s *btcec.ModNScalar) (PrivateKey, error) {
	raw := s.Bytes()
	defer clear(raw[:])

	priv, _ := btcec.PrivKeyFromBytes(raw[:])
	defer priv.Zero()

	serialized := priv.Serialize()
	defer clear(serialized)

	if !bytes.Equal(serialized, raw[:]) {
		return PrivateKey{}, ErrInvalidScalarRange
	}

	return PrivateKey(raw), nil
}
