package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address format is fixed by the chain
)

const (
	// AddressHashSize is the RIPEMD160 part of an address; it is also what
	// a transaction commits to as the recipient.
	AddressHashSize = 20

	// AddressSize is the full address including the 4-byte checksum.
	AddressSize = AddressHashSize + 4
)

// Address is RIPEMD160(SHA256(pubkey)) followed by the first four bytes of
// SHA256 over that hash.
type Address [AddressSize]byte

// AddressFromPublicKey encodes a compressed public key as an address.
func AddressFromPublicKey(pub []byte) (Address, error) {
	var addr Address
	if len(pub) != PublicKeySize {
		return addr, ErrInvalidPublicKey
	}

	sum := sha256.Sum256(pub)
	h := ripemd160.New()
	h.Write(sum[:])
	copy(addr[:AddressHashSize], h.Sum(nil))

	checksum := sha256.Sum256(addr[:AddressHashSize])
	copy(addr[AddressHashSize:], checksum[:4])

	return addr, nil
}

// ParseAddress decodes a 48-character hex address and verifies its checksum.
func ParseAddress(s string) (Address, error) {
	var addr Address
	if len(s) != 2*AddressSize {
		return addr, ErrInvalidAddress
	}
	if _, err := hex.Decode(addr[:], []byte(s)); err != nil {
		return Address{}, ErrInvalidAddress
	}

	checksum := sha256.Sum256(addr[:AddressHashSize])
	if !bytes.Equal(checksum[:4], addr[AddressHashSize:]) {
		return Address{}, ErrInvalidAddress
	}

	return addr, nil
}

// Hash returns the 20 bytes a transaction commits to.
func (a Address) Hash() [AddressHashSize]byte {
	return [AddressHashSize]byte(a[:AddressHashSize])
}

// String returns the lowercase hex form used by nodes and explorers.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Wallet is a private key together with the address it controls.
type Wallet struct {
	Address    Address
	PrivateKey PrivateKey
}

// WalletFromPrivateKey derives the address for key.
func WalletFromPrivateKey(key PrivateKey) *Wallet {
	pub := key.PublicKey()
	addr, _ := AddressFromPublicKey(pub[:])

	return &Wallet{
		Address:    addr,
		PrivateKey: key,
	}
}

// WalletFromPrivateKeyHex parses a 64-character hex key and derives its address.
func WalletFromPrivateKeyHex(s string) (*Wallet, error) {
	key, err := PrivateKeyFromHex(s)
	if err != nil {
		return nil, err
	}
	return WalletFromPrivateKey(key), nil
}

// WalletFromSeed derives the key from seed bytes (see DeriveScalar).
func WalletFromSeed(seed []byte) (*Wallet, error) {
	key, err := DeriveScalar(seed)
	if err != nil {
		return nil, err
	}
	return WalletFromPrivateKey(key), nil
}

// Zero wipes the private key.
func (w *Wallet) Zero() {
	w.PrivateKey.Zero()
}
