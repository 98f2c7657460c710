package crypto

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultMnemonicStrength gives a 24-word phrase.
const DefaultMnemonicStrength = 256

// GenerateMnemonic creates a new BIP-39 phrase with strength bits of entropy.
// Allowed strengths are 128, 160, 192, 224 and 256.
func GenerateMnemonic(strength int) (string, error) {
	if strength < 128 || strength > 256 || strength%32 != 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidStrength, strength)
	}

	entropy, err := bip39.NewEntropy(strength)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace so pasted phrases hash the same.
func NormalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}

// MnemonicToSeed validates the phrase and stretches it into the 64-byte seed
// (PBKDF2-HMAC-SHA512, 2048 rounds, salt "mnemonic"+passphrase).
func MnemonicToSeed(phrase, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(phrase), passphrase)
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	return seed, nil
}

// WalletFromMnemonic derives the wallet a phrase controls, with an empty passphrase.
func WalletFromMnemonic(phrase string) (*Wallet, error) {
	seed, err := MnemonicToSeed(phrase, "")
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	return WalletFromSeed(seed)
}
