package crypto_test

import (
	"testing"

	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/stretchr/testify/require"
)

// A token in the stored wallet format, produced outside this package:
// PBKDF2-SHA256(480000) over "correct horse" with salt 00..0f, Fernet with a
// fixed IV and timestamp.
const (
	legacyToken = "gAAAAABlU_EABwcHBwcHBwcHBwcHBwcHBw18xTWxLQGVBSN1brZdRMW39ceGm9mLxB9yZilpQIjQ-ei_wwODj86l8mDzwKrmwjZN7vKQ0SphXAz-5Y1sJT7Vb0Z-XzIcHJKyGUabej8aS5V0x5okxY6NCkQs4esxfEqKVizeF635opmUAEOcQas="
	legacySalt  = "AAECAwQFBgcICQoLDA0ODw=="
)

func TestDecryptStoredToken(t *testing.T) {
	t.Parallel()

	salt, err := crypto.DecodeSalt(legacySalt)
	require.NoError(t, err)

	plaintext, err := crypto.DecryptPrivateKey([]byte(legacyToken), []byte("correct horse"), salt)
	require.NoError(t, err)
	require.Equal(t, derivationVectors[0].privateKey, string(plaintext))

	_, err = crypto.DecryptPrivateKey([]byte(legacyToken), []byte("wrong horse"), salt)
	require.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestEncryptDecryptPrivateKey(t *testing.T) {
	t.Parallel()

	key, err := crypto.PrivateKeyFromHex(derivationVectors[1].privateKey)
	require.NoError(t, err)
	password := []byte("password")

	env, err := crypto.EncryptPrivateKey(key[:], password)
	require.NoError(t, err)
	require.Len(t, env.Salt, 16)
	require.NotContains(t, string(env.Ciphertext), key.Hex())

	plaintext, err := crypto.DecryptPrivateKey(env.Ciphertext, password, env.Salt)
	require.NoError(t, err)
	require.Equal(t, key[:], plaintext)

	// round-trip through the stored salt form
	salt, err := crypto.DecodeSalt(env.SaltBase64())
	require.NoError(t, err)
	require.Equal(t, env.Salt, salt)

	// fresh salt every call
	env2, err := crypto.EncryptPrivateKey(key[:], password)
	require.NoError(t, err)
	require.NotEqual(t, env.Salt, env2.Salt)
	require.NotEqual(t, env.Ciphertext, env2.Ciphertext)
}

func TestDecryptPrivateKeyFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	password := []byte("password")
	env, err := crypto.EncryptPrivateKey([]byte("secret"), password)
	require.NoError(t, err)

	tampered := append([]byte(nil), env.Ciphertext...)
	tampered[len(tampered)/2] ^= 'A' ^ 'B'

	otherSalt := append([]byte(nil), env.Salt...)
	otherSalt[0] ^= 1

	cases := []struct {
		name       string
		ciphertext []byte
		password   []byte
		salt       []byte
	}{
		{name: "wrong password", ciphertext: env.Ciphertext, password: []byte("passw0rd"), salt: env.Salt},
		{name: "empty password", ciphertext: env.Ciphertext, password: nil, salt: env.Salt},
		{name: "wrong salt", ciphertext: env.Ciphertext, password: password, salt: otherSalt},
		{name: "short salt", ciphertext: env.Ciphertext, password: password, salt: env.Salt[:8]},
		{name: "tampered", ciphertext: tampered, password: password, salt: env.Salt},
		{name: "truncated", ciphertext: env.Ciphertext[:20], password: password, salt: env.Salt},
		{name: "empty", ciphertext: nil, password: password, salt: env.Salt},
		{name: "garbage", ciphertext: []byte("not a token"), password: password, salt: env.Salt},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			plaintext, err := crypto.DecryptPrivateKey(c.ciphertext, c.password, c.salt)
			require.Nil(t, plaintext)
			require.Equal(t, crypto.ErrDecryptionFailed, err)
		})
	}
}

func TestDecodeSaltErrors(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "!!!", "AAECAw=="} {
		_, err := crypto.DecodeSalt(s)
		require.Equal(t, crypto.ErrDecryptionFailed, err, s)
	}
}
