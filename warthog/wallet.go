package warthog

import (
	"encoding/hex"
	"strings"

	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/internal/model"

	"go.uber.org/zap"
)

// UnlockWallet decrypts a stored wallet's private key. A key that decrypts
// but does not control the stored address is treated like a wrong password.
// The caller must Zero the returned key.
// password must be []byte for security (caller should zero it after use)
func (s *Service) UnlockWallet(address string, password []byte) (crypto.PrivateKey, error) {
	rec, err := s.store.Wallet(address)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	return unlockRecord(rec, password)
}

func unlockRecord(rec *model.WalletRecord, password []byte) (crypto.PrivateKey, error) {
	// a bad salt still goes through the key stretching inside DecryptPrivateKey
	salt, err := crypto.DecodeSalt(rec.Salt)
	if err != nil {
		salt = nil
	}

	plaintext, err := crypto.DecryptPrivateKey([]byte(rec.EncryptedKey), password, salt)
	if err != nil {
		return crypto.PrivateKey{}, crypto.ErrDecryptionFailed
	}
	defer clear(plaintext)

	var raw [crypto.PrivateKeySize]byte
	defer clear(raw[:])
	if len(plaintext) != hex.EncodedLen(len(raw)) {
		return crypto.PrivateKey{}, crypto.ErrDecryptionFailed
	}
	if _, err := hex.Decode(raw[:], plaintext); err != nil {
		return crypto.PrivateKey{}, crypto.ErrDecryptionFailed
	}

	key, err := crypto.PrivateKeyFromBytes(raw[:])
	if err != nil {
		return crypto.PrivateKey{}, crypto.ErrDecryptionFailed
	}

	wallet := crypto.WalletFromPrivateKey(key)
	if !strings.EqualFold(wallet.Address.String(), rec.Address) {
		wallet.Zero()
		key.Zero()
		return crypto.PrivateKey{}, crypto.ErrDecryptionFailed
	}
	wallet.Zero()

	return key, nil
}

// ChangePassword re-encrypts a stored key under newPassword with a fresh salt.
// passwords must be []byte for security (caller should zero them after use)
func (s *Service) ChangePassword(address string, oldPassword, newPassword []byte) error {
	if len(newPassword) == 0 {
		return ErrEmptyPassword
	}

	key, err := s.UnlockWallet(address, oldPassword)
	if err != nil {
		return err
	}
	defer key.Zero()

	plaintext := []byte(key.Hex())
	defer clear(plaintext)

	envelope, err := crypto.EncryptPrivateKey(plaintext, newPassword)
	if err != nil {
		return err
	}

	err = s.store.UpdateWallet(address, func(rec *model.WalletRecord) error {
		rec.EncryptedKey = string(envelope.Ciphertext)
		rec.Salt = envelope.SaltBase64()
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("wallet password changed", zap.String("address", address))
	return nil
}

// Wallets lists stored wallets without their key material.
func (s *Service) Wallets() ([]model.WalletSummary, error) {
	records, err := s.store.Wallets()
	if err != nil {
		return nil, err
	}

	wallets := make([]model.WalletSummary, 0, len(records))
	for i := range records {
		wallets = append(wallets, records[i].Summary())
	}
	return wallets, nil
}

// RenameWallet changes a stored wallet's display name.
func (s *Service) RenameWallet(address, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return ErrInvalidWalletName
	}
	return s.store.UpdateWalletName(address, name)
}

// DeleteWallet removes a stored wallet. Funds stay recoverable from the phrase.
func (s *Service) DeleteWallet(address string) error {
	if err := s.store.DeleteWallet(address); err != nil {
		return err
	}
	s.log.Info("wallet deleted", zap.String("address", address))
	return nil
}
