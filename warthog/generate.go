package warthog

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/internal/model"
	"github.com/AlexZinkM/wartlock/internal/store"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const maxNameLen = 64

var (
	// ErrInvalidWalletName is returned for an empty or overlong wallet name.
	ErrInvalidWalletName = fmt.Errorf("wallet name must be 1 to %d characters", maxNameLen)

	// ErrEmptyPassword is returned when a wallet would be encrypted without a password.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// CreateWallet generates a new phrase, derives its wallet and stores the
// encrypted key. The phrase is returned to be shown once; it is never stored.
// strength 0 means crypto.DefaultMnemonicStrength.
// password must be []byte for security (caller should zero it after use)
func (s *Service) CreateWallet(name string, password []byte, strength int) (mnemonic, address string, err error) {
	if strength == 0 {
		strength = crypto.DefaultMnemonicStrength
	}
	name, err = validateNew(name, password)
	if err != nil {
		return "", "", err
	}

	mnemonic, err = crypto.GenerateMnemonic(strength)
	if err != nil {
		return "", "", err
	}

	wallet, err := crypto.WalletFromMnemonic(mnemonic)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive wallet: %w", err)
	}
	defer wallet.Zero()

	if err := s.saveWallet(name, wallet, crypto.SchemePRNGv1, password); err != nil {
		return "", "", err
	}

	return mnemonic, wallet.Address.String(), nil
}

// RecoverWallet stores the wallet controlled by an existing phrase.
// password must be []byte for security (caller should zero it after use)
func (s *Service) RecoverWallet(name, mnemonic string, password []byte) (string, error) {
	name, err := validateNew(name, password)
	if err != nil {
		return "", err
	}

	wallet, err := crypto.WalletFromMnemonic(mnemonic)
	if err != nil {
		return "", err
	}
	defer wallet.Zero()

	if err := s.saveWallet(name, wallet, crypto.SchemePRNGv1, password); err != nil {
		return "", err
	}
	return wallet.Address.String(), nil
}

// ImportWallet stores a wallet from a raw 64-character hex private key.
// password must be []byte for security (caller should zero it after use)
func (s *Service) ImportWallet(name, privateKeyHex string, password []byte) (string, error) {
	name, err := validateNew(name, password)
	if err != nil {
		return "", err
	}

	wallet, err := crypto.WalletFromPrivateKeyHex(strings.TrimSpace(privateKeyHex))
	if err != nil {
		return "", err
	}
	defer wallet.Zero()

	// imported keys have no derivation scheme
	if err := s.saveWallet(name, wallet, "", password); err != nil {
		return "", err
	}
	return wallet.Address.String(), nil
}

func validateNew(name string, password []byte) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return "", ErrInvalidWalletName
	}
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	return name, nil
}

// saveWallet encrypts the hex form of the key, the plaintext format every
// stored wallet uses, and inserts the record.
func (s *Service) saveWallet(name string, wallet *crypto.Wallet, scheme string, password []byte) error {
	address := wallet.Address.String()

	// skip the key stretching when the insert is bound to fail
	if _, err := s.store.Wallet(address); err == nil {
		return &store.WalletExistsError{Address: address}
	}

	plaintext := []byte(wallet.PrivateKey.Hex())
	defer clear(plaintext)

	envelope, err := crypto.EncryptPrivateKey(plaintext, password)
	if err != nil {
		return err
	}

	rec := &model.WalletRecord{
		Address:      address,
		Name:         name,
		EncryptedKey: string(envelope.Ciphertext),
		Salt:         envelope.SaltBase64(),
		Scheme:       scheme,
		LastBalance:  "0.00000000",
	}
	if err := s.store.InsertWallet(rec); err != nil {
		return err
	}

	s.log.Info("wallet stored", zap.String("address", address), zap.String("name", name))
	return nil
}

// ReceiveQR returns a stored wallet's address with its QR code.
func (s *Service) ReceiveQR(address string) (*model.ReceiveResponse, error) {
	if _, err := s.store.Wallet(address); err != nil {
		return nil, err
	}

	qrCode, err := generateQRCode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &model.ReceiveResponse{
		Address: address,
		QRCode:  qrCode,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
