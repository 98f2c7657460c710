package model

import "time"

// WalletRecord is a wallet as persisted in the store.
// The private key only ever appears here encrypted.
type WalletRecord struct {
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	EncryptedKey string    `json:"pk"`   // Fernet token
	Salt         string    `json:"salt"` // base64, 16 bytes
	Scheme       string    `json:"scheme,omitempty"`
	LastBalance  string    `json:"lastBalance"`
	LastModified time.Time `json:"lastModified"`
}

// WalletSummary is what the API exposes about a stored wallet.
type WalletSummary struct {
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	LastBalance  string    `json:"lastBalance"`
	LastModified time.Time `json:"lastModified"`
}

// Summary drops the encrypted key material.
func (r *WalletRecord) Summary() WalletSummary {
	return WalletSummary{
		Address:      r.Address,
		Name:         r.Name,
		LastBalance:  r.LastBalance,
		LastModified: r.LastModified,
	}
}
