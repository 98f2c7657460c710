package model

// CreateWalletRequest represents request for POST /wallets
type CreateWalletRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Strength int    `json:"strength,omitempty"` // entropy bits, defaults to 256
}

// CreateWalletResponse represents response for POST /wallets.
// The mnemonic is returned exactly once and never stored.
type CreateWalletResponse struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

// RecoverWalletRequest represents request for POST /wallets/recover
type RecoverWalletRequest struct {
	Name     string `json:"name"`
	Mnemonic string `json:"mnemonic"`
	Password string `json:"password"`
}

// ImportWalletRequest represents request for POST /wallets/import
type ImportWalletRequest struct {
	Name       string `json:"name"`
	PrivateKey string `json:"privateKey"` // 64 hex characters
	Password   string `json:"password"`
}

// WalletResponse represents response for wallet creation endpoints
type WalletResponse struct {
	Address string `json:"address"`
}

// RenameWalletRequest represents request for PUT /wallets/{address}/name
type RenameWalletRequest struct {
	Name string `json:"name"`
}

// ChangePasswordRequest represents request for POST /wallets/{address}/password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ReceiveResponse represents response for GET /wallets/{address}/receive
type ReceiveResponse struct {
	Address string `json:"address"`
	QRCode  string `json:"qrCode"` // base64 PNG
}

// PeerSettings represents request and response for /settings/peer
type PeerSettings struct {
	URL string `json:"url"`
}
