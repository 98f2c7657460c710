package model

// SendRequest represents request for POST /wallets/{address}/send
type SendRequest struct {
	ToAddress string `json:"toAddress"`
	Amount    string `json:"amount"` // WART, up to 8 decimals
	Fee       string `json:"fee"`    // WART; rounded by the node before signing
	Password  string `json:"password"`
}

// SendResponse represents response for POST /wallets/{address}/send
type SendResponse struct {
	TxHash    string `json:"txHash"`
	NonceID   uint32 `json:"nonceId"`
	PinHeight uint32 `json:"pinHeight"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"` // after rounding
}
