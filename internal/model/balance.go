package model

// BalanceResponse represents response for GET /wallets/{address}/balance
type BalanceResponse struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"` // WART, 8 decimals
	BalanceE8 uint64 `json:"balanceE8"`
	PriceUSD  string `json:"priceUsd"` // "0" when the price is unavailable
	ValueUSD  string `json:"valueUsd"`
}
