package model

import (
	"fmt"
	"time"

	"github.com/AlexZinkM/wartlock/internal/common"
)

// TransactionDirection is seen from the wallet's side
type TransactionDirection string

const (
	DirectionIn  TransactionDirection = "IN"
	DirectionOut TransactionDirection = "OUT"
)

// Transaction represents a transaction
type Transaction struct {
	Direction TransactionDirection `json:"direction"`
	Hash      string               `json:"hash"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Amount    string               `json:"amount"`
	Fee       string               `json:"fee"`
	Timestamp time.Time            `json:"timestamp"`
	Height    int64                `json:"height"`
}

// TransactionsResponse represents response for GET /wallets/{address}/transactions
type TransactionsResponse struct {
	Address       string        `json:"address"`
	TotalReceived string        `json:"totalReceived"`
	TotalSent     string        `json:"totalSent"`
	Transactions  []Transaction `json:"transactions"`
}

// TransactionsRequest represents filter parameters for GET /wallets/{address}/transactions
type TransactionsRequest struct {
	Direction *TransactionDirection
	Hash      *string
	From      *time.Time
	To        *time.Time
	MinAmount *string
	MaxAmount *string
}

// Validate validates TransactionsRequest filter parameters.
func (r *TransactionsRequest) Validate() error {
	if r.Direction != nil && *r.Direction != DirectionIn && *r.Direction != DirectionOut {
		return fmt.Errorf("direction must be IN or OUT")
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to date must be after or equal to from date")
	}
	for _, amount := range []*string{r.MinAmount, r.MaxAmount} {
		if amount == nil {
			continue
		}
		if _, err := common.WARTToE8(*amount); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
	}
	if r.MinAmount != nil && r.MaxAmount != nil {
		cmp, err := common.CompareWARTAmounts(*r.MinAmount, *r.MaxAmount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		if cmp == 1 {
			return fmt.Errorf("minAmount must be less than or equal to maxAmount")
		}
	}
	return nil
}
