package warthog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AlexZinkM/wartlock/internal/common"
	"github.com/AlexZinkM/wartlock/internal/model"
)

// GetTransactions gets a stored wallet's transfers from the explorer,
// filtered by req (nil means no filter), newest first.
func (s *Service) GetTransactions(ctx context.Context, address string, req *model.TransactionsRequest) (*model.TransactionsResponse, error) {
	if req == nil {
		req = &model.TransactionsRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Wallet(address); err != nil {
		return nil, err
	}

	var minE8, maxE8 *uint64
	if req.MinAmount != nil {
		v, _ := common.WARTToE8(*req.MinAmount)
		minE8 = &v
	}
	if req.MaxAmount != nil {
		v, _ := common.WARTToE8(*req.MaxAmount)
		maxE8 = &v
	}

	history, err := s.history.Transactions(ctx, address)
	if err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, 0, len(history))
	var receivedE8, sentE8 uint64

	for i := range history {
		tx := &history[i]

		amountE8, err := explorerE8(tx.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in transaction %s: %w", tx.Hash, err)
		}
		feeE8, err := explorerE8(tx.Fee)
		if err != nil {
			return nil, fmt.Errorf("invalid fee in transaction %s: %w", tx.Hash, err)
		}

		direction := model.DirectionOut
		if strings.EqualFold(tx.Recipient, address) && !strings.EqualFold(tx.Sender, address) {
			direction = model.DirectionIn
		}

		// Filter by direction
		if req.Direction != nil && *req.Direction != direction {
			continue
		}

		// Filter by hash
		if req.Hash != nil && !strings.EqualFold(*req.Hash, tx.Hash) {
			continue
		}

		// Filter by dates
		timestamp := tx.Time()
		if req.From != nil && timestamp.Before(*req.From) {
			continue
		}
		if req.To != nil && timestamp.After(*req.To) {
			continue
		}

		// Filter by amount (integer comparison, no float precision issues)
		if minE8 != nil && amountE8 < *minE8 {
			continue
		}
		if maxE8 != nil && amountE8 > *maxE8 {
			continue
		}

		if direction == model.DirectionIn {
			receivedE8 += amountE8
		} else {
			sentE8 += amountE8
		}

		transactions = append(transactions, model.Transaction{
			Direction: direction,
			Hash:      tx.Hash,
			From:      tx.Sender,
			To:        tx.Recipient,
			Amount:    common.E8ToWART(amountE8),
			Fee:       common.E8ToWART(feeE8),
			Timestamp: timestamp,
			Height:    tx.Height,
		})
	}

	// Sort by time DESC (newest first)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})

	return &model.TransactionsResponse{
		Address:       address,
		TotalReceived: common.E8ToWART(receivedE8),
		TotalSent:     common.E8ToWART(sentE8),
		Transactions:  transactions,
	}, nil
}

// explorerE8 converts an explorer amount in WART to E8. Decimal strings are
// exact; JSON floats (including exponent forms) are rounded to the nearest E8.
func explorerE8(n json.Number) (uint64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := common.WARTToE8(n.String()); err == nil {
		return v, nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	e8 := math.Round(f * math.Pow10(common.WARTDecimals))
	if e8 < 0 || e8 >= math.MaxUint64 || math.IsNaN(e8) {
		return 0, fmt.Errorf("amount %s out of range", n)
	}
	return uint64(e8), nil
}
