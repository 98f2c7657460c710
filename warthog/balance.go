package warthog

import (
	"context"
	"strconv"

	"github.com/AlexZinkM/wartlock/internal/common"
	"github.com/AlexZinkM/wartlock/internal/model"

	"go.uber.org/zap"
)

// GetBalance gets a stored wallet's balance from the node and its USD value.
// An unavailable price is reported as 0 rather than failing the call.
// The balance is cached on the wallet record.
func (s *Service) GetBalance(ctx context.Context, address string) (*model.BalanceResponse, error) {
	if _, err := s.store.Wallet(address); err != nil {
		return nil, err
	}

	node, err := s.node()
	if err != nil {
		return nil, err
	}

	balanceE8, err := node.Balance(ctx, address)
	if err != nil {
		return nil, err
	}

	price, err := s.prices.WARTPriceUSD(ctx)
	if err != nil {
		s.log.Warn("WART price unavailable", zap.Error(err))
		price = 0
	}

	// Convert to display strings (no float precision loss)
	balance := common.E8ToWART(balanceE8)

	if err := s.store.UpdateLastBalance(address, balance); err != nil {
		s.log.Warn("failed to cache balance", zap.String("address", address), zap.Error(err))
	}

	// float only for display, not for anything that gets signed
	value := common.E8ToFloat(balanceE8) * price

	return &model.BalanceResponse{
		Address:   address,
		Balance:   balance,
		BalanceE8: balanceE8,
		PriceUSD:  strconv.FormatFloat(price, 'f', -1, 64),
		ValueUSD:  common.FormatUSD(value),
	}, nil
}
