package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// WartscanClient reads account history from the Wartscan explorer.
type WartscanClient struct {
	baseURL string
	client  *http.Client
}

// NewWartscanClient creates a new Wartscan client
func NewWartscanClient(baseURL string, timeout time.Duration) *WartscanClient {
	return &WartscanClient{
		baseURL: NormalizePeerURL(baseURL),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WartscanTransaction is one transfer as reported by the explorer.
// Amounts are decimal WART.
type WartscanTransaction struct {
	Hash      string      `json:"hash"`
	Timestamp int64       `json:"timestamp"` // unix seconds
	Height    int64       `json:"height"`
	Amount    json.Number `json:"amount"`
	Fee       json.Number `json:"fee"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
}

// Time returns the block time of the transaction.
func (t *WartscanTransaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// Transactions gets the transfers of address, newest first as the explorer
// returns them. An address the explorer does not know (400) has no history.
func (c *WartscanClient) Transactions(ctx context.Context, address string) ([]WartscanTransaction, error) {
	u := fmt.Sprintf("%s/accounts/transactions?address=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return []WartscanTransaction{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get transactions: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	txs, err := decodeTransactions(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}

// decodeTransactions accepts a bare array or an object wrapping it in
// "data" or "transactions".
func decodeTransactions(body []byte) ([]WartscanTransaction, error) {
	body = bytes.TrimSpace(body)
	txs := []WartscanTransaction{}

	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &txs); err != nil {
			return nil, err
		}
		return txs, nil
	}

	var wrapped struct {
		Data         []WartscanTransaction `json:"data"`
		Transactions []WartscanTransaction `json:"transactions"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	switch {
	case wrapped.Data != nil:
		return wrapped.Data, nil
	case wrapped.Transactions != nil:
		return wrapped.Transactions, nil
	}
	return txs, nil
}
