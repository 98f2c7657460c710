package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: NormalizePeerURL(baseURL),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// PriceResponse response from CoinGecko API
type PriceResponse struct {
	Warthog struct {
		USD float64 `json:"usd"`
	} `json:"warthog"`
}

// WARTPriceUSD gets the WART/USD price
func (c *CoinGeckoClient) WARTPriceUSD(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=warthog&vs_currencies=usd", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to get price: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return 0, fmt.Errorf("failed to decode price: %w", err)
	}

	return priceResp.Warthog.USD, nil
}
