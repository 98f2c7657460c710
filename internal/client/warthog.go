package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WarthogClient talks to a Warthog node's HTTP API.
// No request is retried.
type WarthogClient struct {
	baseURL string
	client  *http.Client
}

// NewWarthogClient creates a client for the node at peerURL.
func NewWarthogClient(peerURL string, timeout time.Duration) *WarthogClient {
	return &WarthogClient{
		baseURL: NormalizePeerURL(peerURL),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NormalizePeerURL trims whitespace and trailing slashes ("http://node:3000/" -> "http://node:3000").
func NormalizePeerURL(peerURL string) string {
	return strings.TrimRight(strings.TrimSpace(peerURL), "/")
}

// NodeError is a response the node answered with a non-zero code.
type NodeError struct {
	Code    int
	Message string
}

func (e *NodeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("node returned code %d", e.Code)
	}
	return fmt.Sprintf("node returned code %d: %s", e.Code, e.Message)
}

// nodeResponse is the envelope every node endpoint answers with.
type nodeResponse[T any] struct {
	Code  int    `json:"code"`
	Data  *T     `json:"data"`
	Error string `json:"error"`
}

// ChainHead is the pin a new transaction commits to.
type ChainHead struct {
	PinHash   [32]byte
	PinHeight uint32
}

type chainHeadData struct {
	PinHash   string `json:"pinHash"`
	PinHeight uint32 `json:"pinHeight"`
}

// ChainHead fetches the current pin hash and height.
func (c *WarthogClient) ChainHead(ctx context.Context) (*ChainHead, error) {
	var resp nodeResponse[chainHeadData]
	if err := c.get(ctx, "/chain/head", &resp); err != nil {
		return nil, fmt.Errorf("failed to get chain head: %w", err)
	}
	data, err := unwrap(&resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain head: %w", err)
	}
	if data.PinHash == "" || data.PinHeight == 0 {
		return nil, fmt.Errorf("invalid chain head response")
	}

	raw, err := hex.DecodeString(data.PinHash)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("invalid pin hash %q", data.PinHash)
	}

	return &ChainHead{
		PinHash:   [32]byte(raw),
		PinHeight: data.PinHeight,
	}, nil
}

type roundedFeeData struct {
	RoundedE8 *json.Number `json:"roundedE8"`
}

// RoundFee returns feeE8 after the node's 16-bit encode/decode round-trip,
// which is the only fee value a node accepts.
func (c *WarthogClient) RoundFee(ctx context.Context, feeE8 uint64) (uint64, error) {
	var resp nodeResponse[roundedFeeData]
	path := "/tools/encode16bit/from_e8/" + strconv.FormatUint(feeE8, 10)
	if err := c.get(ctx, path, &resp); err != nil {
		return 0, fmt.Errorf("failed to round fee: %w", err)
	}
	data, err := unwrap(&resp)
	if err != nil {
		return 0, fmt.Errorf("failed to round fee: %w", err)
	}
	if data.RoundedE8 == nil {
		return 0, fmt.Errorf("invalid fee rounding response")
	}

	rounded, err := parseE8(*data.RoundedE8)
	if err != nil {
		return 0, fmt.Errorf("invalid fee rounding response: %w", err)
	}
	return rounded, nil
}

// SubmitRequest is the body of POST /transaction/add.
type SubmitRequest struct {
	PinHeight   uint32 `json:"pinHeight"`
	NonceID     uint32 `json:"nonceId"`
	ToAddr      string `json:"toAddr"`
	AmountE8    uint64 `json:"amountE8"`
	FeeE8       uint64 `json:"feeE8"`
	Signature65 string `json:"signature65"`
}

type submitData struct {
	TxHash string `json:"txHash"`
}

// SubmitTransaction posts a signed transaction and returns its hash.
func (c *WarthogClient) SubmitTransaction(ctx context.Context, req *SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/add", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp nodeResponse[submitData]
	if err := c.do(httpReq, &resp); err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	data, err := unwrap(&resp)
	if err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	return data.TxHash, nil
}

type balanceData struct {
	Address   string      `json:"address"`
	Balance   string      `json:"balance"`
	BalanceE8 json.Number `json:"balanceE8"`
}

// Balance returns the confirmed balance of address in E8 units.
func (c *WarthogClient) Balance(ctx context.Context, address string) (uint64, error) {
	var resp nodeResponse[balanceData]
	if err := c.get(ctx, "/account/"+url.PathEscape(address)+"/balance", &resp); err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	data, err := unwrap(&resp)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := parseE8(data.BalanceE8)
	if err != nil {
		return 0, fmt.Errorf("invalid balance response: %w", err)
	}
	return balance, nil
}

func (c *WarthogClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// do decodes the JSON body whatever the status; nodes report most
// failures in the envelope rather than the status line.
func (c *WarthogClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func unwrap[T any](resp *nodeResponse[T]) (*T, error) {
	if resp.Code != 0 || resp.Error != "" {
		return nil, &NodeError{Code: resp.Code, Message: resp.Error}
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("empty response")
	}
	return resp.Data, nil
}

// parseE8 accepts integer and float JSON numbers, rounding the latter.
func parseE8(n json.Number) (uint64, error) {
	if v, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f < 0 || f >= math.MaxUint64 || math.IsNaN(f) {
		return 0, fmt.Errorf("amount %s out of range", n)
	}
	return uint64(math.Round(f)), nil
}
