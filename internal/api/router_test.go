package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexZinkM/wartlock/internal/client"
	"github.com/AlexZinkM/wartlock/internal/model"
	"github.com/AlexZinkM/wartlock/internal/store"
	"github.com/AlexZinkM/wartlock/warthog"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testKeyHex  = "fc21cd6bf8b1cbcc2e7dbf767ca7fd5dc8a97f88a9941f9706cc9a34c5d18781"
	testAddress = "35af6b55fc91b0761e9ecaf96b68cbef4cf0f5893538e297"
	recipient   = "aca4916c89b8fb47784d37ad592d378897f616569d3ee0d4"
)

type stubNode struct {
	roundErr error
}

func (n *stubNode) ChainHead(context.Context) (*client.ChainHead, error) {
	return &client.ChainHead{PinHash: [32]byte{1}, PinHeight: 500}, nil
}

func (n *stubNode) RoundFee(_ context.Context, feeE8 uint64) (uint64, error) {
	if n.roundErr != nil {
		return 0, n.roundErr
	}
	return feeE8 - feeE8%16, nil
}

func (n *stubNode) SubmitTransaction(context.Context, *client.SubmitRequest) (string, error) {
	return "txhash", nil
}

func (n *stubNode) Balance(context.Context, string) (uint64, error) {
	return 250000000, nil
}

type stubPrice struct{}

func (stubPrice) WARTPriceUSD(context.Context) (float64, error) { return 2, nil }

type stubHistory struct{}

func (stubHistory) Transactions(context.Context, string) ([]client.WartscanTransaction, error) {
	return []client.WartscanTransaction{
		{Hash: "a", Timestamp: 1714521600, Amount: "1", Sender: recipient, Recipient: testAddress}, // 2024-05-01
		{Hash: "b", Timestamp: 1714608000, Amount: "2", Sender: testAddress, Recipient: recipient}, // 2024-05-02
	}, nil
}

type testServer struct {
	handler http.Handler
	node    *stubNode
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.Open("", store.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })

	node := &stubNode{}
	log := zaptest.NewLogger(t)
	svc := warthog.NewService(st, warthog.Config{DefaultPeer: "http://localhost:3000"},
		warthog.WithLogger(log),
		warthog.WithNodeDialer(func(string) warthog.Node { return node }),
		warthog.WithPriceSource(stubPrice{}),
		warthog.WithHistorySource(stubHistory{}),
	)

	return &testServer{
		handler: SetupRouter(svc, log),
		node:    node,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (s *testServer) importWallet(t *testing.T) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/wallets/import", model.ImportWalletRequest{
		Name:       "main",
		PrivateKey: testKeyHex,
		Password:   "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, testAddress, decodeBody[model.WalletResponse](t, rec).Address)
}

func TestWalletLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	s.importWallet(t)

	rec := s.do(t, http.MethodPost, "/wallets/import", model.ImportWalletRequest{Name: "dup", PrivateKey: testKeyHex, Password: "pw"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "wallet_exists", decodeBody[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPut, "/wallets/"+testAddress+"/name", model.RenameWalletRequest{Name: "renamed"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/wallets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wallets := decodeBody[[]model.WalletSummary](t, rec)
	require.Len(t, wallets, 1)
	require.Equal(t, "renamed", wallets[0].Name)
	require.NotContains(t, rec.Body.String(), "pk")

	rec = s.do(t, http.MethodGet, "/wallets/"+testAddress+"/receive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decodeBody[model.ReceiveResponse](t, rec).QRCode)

	rec = s.do(t, http.MethodDelete, "/wallets/"+testAddress, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/wallets/"+testAddress, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "wallet_not_found", decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestCreateWalletEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/wallets", model.CreateWalletRequest{Name: "new", Password: "pw", Strength: 128})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.CreateWalletResponse](t, rec)
	require.Len(t, strings.Fields(created.Mnemonic), 12)
	require.Len(t, created.Address, 48)

	rec = s.do(t, http.MethodPost, "/wallets", model.CreateWalletRequest{Name: "new", Password: "pw", Strength: 100})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeBody[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/wallets", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/wallets/recover", model.RecoverWalletRequest{Name: "r", Mnemonic: "abandon", Password: "pw"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/wallets/recover", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSendEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.importWallet(t)

	path := "/wallets/" + testAddress + "/send"

	rec := s.do(t, http.MethodPost, path, model.SendRequest{ToAddress: recipient, Amount: "1.5", Fee: "0.00009999", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := decodeBody[model.SendResponse](t, rec)
	require.Equal(t, "txhash", sent.TxHash)
	require.Equal(t, "1.50000000", sent.Amount)
	require.Equal(t, "0.00009984", sent.Fee)
	require.Equal(t, uint32(500), sent.PinHeight)

	rec = s.do(t, http.MethodPost, path, model.SendRequest{ToAddress: recipient, Amount: "1.5", Fee: "0.0001", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "decryption_failed", decodeBody[model.ErrorResponse](t, rec).Code)

	rec = s.do(t, http.MethodPost, path, model.SendRequest{ToAddress: recipient, Amount: "1.5.1", Fee: "0.0001", Password: "pw"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path, model.SendRequest{ToAddress: "beef", Amount: "1", Fee: "0.0001", Password: "pw"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	s.node.roundErr = errors.New("node busy")
	rec = s.do(t, http.MethodPost, path, model.SendRequest{ToAddress: recipient, Amount: "1", Fee: "0.0001", Password: "pw"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "fee_quantization_failed", decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestBalanceEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.importWallet(t)

	rec := s.do(t, http.MethodGet, "/wallets/"+testAddress+"/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decodeBody[model.BalanceResponse](t, rec)
	require.Equal(t, "2.50000000", balance.Balance)
	require.Equal(t, "5.00", balance.ValueUSD)

	rec = s.do(t, http.MethodGet, "/wallets/"+recipient+"/balance", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionsEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.importWallet(t)

	base := "/wallets/" + testAddress + "/transactions"

	rec := s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[model.TransactionsResponse](t, rec)
	require.Len(t, all.Transactions, 2)
	require.Equal(t, "b", all.Transactions[0].Hash)
	require.Equal(t, "1.00000000", all.TotalReceived)
	require.Equal(t, "2.00000000", all.TotalSent)

	// "to" covers the whole day
	rec = s.do(t, http.MethodGet, base+"?from=2024-05-01&to=2024-05-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	day := decodeBody[model.TransactionsResponse](t, rec)
	require.Len(t, day.Transactions, 1)
	require.Equal(t, "a", day.Transactions[0].Hash)

	rec = s.do(t, http.MethodGet, base+"?direction=OUT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[model.TransactionsResponse](t, rec).Transactions, 1)

	for _, query := range []string{"?from=01-05-2024", "?to=tomorrow", "?direction=UP", "?minAmount=3&maxAmount=1"} {
		rec = s.do(t, http.MethodGet, base+query, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.importWallet(t)

	path := "/wallets/" + testAddress + "/password"

	rec := s.do(t, http.MethodPost, path, model.ChangePasswordRequest{OldPassword: "bad", NewPassword: "new"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, path, model.ChangePasswordRequest{OldPassword: "pw", NewPassword: "new"})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPeerEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/settings/peer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:3000", decodeBody[model.PeerSettings](t, rec).URL)

	rec = s.do(t, http.MethodPut, "/settings/peer", model.PeerSettings{URL: "localhost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/settings/peer", model.PeerSettings{URL: "http://10.0.0.2:3000/"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://10.0.0.2:3000", decodeBody[model.PeerSettings](t, rec).URL)

	rec = s.do(t, http.MethodGet, "/settings/peer", nil)
	require.Equal(t, "http://10.0.0.2:3000", decodeBody[model.PeerSettings](t, rec).URL)
}

func TestSwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Contains(t, doc.Paths, "/wallets/{address}/send")
	require.Contains(t, doc.Paths, "/settings/peer")
}

func TestSetupRouterWithoutLogger(t *testing.T) {
	t.Parallel()

	st, err := store.Open("", store.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })

	svc := warthog.NewService(st, warthog.Config{DefaultPeer: "http://localhost:3000"})
	h := SetupRouter(svc, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/peer", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// failures are logged by the handler; a nil logger must not panic
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/wallets/"+testAddress, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
