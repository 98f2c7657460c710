package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexZinkM/wartlock/internal/common"
	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/internal/logger"
	"github.com/AlexZinkM/wartlock/internal/model"
	"github.com/AlexZinkM/wartlock/internal/store"
	"github.com/AlexZinkM/wartlock/warthog"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// WalletHandler serves the local wallet API
type WalletHandler struct {
	svc *warthog.Service
	log *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(svc *warthog.Service, log *zap.Logger) *WalletHandler {
	log = logger.OrNop(log)
	return &WalletHandler{
		svc: svc,
		log: log,
	}
}

// CreateWallet handles POST /wallets
// @Summary      Create wallet
// @Description  Generates a recovery phrase, derives the wallet and stores its encrypted key. The phrase is returned only once.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  true  "Wallet name, password and optional strength"
// @Success      201      {object}  model.CreateWalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets [post]
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWalletRequest
	if !h.decode(w, r, &req) {
		return
	}

	// Get password as []byte, use it, then zero it immediately
	password := []byte(req.Password)
	defer clear(password)

	mnemonic, address, err := h.svc.CreateWallet(req.Name, password, req.Strength)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateWalletResponse{
		Address:  address,
		Mnemonic: mnemonic,
	})
}

// RecoverWallet handles POST /wallets/recover
// @Summary      Recover wallet
// @Description  Stores the wallet controlled by an existing recovery phrase
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.RecoverWalletRequest  true  "Wallet name, phrase and password"
// @Success      201      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets/recover [post]
func (h *WalletHandler) RecoverWallet(w http.ResponseWriter, r *http.Request) {
	var req model.RecoverWalletRequest
	if !h.decode(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	address, err := h.svc.RecoverWallet(req.Name, req.Mnemonic, password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.WalletResponse{Address: address})
}

// ImportWallet handles POST /wallets/import
// @Summary      Import private key
// @Description  Stores a wallet from a 64-character hex private key
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportWalletRequest  true  "Wallet name, private key and password"
// @Success      201      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets/import [post]
func (h *WalletHandler) ImportWallet(w http.ResponseWriter, r *http.Request) {
	var req model.ImportWalletRequest
	if !h.decode(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	address, err := h.svc.ImportWallet(req.Name, req.PrivateKey, password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.WalletResponse{Address: address})
}

// ListWallets handles GET /wallets
// @Summary      List wallets
// @Tags         wallets
// @Produce      json
// @Success      200  {array}  model.WalletSummary
// @Router       /wallets [get]
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.svc.Wallets()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

// DeleteWallet handles DELETE /wallets/{address}
// @Summary      Delete wallet
// @Tags         wallets
// @Param        address  path  string  true  "Wallet address"
// @Success      204
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{address} [delete]
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWallet(r.PathValue("address")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameWallet handles PUT /wallets/{address}/name
// @Summary      Rename wallet
// @Tags         wallets
// @Accept       json
// @Param        address  path  string                     true  "Wallet address"
// @Param        request  body  model.RenameWalletRequest  true  "New name"
// @Success      204
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{address}/name [put]
func (h *WalletHandler) RenameWallet(w http.ResponseWriter, r *http.Request) {
	var req model.RenameWalletRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.RenameWallet(r.PathValue("address"), req.Name); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles POST /wallets/{address}/password
// @Summary      Change wallet password
// @Description  Re-encrypts the stored key under the new password with a fresh salt
// @Tags         wallets
// @Accept       json
// @Param        address  path  string                       true  "Wallet address"
// @Param        request  body  model.ChangePasswordRequest  true  "Old and new password"
// @Success      204
// @Failure      401  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{address}/password [post]
func (h *WalletHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	oldPassword := []byte(req.OldPassword)
	defer clear(oldPassword)
	newPassword := []byte(req.NewPassword)
	defer clear(newPassword)

	if err := h.svc.ChangePassword(r.PathValue("address"), oldPassword, newPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance handles GET /wallets/{address}/balance
// @Summary      Get wallet balance (USD = WART * price)
// @Description  Gets the WART balance from the node and the WART/USD price
// @Tags         wallets
// @Produce      json
// @Param        address  path      string  true  "Wallet address"
// @Success      200      {object}  model.BalanceResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallets/{address}/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetBalance(r.Context(), r.PathValue("address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// TransactionHistory handles GET /wallets/{address}/transactions
// @Summary      Get wallet transactions
// @Description  Gets list of wallet transactions with filtering capability
// @Tags         wallets
// @Produce      json
// @Param        address    path      string  true   "Wallet address"
// @Param        direction  query     string  false  "Transaction direction: IN or OUT"
// @Param        hash       query     string  false  "Transaction hash"
// @Param        from       query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to         query     string  false  "End date (YYYY-MM-DD)"
// @Param        minAmount  query     string  false  "Minimum amount in WART"
// @Param        maxAmount  query     string  false  "Maximum amount in WART"
// @Success      200        {object}  model.TransactionsResponse
// @Failure      400        {object}  model.ErrorResponse
// @Router       /wallets/{address}/transactions [get]
func (h *WalletHandler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	var req model.TransactionsRequest
	query := r.URL.Query()

	// Parse date parameters (YYYY-MM-DD)
	const dateLayout = "2006-01-02"
	if fromStr := query.Get("from"); fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)", Code: codeInvalidRequest})
			return
		}
		req.From = &t
	}
	if toStr := query.Get("to"); toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)", Code: codeInvalidRequest})
			return
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.To = &t
	}

	if direction := query.Get("direction"); direction != "" {
		d := model.TransactionDirection(direction)
		req.Direction = &d
	}
	if hash := query.Get("hash"); hash != "" {
		req.Hash = &hash
	}
	if minAmount := query.Get("minAmount"); minAmount != "" {
		req.MinAmount = &minAmount
	}
	if maxAmount := query.Get("maxAmount"); maxAmount != "" {
		req.MaxAmount = &maxAmount
	}

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: codeInvalidRequest})
		return
	}

	resp, err := h.svc.GetTransactions(r.Context(), r.PathValue("address"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Receive handles GET /wallets/{address}/receive
// @Summary      Receive address
// @Description  Gets the wallet address with a base64 PNG QR code
// @Tags         wallets
// @Produce      json
// @Param        address  path      string  true  "Wallet address"
// @Success      200      {object}  model.ReceiveResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/{address}/receive [get]
func (h *WalletHandler) Receive(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ReceiveQR(r.PathValue("address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Send handles POST /wallets/{address}/send
// @Summary      Send WART
// @Description  Signs a WART transfer with the stored key and submits it to the node
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        address  path      string             true  "Sender wallet address"
// @Param        request  body      model.SendRequest  true  "Payment data"
// @Success      200      {object}  model.SendResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallets/{address}/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.SendRequest
	if !h.decode(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	amountE8, err := common.WARTToE8(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: fmt.Sprintf("invalid amount: %v", err), Code: codeInvalidRequest})
		return
	}
	feeE8, err := common.WARTToE8(req.Fee)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: fmt.Sprintf("invalid fee: %v", err), Code: codeInvalidRequest})
		return
	}

	res, err := h.svc.Send(r.Context(), &warthog.SendRequest{
		From:     r.PathValue("address"),
		To:       req.ToAddress,
		AmountE8: amountE8,
		FeeE8:    feeE8,
		Password: password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SendResponse{
		TxHash:    res.TxHash,
		NonceID:   res.NonceID,
		PinHeight: res.PinHeight,
		Amount:    common.E8ToWART(res.AmountE8),
		Fee:       common.E8ToWART(res.FeeE8),
	})
}

// GetPeer handles GET /settings/peer
// @Summary      Get node peer
// @Tags         settings
// @Produce      json
// @Success      200  {object}  model.PeerSettings
// @Router       /settings/peer [get]
func (h *WalletHandler) GetPeer(w http.ResponseWriter, r *http.Request) {
	peer, err := h.svc.Peer()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.PeerSettings{URL: peer})
}

// SetPeer handles PUT /settings/peer
// @Summary      Set node peer
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      model.PeerSettings  true  "Node URL"
// @Success      200      {object}  model.PeerSettings
// @Failure      400      {object}  model.ErrorResponse
// @Router       /settings/peer [put]
func (h *WalletHandler) SetPeer(w http.ResponseWriter, r *http.Request) {
	var req model.PeerSettings
	if !h.decode(w, r, &req) {
		return
	}

	peer, err := h.svc.SetPeer(req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.PeerSettings{URL: peer})
}

const (
	codeInvalidRequest    = "invalid_request"
	codeWalletNotFound    = "wallet_not_found"
	codeWalletExists      = "wallet_exists"
	codeDecryptionFailed  = "decryption_failed"
	codeFeeQuantization   = "fee_quantization_failed"
	codeSendFailed        = "send_failed"
	codeInternal          = "internal"
	internalErrorResponse = "internal error"
)

// badRequestErrors are caller mistakes reported with their own message.
var badRequestErrors = []error{
	crypto.ErrInvalidStrength,
	crypto.ErrInvalidMnemonic,
	crypto.ErrInvalidPrivateKeyFormat,
	crypto.ErrInvalidScalarRange,
	crypto.ErrInvalidAddress,
	warthog.ErrInvalidWalletName,
	warthog.ErrEmptyPassword,
	warthog.ErrInvalidAmount,
	warthog.ErrInvalidPeerURL,
}

// writeError maps service errors to one JSON error shape.
func (h *WalletHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var sendErr *warthog.SendError

	switch {
	case errors.Is(err, store.ErrWalletNotFound):
		return http.StatusNotFound, model.ErrorResponse{Error: err.Error(), Code: codeWalletNotFound}
	case store.IsWalletExistsError(err):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: codeWalletExists}
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return http.StatusUnauthorized, model.ErrorResponse{Error: "wrong password", Code: codeDecryptionFailed}
	case errors.As(err, &sendErr):
		code := codeSendFailed
		if errors.Is(err, warthog.ErrFeeQuantization) {
			code = codeFeeQuantization
		}
		if sendErr.State == warthog.StateSigning {
			return http.StatusInternalServerError, model.ErrorResponse{Error: err.Error(), Code: code}
		}
		return http.StatusBadGateway, model.ErrorResponse{Error: err.Error(), Code: code}
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: codeInvalidRequest}
		}
	}

	return http.StatusInternalServerError, model.ErrorResponse{Error: internalErrorResponse, Code: codeInternal}
}

func (h *WalletHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid JSON body", Code: codeInvalidRequest})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
