package warthog

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wartlock/internal/client"
	"github.com/AlexZinkM/wartlock/internal/crypto"

	"go.uber.org/zap"
)

// SendState is a stage of a single send.
type SendState int

const (
	StateIdle SendState = iota
	StateFetchingChainTip
	StateQuantizingFee
	StateBuildingDigest
	StateSigning
	StateSubmitted
	StateFailed
)

var sendStateNames = [...]string{
	StateIdle:             "Idle",
	StateFetchingChainTip: "FetchingChainTip",
	StateQuantizingFee:    "QuantizingFee",
	StateBuildingDigest:   "BuildingDigest",
	StateSigning:          "Signing",
	StateSubmitted:        "Submitted",
	StateFailed:           "Failed",
}

func (s SendState) String() string {
	if s < 0 || int(s) >= len(sendStateNames) {
		return fmt.Sprintf("SendState(%d)", int(s))
	}
	return sendStateNames[s]
}

var (
	// ErrFeeQuantization is returned when the node could not round the fee.
	// Nothing is signed in that case.
	ErrFeeQuantization = errors.New("fee quantization failed")

	// ErrInvalidAmount is returned for a zero amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// SendError is a send that ended in Failed. State is the stage whose work
// failed; for StateSubmitted that is the submission itself.
type SendError struct {
	State SendState
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed at %s: %v", e.State, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// IsSendError checks if error is SendError
func IsSendError(err error) bool {
	var target *SendError
	return errors.As(err, &target)
}

// SendRequest is a transfer from a stored wallet.
type SendRequest struct {
	From     string
	To       string
	AmountE8 uint64
	FeeE8    uint64 // before rounding by the node
	Password []byte
}

// SendResult describes a submitted transaction.
type SendResult struct {
	TxHash    string
	NonceID   uint32
	PinHeight uint32
	AmountE8  uint64
	FeeE8     uint64 // as rounded and signed
	Signature crypto.Signature
}

// Send unlocks the From wallet, then fetches the chain tip, rounds the fee,
// signs and submits the transaction, in that order. Any failure after
// unlocking is a *SendError and nothing is submitted; there are no retries.
// Two concurrent sends each fetch their own chain tip.
// Password must be []byte for security (caller should zero it after use)
func (s *Service) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	to, err := crypto.ParseAddress(req.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if req.AmountE8 == 0 {
		return nil, ErrInvalidAmount
	}

	node, err := s.node()
	if err != nil {
		return nil, err
	}

	key, err := s.UnlockWallet(req.From, req.Password)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	nonce, err := s.nonce()
	if err != nil {
		return nil, err
	}

	m := &sendMachine{
		node:  node,
		state: StateIdle,
		log: s.log.With(
			zap.String("from", req.From),
			zap.Stringer("to", to),
			zap.Uint32("nonceId", nonce),
		),
	}
	return m.run(ctx, &key, &draft{
		to:       to,
		nonceID:  nonce,
		amountE8: req.AmountE8,
		feeE8:    req.FeeE8,
	})
}

type draft struct {
	to       crypto.Address
	nonceID  uint32
	amountE8 uint64
	feeE8    uint64
}

// sendMachine drives one send through its states.
type sendMachine struct {
	node  Node
	state SendState
	log   *zap.Logger
}

func (m *sendMachine) enter(state SendState) {
	m.log.Debug("send state", zap.Stringer("from_state", m.state), zap.Stringer("state", state))
	m.state = state
}

func (m *sendMachine) fail(err error) error {
	failed := m.state
	m.log.Warn("send failed", zap.Stringer("stage", failed), zap.Error(err))
	m.enter(StateFailed)
	return &SendError{State: failed, Err: err}
}

func (m *sendMachine) run(ctx context.Context, key *crypto.PrivateKey, d *draft) (*SendResult, error) {
	m.enter(StateFetchingChainTip)
	head, err := m.node.ChainHead(ctx)
	if err != nil {
		return nil, m.fail(err)
	}

	m.enter(StateQuantizingFee)
	feeE8, err := m.node.RoundFee(ctx, d.feeE8)
	if err != nil {
		return nil, m.fail(fmt.Errorf("%w: %w", ErrFeeQuantization, err))
	}

	m.enter(StateBuildingDigest)
	tx := &crypto.Transaction{
		PinHash:   head.PinHash,
		PinHeight: head.PinHeight,
		NonceID:   d.nonceID,
		FeeE8:     feeE8,
		To:        d.to,
		AmountE8:  d.amountE8,
	}
	digest := tx.Digest()

	// a cancelled send must not produce a signature
	if err := ctx.Err(); err != nil {
		return nil, m.fail(err)
	}

	m.enter(StateSigning)
	sig, err := crypto.SignDigest(*key, digest)
	if err != nil {
		return nil, m.fail(err)
	}

	m.enter(StateSubmitted)
	txHash, err := m.node.SubmitTransaction(ctx, &client.SubmitRequest{
		PinHeight:   tx.PinHeight,
		NonceID:     tx.NonceID,
		ToAddr:      tx.To.String(),
		AmountE8:    tx.AmountE8,
		FeeE8:       tx.FeeE8,
		Signature65: sig.Hex(),
	})
	if err != nil {
		return nil, m.fail(err)
	}

	m.log.Info("transaction submitted",
		zap.String("txHash", txHash),
		zap.Uint32("pinHeight", tx.PinHeight),
		zap.Uint64("amountE8", tx.AmountE8),
		zap.Uint64("feeE8", tx.FeeE8),
	)

	return &SendResult{
		TxHash:    txHash,
		NonceID:   tx.NonceID,
		PinHeight: tx.PinHeight,
		AmountE8:  tx.AmountE8,
		FeeE8:     tx.FeeE8,
		Signature: sig,
	}, nil
}
