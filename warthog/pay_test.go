package warthog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AlexZinkM/wartlock/internal/client"
	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/warthog"

	"github.com/stretchr/testify/require"
)

func sendRequest() *warthog.SendRequest {
	return &warthog.SendRequest{
		From:     testAddress,
		To:       recipient,
		AmountE8: 150000000,
		FeeE8:    9999,
		Password: testPassword,
	}
}

// observedStates lists the states a send entered, in order.
func (f *fixture) observedStates() []string {
	var states []string
	for _, entry := range f.logs.FilterMessage("send state").All() {
		states = append(states, entry.ContextMap()["state"].(string))
	}
	return states
}

func TestSend(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	f.node.roundFee = func(feeE8 uint64) (uint64, error) {
		require.Equal(t, uint64(9999), feeE8)
		return 9984, nil
	}

	res, err := f.svc.Send(context.Background(), sendRequest())
	require.NoError(t, err)
	require.Equal(t, "c0ffee", res.TxHash)
	require.Equal(t, uint32(42), res.NonceID)
	require.Equal(t, uint32(1000), res.PinHeight)
	require.Equal(t, uint64(150000000), res.AmountE8)
	require.Equal(t, uint64(9984), res.FeeE8)
	require.True(t, res.Signature.IsLowS())

	require.Equal(t, []string{"ChainHead", "RoundFee", "SubmitTransaction"}, f.node.Calls())
	require.Equal(t, []string{
		"FetchingChainTip", "QuantizingFee", "BuildingDigest", "Signing", "Submitted",
	}, f.observedStates())

	require.Len(t, f.node.submitted, 1)
	sub := f.node.submitted[0]
	require.Equal(t, uint32(1000), sub.PinHeight)
	require.Equal(t, uint32(42), sub.NonceID)
	require.Equal(t, recipient, sub.ToAddr)
	require.Equal(t, uint64(150000000), sub.AmountE8)
	require.Equal(t, uint64(9984), sub.FeeE8)
	require.Equal(t, res.Signature.Hex(), sub.Signature65)

	// the submitted signature covers the rounded fee and recovers to the sender
	to, err := crypto.ParseAddress(sub.ToAddr)
	require.NoError(t, err)
	tx := &crypto.Transaction{
		PinHash:   f.node.head.PinHash,
		PinHeight: sub.PinHeight,
		NonceID:   sub.NonceID,
		FeeE8:     sub.FeeE8,
		To:        to,
		AmountE8:  sub.AmountE8,
	}
	sig, err := crypto.SignatureFromHex(sub.Signature65)
	require.NoError(t, err)

	key, err := crypto.PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	pub, err := crypto.RecoverPublicKey(sig, tx.Digest())
	require.NoError(t, err)
	require.Equal(t, key.PublicKey(), pub)

	f.requireNoKeyMaterial(t)
}

func TestSendFailures(t *testing.T) {
	t.Parallel()

	errNode := errors.New("node down")

	cases := []struct {
		name    string
		setup   func(n *fakeNode)
		state   warthog.SendState
		calls   []string
		errIs   error
		entered []string
	}{
		{
			name:    "chain tip",
			setup:   func(n *fakeNode) { n.headErr = errNode },
			state:   warthog.StateFetchingChainTip,
			calls:   []string{"ChainHead"},
			errIs:   errNode,
			entered: []string{"FetchingChainTip", "Failed"},
		},
		{
			name: "fee quantization",
			setup: func(n *fakeNode) {
				n.roundFee = func(uint64) (uint64, error) { return 0, errNode }
			},
			state:   warthog.StateQuantizingFee,
			calls:   []string{"ChainHead", "RoundFee"},
			errIs:   warthog.ErrFeeQuantization,
			entered: []string{"FetchingChainTip", "QuantizingFee", "Failed"},
		},
		{
			name:    "submission",
			setup:   func(n *fakeNode) { n.submitErr = &client.NodeError{Code: 3, Message: "rejected"} },
			state:   warthog.StateSubmitted,
			calls:   []string{"ChainHead", "RoundFee", "SubmitTransaction"},
			entered: []string{"FetchingChainTip", "QuantizingFee", "BuildingDigest", "Signing", "Submitted", "Failed"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.importTestWallet(t)
			tc.setup(f.node)

			res, err := f.svc.Send(context.Background(), sendRequest())
			require.Nil(t, res)
			require.True(t, warthog.IsSendError(err))

			var sendErr *warthog.SendError
			require.True(t, errors.As(err, &sendErr))
			require.Equal(t, tc.state, sendErr.State)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
			}

			require.Equal(t, tc.calls, f.node.Calls())
			require.Empty(t, f.node.submitted)
			require.Equal(t, tc.entered, f.observedStates())
			require.Equal(t, 1, f.logs.FilterMessage("send failed").Len())
		})
	}
}

func TestSendFeeQuantizationKeepsNodeError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	nodeErr := &client.NodeError{Code: 9, Message: "bad fee"}
	f.node.roundFee = func(uint64) (uint64, error) { return 0, nodeErr }

	_, err := f.svc.Send(context.Background(), sendRequest())
	require.ErrorIs(t, err, warthog.ErrFeeQuantization)

	var target *client.NodeError
	require.True(t, errors.As(err, &target))
	require.Equal(t, 9, target.Code)
}

func TestSendCancelledBeforeSigning(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.node.roundFee = func(feeE8 uint64) (uint64, error) {
		cancel()
		return feeE8, nil
	}

	_, err := f.svc.Send(ctx, sendRequest())
	require.ErrorIs(t, err, context.Canceled)

	var sendErr *warthog.SendError
	require.True(t, errors.As(err, &sendErr))
	require.Equal(t, warthog.StateBuildingDigest, sendErr.State)
	require.Equal(t, []string{"ChainHead", "RoundFee"}, f.node.Calls())
}

func TestSendRejectedBeforeNode(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	req := sendRequest()
	req.To = recipient[:46] + "00"
	_, err := f.svc.Send(context.Background(), req)
	require.ErrorIs(t, err, crypto.ErrInvalidAddress)

	req = sendRequest()
	req.AmountE8 = 0
	_, err = f.svc.Send(context.Background(), req)
	require.ErrorIs(t, err, warthog.ErrInvalidAmount)

	req = sendRequest()
	req.Password = []byte("wrong")
	_, err = f.svc.Send(context.Background(), req)
	require.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	require.False(t, warthog.IsSendError(err))

	req = sendRequest()
	req.From = recipient
	_, err = f.svc.Send(context.Background(), req)
	require.Error(t, err)

	require.Empty(t, f.node.Calls())
	require.Empty(t, f.observedStates())
}

func TestSendNonceSourceFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	errEntropy := errors.New("no entropy")
	svc := warthog.NewService(f.store, warthog.Config{DefaultPeer: testPeer},
		warthog.WithNodeDialer(func(string) warthog.Node { return f.node }),
		warthog.WithNonceSource(func() (uint32, error) { return 0, errEntropy }),
	)

	_, err := svc.Send(context.Background(), sendRequest())
	require.ErrorIs(t, err, errEntropy)
	require.Empty(t, f.node.Calls())
}

func TestConcurrentSendsFetchOwnChainTip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.importTestWallet(t)

	const sends = 3
	var wg sync.WaitGroup
	errs := make([]error, sends)
	for i := range sends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Send(context.Background(), sendRequest())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	heads := 0
	for _, call := range f.node.Calls() {
		if call == "ChainHead" {
			heads++
		}
	}
	require.Equal(t, sends, heads)
	require.Len(t, f.node.submitted, sends)
}

func TestSendStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Idle", warthog.StateIdle.String())
	require.Equal(t, "Submitted", warthog.StateSubmitted.String())
	require.Equal(t, "Failed", warthog.StateFailed.String())
	require.Equal(t, "SendState(99)", warthog.SendState(99).String())

	err := &warthog.SendError{State: warthog.StateSigning, Err: crypto.ErrSigning}
	require.Equal(t, "send failed at Signing: failed to sign transaction", err.Error())
}
