package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/internal/store"
	"github.com/AlexZinkM/wartlock/warthog"

	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("lookup: %w", store.ErrWalletNotFound), http.StatusNotFound, codeWalletNotFound},
		{&store.WalletExistsError{Address: "aa"}, http.StatusConflict, codeWalletExists},
		{crypto.ErrDecryptionFailed, http.StatusUnauthorized, codeDecryptionFailed},
		{fmt.Errorf("invalid recipient: %w", crypto.ErrInvalidAddress), http.StatusBadRequest, codeInvalidRequest},
		{crypto.ErrInvalidStrength, http.StatusBadRequest, codeInvalidRequest},
		{warthog.ErrInvalidPeerURL, http.StatusBadRequest, codeInvalidRequest},
		{
			&warthog.SendError{State: warthog.StateQuantizingFee, Err: fmt.Errorf("%w: x", warthog.ErrFeeQuantization)},
			http.StatusBadGateway, codeFeeQuantization,
		},
		{&warthog.SendError{State: warthog.StateSubmitted, Err: errors.New("rejected")}, http.StatusBadGateway, codeSendFailed},
		{&warthog.SendError{State: warthog.StateSigning, Err: crypto.ErrSigning}, http.StatusInternalServerError, codeSendFailed},
		{errors.New("disk on fire"), http.StatusInternalServerError, codeInternal},
	}

	for _, tc := range cases {
		status, resp := errorResponse(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.code, resp.Code, tc.err.Error())
	}

	// internal details stay out of responses
	_, resp := errorResponse(errors.New("disk on fire"))
	require.Equal(t, internalErrorResponse, resp.Error)

	_, resp = errorResponse(crypto.ErrDecryptionFailed)
	require.Equal(t, "wrong password", resp.Error)
}
