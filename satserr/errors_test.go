package satserr_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinmay1088/sats/satserr"
)

func TestSentinelsMatchByKind(t *testing.T) {
	err := satserr.Wrap(satserr.KindProvider, io.EOF, "GET /address failed")

	require.True(t, errors.Is(err, satserr.ErrProvider))
	require.False(t, errors.Is(err, satserr.ErrTimeout))
	require.True(t, errors.Is(err, io.EOF))
	require.Equal(t, satserr.KindProvider, satserr.KindOf(err))
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := satserr.New(satserr.KindBroadcast, "rejected")
	outer := satserr.Wrap(satserr.KindProvider, inner, "esplora").WithAttempt(2)
	wrapped := fmt.Errorf("send: %w", outer)

	require.Equal(t, satserr.KindProvider, satserr.KindOf(wrapped))
	require.True(t, errors.Is(wrapped, satserr.ErrBroadcast))
	require.Equal(t, "send: attempt 2: esplora: rejected", wrapped.Error())

	var e *satserr.Error
	require.True(t, errors.As(wrapped, &e))
	require.Equal(t, 2, e.Attempt)
	require.Equal(t, error(inner), errors.Unwrap(outer))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind      satserr.Kind
		retryable bool
	}{
		{satserr.KindTimeout, true},
		{satserr.KindProvider, true},
		{satserr.KindBroadcast, true},
		{satserr.KindPsbtBuild, false},
		{satserr.KindInsufficientFunds, false},
		{satserr.KindDerivation, false},
		{satserr.KindAddress, false},
		{satserr.KindNetwork, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
			assert.Equal(t, tt.retryable, satserr.IsRetryable(satserr.New(tt.kind, "x")))
		})
	}
	assert.False(t, satserr.IsRetryable(io.EOF))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "insufficient funds", satserr.New(satserr.KindInsufficientFunds, "insufficient funds").Error())
	assert.Equal(t, "TimeoutError", satserr.ErrTimeout.Error())
	assert.Equal(t, "Kind(42)", satserr.Kind(42).String())
}
