package settlement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/grabmarket/internal/ledger"
)

func TestClassifySubmit(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  verdictKind
		cause error
	}{
		{
			name:  "already processed retries on submit",
			err:   errors.New("This transaction has already been processed"),
			kind:  verdictRetry,
			cause: ErrStaleCheckpoint,
		},
		{
			name:  "blockhash not found retries",
			err:   errors.New("Blockhash not found"),
			kind:  verdictRetry,
			cause: ErrStaleCheckpoint,
		},
		{
			name:  "insufficient funds fatal",
			err:   errors.New("Transfer: insufficient funds"),
			kind:  verdictFatal,
			cause: ErrInsufficientFunds,
		},
		{
			name:  "user rejected fatal",
			err:   errors.New("User rejected the request"),
			kind:  verdictFatal,
			cause: ErrUserRejected,
		},
		{
			name:  "anything else fatal unknown",
			err:   errors.New("node unavailable"),
			kind:  verdictFatal,
			cause: ErrUnknown,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := classifySubmit(test.err)
			require.Equal(t, test.kind, v.kind)
			require.ErrorIs(t, v.cause, test.cause)
		})
	}
}

func TestClassifyConfirm(t *testing.T) {
	// на подтверждении "already processed" - успех, а не ретрай
	v := classifyConfirm(errors.New("Transaction has already been processed"))
	require.Equal(t, verdictSuccess, v.kind)

	v = classifyConfirm(errors.New("Blockhash not found"))
	require.Equal(t, verdictRetry, v.kind)
	require.ErrorIs(t, v.cause, ErrStaleCheckpoint)

	v = classifyConfirm(ledger.ErrConfirmationTimeout)
	require.Equal(t, verdictFatal, v.kind)
	require.ErrorIs(t, v.cause, ErrConfirmationTimeout)

	v = classifyConfirm(fmt.Errorf("wrap: %w", ledger.ErrConfirmationTimeout))
	require.Equal(t, verdictFatal, v.kind)
	require.ErrorIs(t, v.cause, ErrConfirmationTimeout)
}

func TestFatalCauseKeepsMessage(t *testing.T) {
	cause := fatalCause(errors.New("custom program error: 0x1771"))
	require.ErrorIs(t, cause, ErrUnknown)
	require.Contains(t, cause.Error(), "custom program error: 0x1771")
}
