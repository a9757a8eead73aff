package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/grabmarket/internal/ledger"
)

const testSeed = "0101010101010101010101010101010101010101010101010101010101010101"

func TestNewKeypair(t *testing.T) {
	w, err := NewKeypair(testSeed)
	require.NoError(t, err)

	address, ok := w.Address()
	require.True(t, ok)
	require.Len(t, address.String(), 64)

	// тот же seed - тот же адрес
	w2, err := NewKeypair(testSeed)
	require.NoError(t, err)
	address2, _ := w2.Address()
	require.Equal(t, address, address2)
}

func TestNewKeypairBadSeed(t *testing.T) {
	_, err := NewKeypair("zz")
	require.Error(t, err)

	_, err = NewKeypair(strings.Repeat("01", 16))
	require.Error(t, err)
}

func TestSignTransaction(t *testing.T) {
	w, err := NewKeypair(testSeed)
	require.NoError(t, err)

	tx := ledger.NewTransaction()
	address, _ := w.Address()
	tx.Add(ledger.NewTransferInstruction(address, address, address, 1))
	tx.FeePayer = address
	tx.Blockhash = "hash-1"

	signedTx, err := w.SignTransaction(tx)
	require.NoError(t, err)
	require.NotEmpty(t, signedTx.Signature)
	require.NotEmpty(t, signedTx.TxHash())

	// подпись детерминированная (ed25519)
	signedTx2, err := w.SignTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, signedTx.Signature, signedTx2.Signature)
}
