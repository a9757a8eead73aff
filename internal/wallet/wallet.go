// Package wallet - подписывающий кошелек пользователя.
// Внешний ресурс: сервис им не владеет, только пользуется
package wallet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/iurnickita/grabmarket/internal/ledger"
)

// Wallet пригоден к работе только когда есть и адрес, и подпись
type Wallet interface {
	Address() (ledger.Address, bool)
	SignTransaction(tx *ledger.Transaction) (*ledger.SignedTransaction, error)
}

// Keypair - локальный кошелек на ed25519-ключе
type keypair struct {
	address ledger.Address
	private ed25519.PrivateKey
}

// NewKeypair - кошелек из hex seed (32 байта)
func NewKeypair(seedHex string) (Wallet, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("wallet seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("wallet seed: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	private := ed25519.NewKeyFromSeed(seed)
	public := private.Public().(ed25519.PublicKey)
	address := sha256.Sum256(public)

	return &keypair{
		address: ledger.Address(hex.EncodeToString(address[:])),
		private: private,
	}, nil
}

func (k *keypair) Address() (ledger.Address, bool) {
	return k.address, true
}

func (k *keypair) SignTransaction(tx *ledger.Transaction) (*ledger.SignedTransaction, error) {
	signature := ed25519.Sign(k.private, tx.Message())
	return &ledger.SignedTransaction{
		Transaction: *tx,
		Signature:   signature,
	}, nil
}
