package settlement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/ledger"
	"github.com/iurnickita/grabmarket/internal/wallet"
)

// provisioner отвечает за наличие токен-счета получателя.
// Ретраев нет: сбой на этом шаге считаем постоянным и валим весь платеж
type provisioner struct {
	ledger         ledger.Client
	wallet         wallet.Wallet
	commitment     string
	sendMaxRetries int
	zaplog         *zap.Logger
}

// EnsureRecipientAccount - проверка и при необходимости создание
// токен-счета (payee, asset). Создание оплачивает плательщик
func (p *provisioner) EnsureRecipientAccount(ctx context.Context, asset ledger.Address, payee ledger.Address) error {
	account := ledger.DeriveAssociatedAccount(asset, payee)

	// частый случай: счет уже есть после первого платежа этому ресторану
	_, err := p.ledger.GetAccount(ctx, account)
	if err == nil {
		p.zaplog.Debug("recipient account already exists",
			zap.String("account", account.String()))
		return nil
	}

	payer, ok := p.wallet.Address()
	if !ok {
		return fmt.Errorf("%w: %w", ErrProvisioning, ErrWalletNotConnected)
	}

	tx := ledger.NewTransaction()
	tx.Add(ledger.NewCreateAssociatedAccountInstruction(payer, account, payee, asset))
	tx.FeePayer = payer

	checkpoint, err := p.ledger.GetLatestCheckpoint(ctx, p.commitment)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	tx.Blockhash = checkpoint.Blockhash

	signedTx, err := p.wallet.SignTransaction(tx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	txHash, err := p.ledger.SendRawTransaction(ctx, signedTx.Serialize(), ledger.SendOptions{
		SkipPreflight:       false,
		PreflightCommitment: p.commitment,
		MaxRetries:          p.sendMaxRetries,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	err = p.ledger.ConfirmTransaction(ctx, txHash, checkpoint, p.commitment)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	p.zaplog.Info("recipient account created",
		zap.String("account", account.String()),
		zap.String("tx", txHash))
	return nil
}
