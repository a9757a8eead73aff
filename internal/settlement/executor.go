package settlement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/ledger"
	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/wallet"
)

// executor проводит перевод токенов: до maxAttempts попыток,
// на каждую попытку свежий checkpoint
type executor struct {
	ledger         ledger.Client
	wallet         wallet.Wallet
	commitment     string
	maxAttempts    int
	sendMaxRetries int
	zaplog         *zap.Logger
}

// ExecuteTransfer - перевод intent.Amount минимальных единиц актива.
// Возвращает идентификатор транзакции либо классифицированную ошибку
func (e *executor) ExecuteTransfer(ctx context.Context, intent model.TransferIntent) model.ConfirmationResult {
	payer, ok := e.wallet.Address()
	if !ok {
		return model.ConfirmationResult{Err: ErrWalletNotConnected}
	}

	asset, err := ledger.ParseAddress(intent.Asset)
	if err != nil {
		return model.ConfirmationResult{Err: ErrInvalidAddress}
	}
	payee, err := ledger.ParseAddress(intent.Payee)
	if err != nil {
		return model.ConfirmationResult{Err: ErrInvalidAddress}
	}

	fromAccount := ledger.DeriveAssociatedAccount(asset, payer)
	toAccount := ledger.DeriveAssociatedAccount(asset, payee)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		tx := ledger.NewTransaction()
		tx.Add(ledger.NewTransferInstruction(fromAccount, toAccount, payer, intent.Amount))
		tx.FeePayer = payer

		// checkpoint не переиспользуем: протухший - главная причина ретраев
		checkpoint, err := e.ledger.GetLatestCheckpoint(ctx, e.commitment)
		if err != nil {
			return model.ConfirmationResult{Err: fatalCause(err)}
		}
		tx.Blockhash = checkpoint.Blockhash

		e.zaplog.Info("transfer attempt",
			zap.Int("attempt", attempt),
			zap.String("blockhash", checkpoint.Blockhash))

		signedTx, err := e.wallet.SignTransaction(tx)
		if err != nil {
			return model.ConfirmationResult{Err: fatalCause(err)}
		}

		// симуляцию пропускаем: на повторной отправке она дает
		// ложный отказ "already processed"
		txHash, err := e.ledger.SendRawTransaction(ctx, signedTx.Serialize(), ledger.SendOptions{
			SkipPreflight:       true,
			PreflightCommitment: e.commitment,
			MaxRetries:          e.sendMaxRetries,
		})
		if err != nil {
			v := classifySubmit(err)
			if v.kind == verdictRetry {
				e.zaplog.Info("transfer submit retryable",
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			}
			return model.ConfirmationResult{Err: v.cause}
		}

		err = e.ledger.ConfirmTransaction(ctx, txHash, checkpoint, e.commitment)
		if err != nil {
			v := classifyConfirm(err)
			switch v.kind {
			case verdictSuccess:
				// сеть транзакцию уже приняла - это успех
				e.zaplog.Info("transfer already processed, assuming success",
					zap.String("tx", txHash))
				return model.ConfirmationResult{TxHash: txHash}
			case verdictRetry:
				e.zaplog.Info("transfer confirm retryable",
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			default:
				return model.ConfirmationResult{Err: v.cause}
			}
		}

		e.zaplog.Info("transfer confirmed", zap.String("tx", txHash))
		return model.ConfirmationResult{TxHash: txHash}
	}

	return model.ConfirmationResult{Err: fmt.Errorf("%w: max attempts reached", ErrStaleCheckpoint)}
}
