package settlement

import "errors"

// Классификация исходов платежа. Каждый терминальный путь
// отдает пользователю одну из этих ошибок
var (
	ErrInsufficientData    = errors.New("insufficient data")
	ErrQuantityUnavailable = errors.New("quantity exceeds availability")
	ErrAttemptInFlight     = errors.New("order attempt already in flight")
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrInvalidAddress      = errors.New("invalid wallet or token address")
	ErrProvisioning        = errors.New("failed to create recipient account")
	ErrInsufficientFunds   = errors.New("insufficient funds for transaction")
	ErrUserRejected        = errors.New("transaction was rejected by user")
	ErrStaleCheckpoint     = errors.New("checkpoint expired")
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrBackendRejected     = errors.New("order rejected by backend, payment already taken")
	ErrUnknown             = errors.New("payment failed")
)
