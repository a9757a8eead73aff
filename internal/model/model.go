package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Заказы на выкуп предложения

type Order struct {
	Number string
	Data   OrderData
}
type OrderData struct {
	Customer     string
	Restaurant   string
	FoodOffer    string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	Asset        string
	TxHash       string
	PaymentRef   string
	State        string
	StateMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Состояния заказа. CHARGED_UNSETTLED - деньги списаны, бэкенд заказ отклонил
const (
	OrderStateNew              = "NEW"
	OrderStateProvisioning     = "PROVISIONING"
	OrderStatePaying           = "PAYING"
	OrderStateReconciling      = "RECONCILING"
	OrderStateSettled          = "SETTLED"
	OrderStateFailed           = "FAILED"
	OrderStateChargedUnsettled = "CHARGED_UNSETTLED"
)

// Намерение перевода. Живет в рамках одной попытки

type TransferIntent struct {
	Payer  string
	Payee  string
	Asset  string
	Amount uint64
}

// Результат подтверждения транзакции

type ConfirmationResult struct {
	TxHash string
	Err    error
}

func (r ConfirmationResult) Success() bool {
	return r.Err == nil && r.TxHash != ""
}
