// Package settlement - платеж и оформление заказа.
// Последовательность: проверка счета получателя -> перевод токенов ->
// запись заказа в бэкенд. Каждый шаг открывает дорогу следующему
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/bus"
	"github.com/iurnickita/grabmarket/internal/ledger"
	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/settlement/config"
	"github.com/iurnickita/grabmarket/internal/settlement/orderclient"
	"github.com/iurnickita/grabmarket/internal/settlement/singleflight"
	"github.com/iurnickita/grabmarket/internal/store"
	"github.com/iurnickita/grabmarket/internal/wallet"
)

type Service interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (model.Order, error)
	GetOrders(ctx context.Context, customer string) ([]model.Order, error)
	GetUnsettled(ctx context.Context) ([]model.Order, error)
}

// OrderRequest - запрос "оплатить и оформить заказ".
// Кошелек ресторана и параметры предложения разрешены заранее
type OrderRequest struct {
	Customer     string
	AuthToken    string
	Restaurant   string
	FoodOffer    string
	Quantity     int
	AvailableQty int
	UnitPrice    decimal.Decimal
	PayeeWallet  string
}

type service struct {
	cfg         config.Config
	store       store.Store
	bus         bus.Bus
	wallet      wallet.Wallet
	guard       *singleflight.Guard
	provisioner *provisioner
	executor    *executor
	reconciler  *reconciler
	zaplog      *zap.Logger
}

func NewService(cfg config.Config, store store.Store, ledgerClient ledger.Client, w wallet.Wallet, b bus.Bus, zaplog *zap.Logger) Service {
	orders := orderclient.NewOrderClient(cfg.OrderServiceAddr)

	return &service{
		cfg:    cfg,
		store:  store,
		bus:    b,
		wallet: w,
		guard:  singleflight.NewGuard(),
		provisioner: &provisioner{
			ledger:         ledgerClient,
			wallet:         w,
			commitment:     cfg.Commitment,
			sendMaxRetries: cfg.SendMaxRetries,
			zaplog:         zaplog,
		},
		executor: &executor{
			ledger:         ledgerClient,
			wallet:         w,
			commitment:     cfg.Commitment,
			maxAttempts:    cfg.MaxAttempts,
			sendMaxRetries: cfg.SendMaxRetries,
			zaplog:         zaplog,
		},
		reconciler: &reconciler{
			orders: orders,
			zaplog: zaplog,
		},
		zaplog: zaplog,
	}
}

func (s *service) PlaceOrder(ctx context.Context, req OrderRequest) (model.Order, error) {
	// проверки до любого обращения к кошельку и сети
	if req.Customer == "" || req.AuthToken == "" || req.Restaurant == "" || req.FoodOffer == "" {
		return model.Order{}, ErrInsufficientData
	}
	if req.Quantity < 1 {
		return model.Order{}, ErrInsufficientData
	}
	if req.Quantity > req.AvailableQty {
		return model.Order{}, ErrQuantityUnavailable
	}

	payerAddr, ok := s.wallet.Address()
	if !ok {
		return model.Order{}, ErrWalletNotConnected
	}

	asset, err := ledger.ParseAddress(s.cfg.Asset)
	if err != nil {
		return model.Order{}, ErrInvalidAddress
	}
	payee, err := ledger.ParseAddress(req.PayeeWallet)
	if err != nil {
		return model.Order{}, ErrInvalidAddress
	}

	// одна попытка на (покупатель, предложение): вторая не ждет, а отклоняется
	flightKey := req.Customer + "/" + req.FoodOffer
	if !s.guard.Acquire(flightKey) {
		return model.Order{}, ErrAttemptInFlight
	}
	defer s.guard.Release(flightKey)

	totalPrice := req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	order := model.Order{
		Number: uuid.NewString(),
		Data: model.OrderData{
			Customer:   req.Customer,
			Restaurant: req.Restaurant,
			FoodOffer:  req.FoodOffer,
			Quantity:   req.Quantity,
			UnitPrice:  req.UnitPrice,
			TotalPrice: totalPrice,
			Asset:      s.cfg.Asset,
			State:      model.OrderStateNew,
			CreatedAt:  time.Now(),
		},
	}
	if err := s.store.OrderPost(ctx, order); err != nil {
		return model.Order{}, err
	}

	// Шаг 1: токен-счет получателя
	s.transition(ctx, &order, model.OrderStateProvisioning, "")
	if err := s.provisioner.EnsureRecipientAccount(ctx, asset, payee); err != nil {
		return s.fail(ctx, order, err)
	}

	// Шаг 2: перевод токенов
	s.transition(ctx, &order, model.OrderStatePaying, "")
	intent := model.TransferIntent{
		Payer:  payerAddr.String(),
		Payee:  req.PayeeWallet,
		Asset:  s.cfg.Asset,
		Amount: ledger.ToBaseUnits(totalPrice, s.cfg.AssetDecimals),
	}
	result := s.executor.ExecuteTransfer(ctx, intent)
	if !result.Success() {
		return s.fail(ctx, order, result.Err)
	}
	txHash := result.TxHash

	// идентификатор транзакции - доказательство оплаты,
	// он же референс платежа
	order.Data.TxHash = txHash
	order.Data.PaymentRef = txHash
	if err := s.store.OrderSetPayment(ctx, order.Number, txHash, txHash); err != nil {
		s.zaplog.Error("journal payment update failed",
			zap.String("order", order.Number), zap.Error(err))
	}

	// Шаг 3: заказ в бэкенд. После успешного списания - без повторов
	s.transition(ctx, &order, model.OrderStateReconciling, "")
	if err := s.reconciler.PlaceBackendOrder(ctx, order, req.AuthToken); err != nil {
		// деньги списаны, заказа нет: громко фиксируем для поддержки
		s.transition(ctx, &order, model.OrderStateChargedUnsettled, err.Error())
		s.zaplog.Error("order charged but unsettled",
			zap.String("order", order.Number),
			zap.String("customer", req.Customer),
			zap.String("tx", txHash))
		return order, err
	}

	s.transition(ctx, &order, model.OrderStateSettled, "")
	return order, nil
}

func (s *service) GetOrders(ctx context.Context, customer string) ([]model.Order, error) {
	if customer == "" {
		return nil, ErrInsufficientData
	}
	return s.store.OrderGet(ctx, customer)
}

func (s *service) GetUnsettled(ctx context.Context) ([]model.Order, error) {
	return s.store.OrderGetUnsettled(ctx)
}

// transition - смена состояния: журнал + шина событий.
// Сбой журнала платеж не останавливает, только пишется в лог
func (s *service) transition(ctx context.Context, order *model.Order, state string, message string) {
	order.Data.State = state
	order.Data.StateMessage = message

	if err := s.store.OrderSetState(ctx, order.Number, state, message); err != nil {
		s.zaplog.Error("journal state update failed",
			zap.String("order", order.Number),
			zap.String("state", state),
			zap.Error(err))
	}
	s.bus.Publish(bus.Event{
		Order:    order.Number,
		Customer: order.Data.Customer,
		State:    state,
		Message:  message,
	})
}

func (s *service) fail(ctx context.Context, order model.Order, cause error) (model.Order, error) {
	s.transition(ctx, &order, model.OrderStateFailed, cause.Error())
	return order, cause
}
