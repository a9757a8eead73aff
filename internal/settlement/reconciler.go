package settlement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/settlement/orderclient"
)

// reconciler передает оплаченный заказ бэкенду.
// Повторов нет: деньги уже списаны, повторная отправка с новым
// идентификатором породила бы второй заказ на один платеж
type reconciler struct {
	orders orderclient.OrderClient
	zaplog *zap.Logger
}

// PlaceBackendOrder - единственная отправка заказа в бэкенд.
// Вызывается только с подтвержденной транзакцией
func (r *reconciler) PlaceBackendOrder(ctx context.Context, order model.Order, authToken string) error {
	if order.Data.TxHash == "" {
		return fmt.Errorf("%w: transaction id is empty", ErrInsufficientData)
	}

	ok, err := r.orders.CreateOrder(ctx, order, authToken)
	if err != nil {
		r.zaplog.Error("backend order submission failed",
			zap.String("order", order.Number),
			zap.String("tx", order.Data.TxHash),
			zap.Error(err))
		return fmt.Errorf("%w: %s", ErrBackendRejected, err.Error())
	}
	if !ok {
		r.zaplog.Error("backend rejected paid order",
			zap.String("order", order.Number),
			zap.String("tx", order.Data.TxHash))
		return ErrBackendRejected
	}
	return nil
}
