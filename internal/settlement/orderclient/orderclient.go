// Package orderclient - клиент внешнего сервиса заказов
package orderclient

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/iurnickita/grabmarket/internal/model"
)

// JSON запрос создания заказа
type createOrderJSONRequest struct {
	OrderID    string `json:"orderId"`
	UserID     string `json:"userId"`
	Restaurant string `json:"restaurantId"`
	FoodOffer  string `json:"foodOfferRequestId"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"totalPrice"`
	Token      string `json:"token"`
	TxHash     string `json:"txHash"`
	PaymentID  string `json:"paymentId"`
}

type OrderClient interface {
	CreateOrder(ctx context.Context, order model.Order, authToken string) (bool, error)
}

type orderClient struct {
	serviceAddr string
}

func NewOrderClient(serviceAddr string) OrderClient {
	return orderClient{serviceAddr: serviceAddr}
}

// CreateOrder - запись заказа в бэкенд. Вызывается строго один раз на заказ:
// деньги уже списаны, повтор породил бы дубль заказа
func (client orderClient) CreateOrder(ctx context.Context, order model.Order, authToken string) (bool, error) {
	path := "/api/v1/order/create"

	setreq := resty.New().R().SetContext(ctx)
	setreq.Method = http.MethodPost
	setreq.URL = client.serviceAddr + path
	setreq.SetHeader("Authorization", "Bearer "+authToken)
	setreq.SetBody(createOrderJSONRequest{
		OrderID:    order.Number,
		UserID:     order.Data.Customer,
		Restaurant: order.Data.Restaurant,
		FoodOffer:  order.Data.FoodOffer,
		Quantity:   order.Data.Quantity,
		TotalPrice: order.Data.TotalPrice.String(),
		Token:      order.Data.Asset,
		TxHash:     order.Data.TxHash,
		PaymentID:  order.Data.PaymentRef,
	})
	setresp, err := setreq.Send()
	if err != nil {
		return false, err
	}

	switch setresp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return true, nil
	default:
		return false, nil
	}
}
