package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/auth"
	"github.com/iurnickita/grabmarket/internal/directory"
	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/settlement"
	"github.com/iurnickita/grabmarket/internal/token"
)

const testSecret = "testsecret"

type fakeSettlement struct {
	order   model.Order
	err     error
	gotReq  settlement.OrderRequest
	orders  []model.Order
	listErr error
}

func (f *fakeSettlement) PlaceOrder(_ context.Context, req settlement.OrderRequest) (model.Order, error) {
	f.gotReq = req
	return f.order, f.err
}

func (f *fakeSettlement) GetOrders(_ context.Context, _ string) ([]model.Order, error) {
	return f.orders, f.listErr
}

func (f *fakeSettlement) GetUnsettled(_ context.Context) ([]model.Order, error) {
	return nil, nil
}

type fakeDirectory struct{}

func (fakeDirectory) GetRestaurant(_ context.Context, id string) (directory.Restaurant, error) {
	return directory.Restaurant{ID: id, WalletAddress: "aa"}, nil
}

func (fakeDirectory) GetFoodOffer(_ context.Context, id string) (directory.FoodOffer, error) {
	return directory.FoodOffer{
		ID:           id,
		RestaurantID: "rest-1",
		Price:        decimal.RequireFromString("6.5"),
		AvailableQty: 3,
	}, nil
}

func newTestHandler(s settlement.Service) *handler {
	return newHandler(auth.NewAuth(testSecret), s, fakeDirectory{}, zap.NewNop())
}

func authHeader(t *testing.T) string {
	tokenString, err := token.BuildJWTString("100001", testSecret)
	require.NoError(t, err)
	return "Bearer " + tokenString
}

func postOrder(t *testing.T, h *handler, authorization string) *httptest.ResponseRecorder {
	body := `{"restaurantId": "rest-1", "foodOfferRequestId": "offer-1", "quantity": 2}`
	r := httptest.NewRequest(http.MethodPost, "/api/user/orders", strings.NewReader(body))
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.newRouter().ServeHTTP(w, r)
	return w
}

func TestPostOrder(t *testing.T) {
	var settled model.Order
	settled.Number = "order-1"
	settled.Data.State = model.OrderStateSettled
	settled.Data.TxHash = "sig-1"
	settled.Data.TotalPrice = decimal.RequireFromString("13")

	fs := &fakeSettlement{order: settled}
	h := newTestHandler(fs)

	w := postOrder(t, h, authHeader(t))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp PostOrderJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "order-1", resp.Number)
	require.Equal(t, model.OrderStateSettled, resp.State)
	require.Equal(t, "sig-1", resp.TxHash)

	// реквизиты из справочника дошли до ядра
	require.Equal(t, "100001", fs.gotReq.Customer)
	require.Equal(t, "aa", fs.gotReq.PayeeWallet)
	require.Equal(t, 3, fs.gotReq.AvailableQty)
	require.Equal(t, "6.5", fs.gotReq.UnitPrice.String())
}

func TestPostOrderUnauthorized(t *testing.T) {
	h := newTestHandler(&fakeSettlement{})

	w := postOrder(t, h, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postOrder(t, h, "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostOrderErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{settlement.ErrQuantityUnavailable, http.StatusUnprocessableEntity},
		{settlement.ErrInvalidAddress, http.StatusUnprocessableEntity},
		{settlement.ErrAttemptInFlight, http.StatusConflict},
		{settlement.ErrWalletNotConnected, http.StatusBadRequest},
		{settlement.ErrInsufficientFunds, http.StatusPaymentRequired},
		{settlement.ErrStaleCheckpoint, http.StatusBadGateway},
		{settlement.ErrConfirmationTimeout, http.StatusBadGateway},
	}

	for _, test := range tests {
		h := newTestHandler(&fakeSettlement{err: test.err})
		w := postOrder(t, h, authHeader(t))
		require.Equal(t, test.code, w.Code, "error %v", test.err)
	}
}

func TestPostOrderBackendRejected(t *testing.T) {
	// оплата прошла, заказ не записан: тело ответа несет состояние и txHash
	var charged model.Order
	charged.Number = "order-1"
	charged.Data.State = model.OrderStateChargedUnsettled
	charged.Data.TxHash = "sig-1"
	charged.Data.TotalPrice = decimal.RequireFromString("13")

	h := newTestHandler(&fakeSettlement{order: charged, err: settlement.ErrBackendRejected})
	w := postOrder(t, h, authHeader(t))
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp PostOrderJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, model.OrderStateChargedUnsettled, resp.State)
	require.Equal(t, "sig-1", resp.TxHash)
	require.NotEmpty(t, resp.Message)
}

func TestGetOrdersEmpty(t *testing.T) {
	h := newTestHandler(&fakeSettlement{})

	r := httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
	r.Header.Set("Authorization", authHeader(t))
	w := httptest.NewRecorder()
	h.newRouter().ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetOrders(t *testing.T) {
	var order model.Order
	order.Number = "order-1"
	order.Data.Customer = "100001"
	order.Data.State = model.OrderStateSettled
	order.Data.TotalPrice = decimal.RequireFromString("13")

	h := newTestHandler(&fakeSettlement{orders: []model.Order{order}})

	r := httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
	r.Header.Set("Authorization", authHeader(t))
	w := httptest.NewRecorder()
	h.newRouter().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []GetOrdersJSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "order-1", resp[0].Number)
}
