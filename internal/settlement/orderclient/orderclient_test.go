package orderclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/grabmarket/internal/model"
)

func testOrder() model.Order {
	var order model.Order
	order.Number = "order-1"
	order.Data.Customer = "100001"
	order.Data.Restaurant = "rest-1"
	order.Data.FoodOffer = "offer-1"
	order.Data.Quantity = 2
	order.Data.TotalPrice = decimal.RequireFromString("12.999")
	order.Data.Asset = "asset-1"
	order.Data.TxHash = "sig-1"
	order.Data.PaymentRef = "sig-1"
	return order
}

func TestCreateOrderAccepted(t *testing.T) {
	var gotAuth string
	var gotBody createOrderJSONRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewOrderClient(srv.URL)
	ok, err := client.CreateOrder(context.Background(), testOrder(), "user-token")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, "Bearer user-token", gotAuth)
	require.Equal(t, "order-1", gotBody.OrderID)
	require.Equal(t, "sig-1", gotBody.TxHash)
	require.Equal(t, "sig-1", gotBody.PaymentID)
	require.Equal(t, "12.999", gotBody.TotalPrice)
}

func TestCreateOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "offer is gone", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewOrderClient(srv.URL)
	ok, err := client.CreateOrder(context.Background(), testOrder(), "user-token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCreateOrderNetworkError(t *testing.T) {
	client := NewOrderClient("http://127.0.0.1:1")
	ok, err := client.CreateOrder(context.Background(), testOrder(), "user-token")
	require.Error(t, err)
	require.False(t, ok)
}
