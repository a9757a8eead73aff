package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/auth"
	"github.com/iurnickita/grabmarket/internal/directory"
	"github.com/iurnickita/grabmarket/internal/gzip"
	"github.com/iurnickita/grabmarket/internal/handler/config"
	"github.com/iurnickita/grabmarket/internal/logger"
	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/settlement"
)

func Serve(cfg config.Config, auth auth.Auth, settlement settlement.Service, directory directory.Directory, zaplog *zap.Logger) error {
	h := newHandler(auth, settlement, directory, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	return srv.ListenAndServe()
}

type handler struct {
	auth       auth.Auth
	settlement settlement.Service
	directory  directory.Directory
	zaplog     *zap.Logger
}

func newHandler(auth auth.Auth, settlement settlement.Service, directory directory.Directory, zaplog *zap.Logger) *handler {
	return &handler{
		auth:       auth,
		settlement: settlement,
		directory:  directory,
		zaplog:     zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/orders", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.PostOrder), h.zaplog)))
	mux.HandleFunc("GET /api/user/orders", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.GetOrders), h.zaplog)))

	return mux
}

type PostOrderJSONRequest struct {
	Restaurant string `json:"restaurantId"`
	FoodOffer  string `json:"foodOfferRequestId"`
	Quantity   int    `json:"quantity"`
}

type PostOrderJSONResponse struct {
	Number     string `json:"number"`
	State      string `json:"state"`
	TotalPrice string `json:"totalPrice"`
	TxHash     string `json:"txHash,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (h *handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var orderJSON PostOrderJSONRequest
	err = json.Unmarshal(buf.Bytes(), &orderJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userCode := r.Header.Get(auth.UserCodeKey)
	authToken := r.Header.Get(auth.AuthTokenKey)

	// реквизиты ресторана и параметры предложения разрешаем здесь,
	// ядро расчетов работает уже с готовыми значениями
	offer, err := h.directory.GetFoodOffer(r.Context(), orderJSON.FoodOffer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	restaurant, err := h.directory.GetRestaurant(r.Context(), orderJSON.Restaurant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	order, err := h.settlement.PlaceOrder(r.Context(), settlement.OrderRequest{
		Customer:     userCode,
		AuthToken:    authToken,
		Restaurant:   orderJSON.Restaurant,
		FoodOffer:    orderJSON.FoodOffer,
		Quantity:     orderJSON.Quantity,
		AvailableQty: offer.AvailableQty,
		UnitPrice:    offer.Price,
		PayeeWallet:  restaurant.WalletAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrInsufficientData):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, settlement.ErrQuantityUnavailable),
			errors.Is(err, settlement.ErrInvalidAddress):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, settlement.ErrAttemptInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, settlement.ErrWalletNotConnected),
			errors.Is(err, settlement.ErrUserRejected):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, settlement.ErrInsufficientFunds):
			http.Error(w, err.Error(), http.StatusPaymentRequired)
		case errors.Is(err, settlement.ErrBackendRejected):
			// оплата прошла, заказ не записан: отдельный ответ,
			// чтобы не путать с неоплаченным отказом
			h.writeOrderJSON(w, order, err.Error(), http.StatusBadGateway)
		case errors.Is(err, settlement.ErrProvisioning),
			errors.Is(err, settlement.ErrStaleCheckpoint),
			errors.Is(err, settlement.ErrConfirmationTimeout):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.writeOrderJSON(w, order, "", http.StatusCreated)
}

func (h *handler) writeOrderJSON(w http.ResponseWriter, order model.Order, message string, statusCode int) {
	responseJSON, err := json.Marshal(PostOrderJSONResponse{
		Number:     order.Number,
		State:      order.Data.State,
		TotalPrice: order.Data.TotalPrice.String(),
		TxHash:     order.Data.TxHash,
		Message:    message,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(responseJSON)
}

type GetOrdersJSONResponse struct {
	Number     string    `json:"number"`
	Restaurant string    `json:"restaurantId"`
	FoodOffer  string    `json:"foodOfferRequestId"`
	Quantity   int       `json:"quantity"`
	TotalPrice string    `json:"totalPrice"`
	State      string    `json:"state"`
	TxHash     string    `json:"txHash,omitempty"`
	Created_at time.Time `json:"created_at"`
}

func (h *handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userCode := r.Header.Get(auth.UserCodeKey)

	orders, err := h.settlement.GetOrders(r.Context(), userCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		http.Error(w, "", http.StatusNoContent)
		return
	}

	var ordersJSON []GetOrdersJSONResponse
	for _, order := range orders {
		ordersJSON = append(ordersJSON,
			GetOrdersJSONResponse{Number: order.Number,
				Restaurant: order.Data.Restaurant,
				FoodOffer:  order.Data.FoodOffer,
				Quantity:   order.Data.Quantity,
				TotalPrice: order.Data.TotalPrice.String(),
				State:      order.Data.State,
				TxHash:     order.Data.TxHash,
				Created_at: order.Data.CreatedAt})
	}
	responseJSON, err := json.Marshal(ordersJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}
