// Package directory - клиент справочника ресторанов и предложений
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// JSON ответы справочника

type Restaurant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}

type FoodOffer struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurantId"`
	FoodName     string          `json:"foodName"`
	Price        decimal.Decimal `json:"price"`
	AvailableQty int             `json:"availableQty"`
}

type Directory interface {
	GetRestaurant(ctx context.Context, id string) (Restaurant, error)
	GetFoodOffer(ctx context.Context, id string) (FoodOffer, error)
}

type directory struct {
	serviceAddr string
}

func NewDirectory(serviceAddr string) Directory {
	return directory{serviceAddr: serviceAddr}
}

func (d directory) GetRestaurant(ctx context.Context, id string) (Restaurant, error) {
	path := "/api/v1/restaurant/"

	setreq := resty.New().R().SetContext(ctx)
	setreq.Method = http.MethodGet
	setreq.URL = d.serviceAddr + path + id
	setresp, err := setreq.Send()
	if err != nil {
		return Restaurant{}, err
	}

	switch setresp.StatusCode() {
	case http.StatusOK:
		var restaurant Restaurant
		err = json.Unmarshal(setresp.Body(), &restaurant)
		return restaurant, err
	default:
		return Restaurant{}, fmt.Errorf("restaurant request status: %d", setresp.StatusCode())
	}
}

func (d directory) GetFoodOffer(ctx context.Context, id string) (FoodOffer, error) {
	path := "/api/v1/food-offer/get/"

	setreq := resty.New().R().SetContext(ctx)
	setreq.Method = http.MethodGet
	setreq.URL = d.serviceAddr + path + id
	setresp, err := setreq.Send()
	if err != nil {
		return FoodOffer{}, err
	}

	switch setresp.StatusCode() {
	case http.StatusOK:
		var offer FoodOffer
		err = json.Unmarshal(setresp.Body(), &offer)
		return offer, err
	default:
		return FoodOffer{}, fmt.Errorf("food offer request status: %d", setresp.StatusCode())
	}
}
