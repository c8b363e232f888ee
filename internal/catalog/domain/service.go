package domain

import (
	"context"
	"errors"
)

// Lookup is the read side of the catalog used by the assignment engine.
type Lookup interface {
	ListServices(ctx context.Context) ([]ServicePackage, error)
	ListAddOns(ctx context.Context) ([]AddOn, error)
	GetService(ctx context.Context, id string) (*ServicePackage, error)
	GetAddOn(ctx context.Context, id string) (*AddOn, error)
}

type Service interface {
	Lookup

	CreateService(ctx context.Context, req CreateServiceRequest) (*ServicePackage, error)
	SaveAddOn(ctx context.Context, req SaveAddOnRequest) (*AddOn, error)
	DeleteAddOn(ctx context.Context, id string) error
}

type CreateServiceRequest struct {
	Category     string   `json:"category"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	DeliveryTime *int     `json:"deliveryTime"`
	AddOns       []AddOn  `json:"addOns"`
}

// SaveAddOnRequest creates an add-on when ID is empty and replaces it otherwise.
type SaveAddOnRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// MaxDeliveryDays bounds a package duration. Milestone count grows with it.
const MaxDeliveryDays = 3650

var (
	ErrServiceNotFound     = errors.New("service_not_found")
	ErrAddOnNotFound       = errors.New("addon_not_found")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrInvalidDeliveryTime = errors.New("invalid_delivery_time")
)
