package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ServicePackage is a sellable bundle in the catalog. Category is stored as
// entered; CategoryKey is its slug and is what listings sort and group by.
type ServicePackage struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:text"`
	Category     string                      `json:"category" gorm:"type:text;not null"`
	CategoryKey  string                      `json:"categoryKey" gorm:"column:category_key;type:text;not null;default:'';index"`
	Name         string                      `json:"name" gorm:"type:text;not null"`
	Price        float64                     `json:"price" gorm:"not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Features     datatypes.JSONSlice[string] `json:"features" gorm:"type:json"`
	DeliveryTime *int                        `json:"deliveryTime,omitempty" gorm:"column:delivery_time"`
	AddOns       datatypes.JSONSlice[AddOn]  `json:"addOns,omitempty" gorm:"column:add_ons;type:json"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

func (ServicePackage) TableName() string { return "service_packages" }

// AddOn is an optional extra. Assignments keep their own copies.
type AddOn struct {
	ID          string  `json:"id" gorm:"primaryKey;type:text"`
	Name        string  `json:"name" gorm:"type:text;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"not null"`
	Category    string  `json:"category" gorm:"type:text;index"`
	Selected    bool    `json:"selected" gorm:"not null;default:false"`
}

func (AddOn) TableName() string { return "add_ons" }
