package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListServices(ctx context.Context, db *gorm.DB) ([]ServicePackage, error)
	ListAddOns(ctx context.Context, db *gorm.DB) ([]AddOn, error)
	FindService(ctx context.Context, db *gorm.DB, id string) (*ServicePackage, error)
	FindAddOn(ctx context.Context, db *gorm.DB, id string) (*AddOn, error)
	InsertService(ctx context.Context, db *gorm.DB, pkg *ServicePackage) error
	UpsertAddOn(ctx context.Context, db *gorm.DB, addOn *AddOn) error
	DeleteAddOn(ctx context.Context, db *gorm.DB, id string) (bool, error)
}
