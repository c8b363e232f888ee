package repository

import (
	"context"

	"github.com/smallbiznis/quotation/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListServices(ctx context.Context, db *gorm.DB) ([]domain.ServicePackage, error) {
	var items []domain.ServicePackage
	err := db.WithContext(ctx).Raw(
		`SELECT id, category, category_key, name, price, description, features, delivery_time, add_ons, created_at, updated_at
		 FROM service_packages ORDER BY category_key ASC, name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAddOns(ctx context.Context, db *gorm.DB) ([]domain.AddOn, error) {
	var items []domain.AddOn
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price, category, selected
		 FROM add_ons ORDER BY category ASC, name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindService(ctx context.Context, db *gorm.DB, id string) (*domain.ServicePackage, error) {
	var item domain.ServicePackage
	err := db.WithContext(ctx).Raw(
		`SELECT id, category, category_key, name, price, description, features, delivery_time, add_ons, created_at, updated_at
		 FROM service_packages WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindAddOn(ctx context.Context, db *gorm.DB, id string) (*domain.AddOn, error) {
	var item domain.AddOn
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price, category, selected
		 FROM add_ons WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) InsertService(ctx context.Context, db *gorm.DB, pkg *domain.ServicePackage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO service_packages (id, category, category_key, name, price, description, features, delivery_time, add_ons, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.ID,
		pkg.Category,
		pkg.CategoryKey,
		pkg.Name,
		pkg.Price,
		pkg.Description,
		pkg.Features,
		pkg.DeliveryTime,
		pkg.AddOns,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	).Error
}

func (r *repo) UpsertAddOn(ctx context.Context, db *gorm.DB, addOn *domain.AddOn) error {
	if addOn == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "category"}),
		}).
		Create(addOn).Error
}

func (r *repo) DeleteAddOn(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM add_ons WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
