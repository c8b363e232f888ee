package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	"github.com/smallbiznis/quotation/pkg/db"
	"gorm.io/gorm"
)

const assignmentColumns = `id, user_id, user_name, user_email, package_id, package_category, package_name,
	package_description, base_price, selected_add_ons, total_price, progress, status, project_milestones,
	payment_milestones, total_paid, remaining_balance, next_payment_due, next_payment_amount, assigned_date,
	start_date, expected_completion_date, actual_completion_date, notes, customizations, created_at,
	updated_at, created_by, version`

type repo struct {
	db *gorm.DB
}

// NewSQL returns the gorm-backed assignment store.
func NewSQL(conn *gorm.DB) domain.Repository {
	return &repo{db: conn}
}

func (r *repo) Insert(ctx context.Context, a *domain.Assignment) error {
	if a == nil {
		return gorm.ErrInvalidData
	}
	if a.Version == 0 {
		a.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return fmt.Errorf("%s: %w", a.ID, domain.ErrAssignmentExists)
		}
		return err
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+assignmentColumns+` FROM package_assignments WHERE id = ?`,
		id,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) Update(ctx context.Context, a *domain.Assignment) error {
	if a == nil {
		return gorm.ErrInvalidData
	}
	res := r.db.WithContext(ctx).Exec(
		`UPDATE package_assignments
		 SET selected_add_ons = ?, total_price = ?, progress = ?, status = ?, project_milestones = ?,
		     payment_milestones = ?, total_paid = ?, remaining_balance = ?, next_payment_due = ?,
		     next_payment_amount = ?, actual_completion_date = ?, notes = ?, customizations = ?,
		     updated_at = ?, version = ?
		 WHERE id = ? AND version = ?`,
		a.SelectedAddOns,
		a.TotalPrice,
		a.Progress,
		a.Status,
		a.ProjectMilestones,
		a.PaymentMilestones,
		a.TotalPaid,
		a.RemainingBalance,
		a.NextPaymentDue,
		a.NextPaymentAmount,
		a.ActualCompletionDate,
		a.Notes,
		a.Customizations,
		a.UpdatedAt,
		a.Version+1,
		a.ID,
		a.Version,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	a.Version++
	return nil
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	var items []domain.Assignment
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+assignmentColumns+` FROM package_assignments WHERE user_id = ? ORDER BY assigned_date DESC, id ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAll(ctx context.Context) ([]domain.Assignment, error) {
	var items []domain.Assignment
	err := r.db.WithContext(ctx).Raw(
		`SELECT ` + assignmentColumns + ` FROM package_assignments ORDER BY assigned_date DESC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
