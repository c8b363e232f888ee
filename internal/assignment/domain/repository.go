package domain

import "context"

// Repository persists assignments. FindByID returns nil, nil when the id is unknown.
// Update is a compare-and-swap on Version: it writes only when the stored
// version equals a.Version, bumps a.Version on success, and returns
// ErrVersionConflict otherwise.
type Repository interface {
	Insert(ctx context.Context, a *Assignment) error
	FindByID(ctx context.Context, id string) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	ListByUser(ctx context.Context, userID string) ([]Assignment, error)
	ListAll(ctx context.Context) ([]Assignment, error)
}
