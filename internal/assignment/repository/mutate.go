package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
)

// Mutate loads an assignment, applies fn and writes it back. On
// ErrVersionConflict it reloads and re-applies, up to maxAttempts writes.
// Errors from fn and every other store error are returned as is.
func Mutate(ctx context.Context, repo domain.Repository, id string, maxAttempts int, fn func(*domain.Assignment) error) (*domain.Assignment, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, domain.ErrAssignmentNotFound
		}

		if err := fn(current); err != nil {
			return nil, err
		}

		err = repo.Update(ctx, current)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
