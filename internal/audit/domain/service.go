package domain

import (
	"context"
	"errors"
)

type Service interface {
	AuditLog(ctx context.Context, actorID, action, targetType, targetID string, metadata map[string]any) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)
