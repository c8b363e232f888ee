package domain

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         string            `json:"id" gorm:"primaryKey;type:text"`
	ActorID    string            `json:"actor_id" gorm:"type:text;not null"`
	Action     string            `json:"action" gorm:"type:text;not null;index"`
	TargetType string            `json:"target_type" gorm:"type:text;not null;index:idx_audit_logs_target,priority:1"`
	TargetID   string            `json:"target_id" gorm:"type:text;not null;index:idx_audit_logs_target,priority:2"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null"`
}

func (AuditLog) TableName() string { return "audit_logs" }
