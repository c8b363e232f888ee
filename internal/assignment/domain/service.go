package domain

import (
	"context"
	"time"
)

type Service interface {
	Assign(ctx context.Context, req AssignRequest) ([]Assignment, error)
	SetMilestoneStatus(ctx context.Context, req SetMilestoneStatusRequest) (*Assignment, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Assignment, error)
	AddAddOn(ctx context.Context, req AddAddOnRequest) (*Assignment, error)
	UpdateNotes(ctx context.Context, req UpdateNotesRequest) (*Assignment, error)

	Get(ctx context.Context, id string) (*Assignment, error)
	ListByUser(ctx context.Context, userID string) ([]Assignment, error)
	ListAll(ctx context.Context) ([]Assignment, error)
}

type PackageSelection struct {
	PackageID string   `json:"packageId"`
	AddOnIDs  []string `json:"addOnIds"`
}

type PaymentPlan struct {
	Installments int       `json:"installments"`
	Percentages  []float64 `json:"percentages"`
}

type AssignRequest struct {
	UserID         string             `json:"userId"`
	UserName       string             `json:"userName"`
	UserEmail      string             `json:"userEmail"`
	Packages       []PackageSelection `json:"packages"`
	PaymentPlan    PaymentPlan        `json:"paymentPlan"`
	StartDate      *time.Time         `json:"startDate"`
	Notes          string             `json:"notes"`
	Customizations []string           `json:"customizations"`
	ActorID        string             `json:"-"`
}

type SetMilestoneStatusRequest struct {
	AssignmentID string          `json:"-"`
	MilestoneID  string          `json:"-"`
	Status       MilestoneStatus `json:"status"`
	ActorID      string          `json:"-"`
}

type RecordPaymentRequest struct {
	AssignmentID string  `json:"-"`
	MilestoneID  string  `json:"-"`
	Amount       float64 `json:"amount"`
	ActorID      string  `json:"-"`
}

type AddAddOnRequest struct {
	AssignmentID string `json:"-"`
	AddOnID      string `json:"addOnId"`
	ActorID      string `json:"-"`
}

type UpdateNotesRequest struct {
	AssignmentID string `json:"-"`
	Notes        string `json:"notes"`
	ActorID      string `json:"-"`
}
