package domain

import (
	"time"

	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// PaymentMilestone is one installment. List order is creation order.
type PaymentMilestone struct {
	ID         string        `json:"id" bson:"id"`
	Name       string        `json:"name" bson:"name"`
	Percentage float64       `json:"percentage" bson:"percentage"`
	Amount     float64       `json:"amount" bson:"amount"`
	DueDate    time.Time     `json:"dueDate" bson:"dueDate"`
	Status     PaymentStatus `json:"status" bson:"status"`
	PaidDate   *time.Time    `json:"paidDate,omitempty" bson:"paidDate,omitempty"`
	PaidAmount *float64      `json:"paidAmount,omitempty" bson:"paidAmount,omitempty"`
}

type ProjectMilestone struct {
	ID            string          `json:"id" bson:"id"`
	Name          string          `json:"name" bson:"name"`
	Description   string          `json:"description" bson:"description"`
	DueDate       time.Time       `json:"dueDate" bson:"dueDate"`
	Status        MilestoneStatus `json:"status" bson:"status"`
	CompletedDate *time.Time      `json:"completedDate,omitempty" bson:"completedDate,omitempty"`
	Weight        float64         `json:"weight" bson:"weight"`
}

// Assignment is a package assigned to a user together with its delivery
// and payment schedules.
type Assignment struct {
	ID                     string                                   `json:"id" gorm:"primaryKey;type:text" bson:"_id"`
	UserID                 string                                   `json:"userId" gorm:"column:user_id;type:text;not null;index" bson:"userId"`
	UserName               string                                   `json:"userName" gorm:"type:text" bson:"userName"`
	UserEmail              string                                   `json:"userEmail" gorm:"type:text" bson:"userEmail"`
	PackageID              string                                   `json:"packageId" gorm:"type:text;not null" bson:"packageId"`
	PackageCategory        string                                   `json:"packageCategory" gorm:"type:text" bson:"packageCategory"`
	PackageName            string                                   `json:"packageName" gorm:"type:text" bson:"packageName"`
	PackageDescription     string                                   `json:"packageDescription" gorm:"type:text" bson:"packageDescription"`
	BasePrice              float64                                  `json:"basePrice" gorm:"not null" bson:"basePrice"`
	SelectedAddOns         datatypes.JSONSlice[catalogdomain.AddOn] `json:"selectedAddOns" gorm:"type:json" bson:"selectedAddOns"`
	TotalPrice             float64                                  `json:"totalPrice" gorm:"not null" bson:"totalPrice"`
	Progress               int                                      `json:"progress" gorm:"not null" bson:"progress"`
	Status                 Status                                   `json:"status" gorm:"type:text;not null" bson:"status"`
	ProjectMilestones      datatypes.JSONSlice[ProjectMilestone]    `json:"projectMilestones" gorm:"type:json" bson:"projectMilestones"`
	PaymentMilestones      datatypes.JSONSlice[PaymentMilestone]    `json:"paymentMilestones" gorm:"type:json" bson:"paymentMilestones"`
	TotalPaid              float64                                  `json:"totalPaid" gorm:"not null" bson:"totalPaid"`
	RemainingBalance       float64                                  `json:"remainingBalance" gorm:"not null" bson:"remainingBalance"`
	NextPaymentDue         *time.Time                               `json:"nextPaymentDue,omitempty" bson:"nextPaymentDue,omitempty"`
	NextPaymentAmount      *float64                                 `json:"nextPaymentAmount,omitempty" bson:"nextPaymentAmount,omitempty"`
	AssignedDate           time.Time                                `json:"assignedDate" bson:"assignedDate"`
	StartDate              time.Time                                `json:"startDate" bson:"startDate"`
	ExpectedCompletionDate time.Time                                `json:"expectedCompletionDate" bson:"expectedCompletionDate"`
	ActualCompletionDate   *time.Time                               `json:"actualCompletionDate,omitempty" bson:"actualCompletionDate,omitempty"`
	Notes                  string                                   `json:"notes" gorm:"type:text" bson:"notes"`
	Customizations         datatypes.JSONSlice[string]              `json:"customizations" gorm:"type:json" bson:"customizations"`
	CreatedAt              time.Time                                `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time                                `json:"updatedAt" bson:"updatedAt"`
	CreatedBy              string                                   `json:"createdBy" gorm:"type:text" bson:"createdBy"`
	Version                int64                                    `json:"version" gorm:"not null;default:1" bson:"version"`
}

func (Assignment) TableName() string { return "package_assignments" }
