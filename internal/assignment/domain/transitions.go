package domain

import (
	"math"
	"time"

	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/pricing"
)

// ApplyMilestoneStatus sets a project milestone's status and re-derives
// progress and the assignment status.
func (a *Assignment) ApplyMilestoneStatus(milestoneID string, status MilestoneStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidMilestoneStatus
	}

	idx := -1
	for i := range a.ProjectMilestones {
		if a.ProjectMilestones[i].ID == milestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProjectMilestoneNotFound
	}

	milestone := &a.ProjectMilestones[idx]
	if status == MilestoneCompleted && milestone.Status != MilestoneCompleted {
		completedAt := now
		milestone.CompletedDate = &completedAt
	}
	milestone.Status = status

	a.Progress = ComputeProgress(a.ProjectMilestones)
	a.Status = nextStatus(a.Status, a.Progress, status)
	if a.Status == StatusCompleted && a.ActualCompletionDate == nil {
		completedAt := now
		a.ActualCompletionDate = &completedAt
	}
	a.UpdatedAt = now
	return nil
}

// ApplyPayment marks a payment milestone paid and updates the running totals.
func (a *Assignment) ApplyPayment(milestoneID string, amount float64, now time.Time) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidPaymentAmount
	}

	idx := -1
	for i := range a.PaymentMilestones {
		if a.PaymentMilestones[i].ID == milestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPaymentMilestoneNotFound
	}

	milestone := &a.PaymentMilestones[idx]
	if milestone.Status == PaymentPaid {
		return ErrPaymentAlreadyRecorded
	}

	paidAt := now
	paidAmount := amount
	milestone.Status = PaymentPaid
	milestone.PaidDate = &paidAt
	milestone.PaidAmount = &paidAmount

	a.TotalPaid += amount
	a.RemainingBalance = a.TotalPrice - a.TotalPaid
	a.RefreshNextPayment()
	a.UpdatedAt = now
	return nil
}

// ApplyAddOn attaches a copy of addOn and reprices every unpaid installment.
func (a *Assignment) ApplyAddOn(addOn catalogdomain.AddOn, now time.Time) error {
	if a.HasAddOn(addOn.ID) {
		return ErrDuplicateAddOn
	}

	before := append([]PaymentMilestone(nil), a.PaymentMilestones...)

	attached := addOn
	attached.Selected = true
	a.SelectedAddOns = append(a.SelectedAddOns, attached)

	a.TotalPrice = pricing.Total(a.BasePrice, a.SelectedAddOns)
	a.RemainingBalance = a.TotalPrice - a.TotalPaid
	for i := range a.PaymentMilestones {
		if a.PaymentMilestones[i].Status == PaymentPaid {
			continue
		}
		a.PaymentMilestones[i].Amount = a.TotalPrice * a.PaymentMilestones[i].Percentage / 100
	}
	a.RefreshNextPayment()

	if err := PaidAmountsFrozen(before, a.PaymentMilestones); err != nil {
		return err
	}
	a.UpdatedAt = now
	return nil
}

func (a *Assignment) HasAddOn(id string) bool {
	for _, existing := range a.SelectedAddOns {
		if existing.ID == id {
			return true
		}
	}
	return false
}

// RefreshNextPayment points nextPaymentDue/Amount at the first pending
// installment in list order, or clears them.
func (a *Assignment) RefreshNextPayment() {
	a.NextPaymentDue = nil
	a.NextPaymentAmount = nil
	for _, milestone := range a.PaymentMilestones {
		if milestone.Status != PaymentPending {
			continue
		}
		due := milestone.DueDate
		amount := milestone.Amount
		a.NextPaymentDue = &due
		a.NextPaymentAmount = &amount
		return
	}
}

// ComputeProgress rounds the summed weight of completed milestones into [0,100].
func ComputeProgress(milestones []ProjectMilestone) int {
	var sum float64
	for _, milestone := range milestones {
		if milestone.Status == MilestoneCompleted {
			sum += milestone.Weight
		}
	}
	progress := int(math.Round(sum))
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// PaidAmountsFrozen fails when any installment that was paid in before has a
// different amount in after.
func PaidAmountsFrozen(before, after []PaymentMilestone) error {
	amounts := make(map[string]float64, len(before))
	for _, milestone := range before {
		if milestone.Status == PaymentPaid {
			amounts[milestone.ID] = milestone.Amount
		}
	}
	for _, milestone := range after {
		amount, ok := amounts[milestone.ID]
		if !ok {
			continue
		}
		if milestone.Amount != amount || milestone.Status != PaymentPaid {
			return ErrPaidHistoryRewritten
		}
	}
	return nil
}

func nextStatus(current Status, progress int, changed MilestoneStatus) Status {
	switch current {
	case StatusCancelled, StatusCompleted:
		return current
	}
	if progress >= 100 {
		return StatusCompleted
	}
	if current == StatusAssigned && changed != MilestonePending {
		return StatusInProgress
	}
	return current
}
