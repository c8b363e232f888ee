// Package schedule builds payment installments and weighted delivery
// milestones for a new assignment.
package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
)

const (
	DefaultCadenceDays  = 30
	DefaultDeliveryDays = 30

	minProjectMilestones = 3
	percentTolerance     = 1e-9
)

// PaymentSchedule splits total across percentages. Installment i is due
// cadenceDays*i days after ref.
func PaymentSchedule(total float64, percentages []float64, ref time.Time, cadenceDays int) []domain.PaymentMilestone {
	if cadenceDays <= 0 {
		cadenceDays = DefaultCadenceDays
	}

	milestones := make([]domain.PaymentMilestone, 0, len(percentages))
	for i, percentage := range percentages {
		milestones = append(milestones, domain.PaymentMilestone{
			ID:         fmt.Sprintf("payment-%d", i+1),
			Name:       fmt.Sprintf("Payment %d (%s%%)", i+1, formatPercent(percentage)),
			Percentage: percentage,
			Amount:     total * percentage / 100,
			DueDate:    ref.AddDate(0, 0, cadenceDays*i),
			Status:     domain.PaymentPending,
		})
	}
	return milestones
}

// ProjectMilestones returns max(3, ceil(d/10)) equally weighted milestones
// spread over d delivery days. A nil or non-positive duration means 30 days.
func ProjectMilestones(deliveryDays *int, today time.Time) []domain.ProjectMilestone {
	days := DeliveryDays(deliveryDays, DefaultDeliveryDays)

	count := int(math.Ceil(float64(days) / 10))
	if count < minProjectMilestones {
		count = minProjectMilestones
	}
	weight := 100 / float64(count)

	milestones := make([]domain.ProjectMilestone, 0, count)
	for i := 0; i < count; i++ {
		offset := int(math.Ceil(float64(days*(i+1)) / float64(count)))
		milestones = append(milestones, domain.ProjectMilestone{
			ID:          fmt.Sprintf("milestone-%d", i+1),
			Name:        fmt.Sprintf("Milestone %d", i+1),
			Description: milestoneDescription(i, count),
			DueDate:     today.AddDate(0, 0, offset),
			Status:      domain.MilestonePending,
			Weight:      weight,
		})
	}
	return milestones
}

// DeliveryDays resolves an optional package duration, capped at
// catalogdomain.MaxDeliveryDays.
func DeliveryDays(deliveryDays *int, fallback int) int {
	if deliveryDays != nil && *deliveryDays > 0 {
		return min(*deliveryDays, catalogdomain.MaxDeliveryDays)
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultDeliveryDays
}

// ValidatePlan rejects plans whose percentages are negative, do not sum
// to 100, or disagree with the declared installment count.
func ValidatePlan(plan domain.PaymentPlan) error {
	if len(plan.Percentages) == 0 {
		return fmt.Errorf("%w: no installments", domain.ErrInvalidPaymentPlan)
	}
	if plan.Installments > 0 && plan.Installments != len(plan.Percentages) {
		return fmt.Errorf("%w: %d installments but %d percentages", domain.ErrInvalidPaymentPlan, plan.Installments, len(plan.Percentages))
	}

	var sum float64
	for _, percentage := range plan.Percentages {
		if math.IsNaN(percentage) || math.IsInf(percentage, 0) || percentage < 0 {
			return fmt.Errorf("%w: invalid percentage %v", domain.ErrInvalidPaymentPlan, percentage)
		}
		sum += percentage
	}
	if math.Abs(sum-100) > percentTolerance {
		return fmt.Errorf("%w: percentages sum to %v", domain.ErrInvalidPaymentPlan, sum)
	}
	return nil
}

// SplitPercentages divides 100 into n whole percentages. The remainder goes
// to the first installment.
func SplitPercentages(n int) []float64 {
	if n <= 0 {
		return nil
	}
	base := 100 / n
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(base)
	}
	out[0] += float64(100 - base*n)
	return out
}

func milestoneDescription(i, count int) string {
	switch {
	case i == 0:
		return "Project kickoff and planning"
	case i == count-1:
		return "Final delivery and review"
	default:
		return fmt.Sprintf("Development phase %d", i)
	}
}

func formatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f", p)
	}
	return fmt.Sprintf("%g", p)
}
