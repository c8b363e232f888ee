package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestPaymentScheduleScenario(t *testing.T) {
	milestones := PaymentSchedule(275, []float64{30, 40, 30}, ref, 30)
	require.Len(t, milestones, 3)

	want := []float64{82.5, 110, 82.5}
	for i, m := range milestones {
		assert.InDelta(t, want[i], m.Amount, 1e-9)
		assert.Equal(t, domain.PaymentPending, m.Status)
		assert.Equal(t, ref.AddDate(0, 0, 30*i), m.DueDate)
		assert.Nil(t, m.PaidDate)
	}
	assert.Equal(t, "payment-1", milestones[0].ID)
	assert.Equal(t, "Payment 2 (40%)", milestones[1].Name)
}

func TestPaymentScheduleCustomCadence(t *testing.T) {
	milestones := PaymentSchedule(100, []float64{50, 50}, ref, 14)
	require.Len(t, milestones, 2)
	assert.Equal(t, ref.AddDate(0, 0, 14), milestones[1].DueDate)

	fallback := PaymentSchedule(100, []float64{50, 50}, ref, 0)
	assert.Equal(t, ref.AddDate(0, 0, DefaultCadenceDays), fallback[1].DueDate)
}

func TestPaymentScheduleAmountsSumToTotal(t *testing.T) {
	plans := [][]float64{
		{100},
		{50, 50},
		{30, 40, 30},
		{34, 33, 33},
		{12.5, 12.5, 25, 50},
		SplitPercentages(7),
	}
	totals := []float64{0, 1, 99.99, 275, 1234.56}

	for _, plan := range plans {
		require.NoError(t, ValidatePlan(domain.PaymentPlan{Percentages: plan}))
		for _, total := range totals {
			var sum float64
			for _, m := range PaymentSchedule(total, plan, ref, 30) {
				sum += m.Amount
			}
			assert.InDelta(t, total, sum, 1e-6, "plan %v total %v", plan, total)
		}
	}
}

func TestProjectMilestonesScenario(t *testing.T) {
	days := 45
	milestones := ProjectMilestones(&days, ref)
	require.Len(t, milestones, 5)

	offsets := []int{9, 18, 27, 36, 45}
	for i, m := range milestones {
		assert.InDelta(t, 20, m.Weight, 1e-9)
		assert.Equal(t, ref.AddDate(0, 0, offsets[i]), m.DueDate)
		assert.Equal(t, domain.MilestonePending, m.Status)
	}
	assert.Equal(t, "Project kickoff and planning", milestones[0].Description)
	assert.Equal(t, "Development phase 2", milestones[2].Description)
	assert.Equal(t, "Final delivery and review", milestones[4].Description)
	assert.Equal(t, "milestone-5", milestones[4].ID)
}

func TestProjectMilestonesDefaultsToThirtyDays(t *testing.T) {
	milestones := ProjectMilestones(nil, ref)
	require.Len(t, milestones, 3)
	assert.Equal(t, ref.AddDate(0, 0, 30), milestones[2].DueDate)

	zero := 0
	assert.Len(t, ProjectMilestones(&zero, ref), 3)
}

func TestProjectMilestonesCapsDeliveryDays(t *testing.T) {
	huge := 1_000_000_000
	milestones := ProjectMilestones(&huge, ref)
	require.Len(t, milestones, catalogdomain.MaxDeliveryDays/10)
	assert.Equal(t, ref.AddDate(0, 0, catalogdomain.MaxDeliveryDays), milestones[len(milestones)-1].DueDate)

	assert.Equal(t, catalogdomain.MaxDeliveryDays, DeliveryDays(&huge, 30))
	days := 45
	assert.Equal(t, 45, DeliveryDays(&days, 30))
	assert.Equal(t, 60, DeliveryDays(nil, 60))
}

func TestProjectMilestonesCountAndWeights(t *testing.T) {
	for d := 1; d <= 365; d++ {
		days := d
		milestones := ProjectMilestones(&days, ref)

		want := int(math.Max(3, math.Ceil(float64(d)/10)))
		require.Len(t, milestones, want, "days %d", d)

		var sum float64
		for _, m := range milestones {
			sum += m.Weight
		}
		assert.InDelta(t, 100, sum, 1e-9, "days %d", d)
		assert.Equal(t, ref.AddDate(0, 0, d), milestones[len(milestones)-1].DueDate, "days %d", d)
	}
}

func TestValidatePlan(t *testing.T) {
	tests := []struct {
		name    string
		plan    domain.PaymentPlan
		wantErr bool
	}{
		{name: "valid", plan: domain.PaymentPlan{Installments: 3, Percentages: []float64{30, 40, 30}}},
		{name: "installments omitted", plan: domain.PaymentPlan{Percentages: []float64{100}}},
		{name: "fractional", plan: domain.PaymentPlan{Percentages: []float64{33.3, 33.3, 33.4}}},
		{name: "under 100", plan: domain.PaymentPlan{Percentages: []float64{30, 30, 30}}, wantErr: true},
		{name: "over 100", plan: domain.PaymentPlan{Percentages: []float64{60, 50}}, wantErr: true},
		{name: "negative", plan: domain.PaymentPlan{Percentages: []float64{120, -20}}, wantErr: true},
		{name: "count mismatch", plan: domain.PaymentPlan{Installments: 2, Percentages: []float64{30, 40, 30}}, wantErr: true},
		{name: "empty", plan: domain.PaymentPlan{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlan(tt.plan)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPaymentPlan)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSplitPercentages(t *testing.T) {
	assert.Equal(t, []float64{34, 33, 33}, SplitPercentages(3))
	assert.Equal(t, []float64{100}, SplitPercentages(1))
	assert.Equal(t, []float64{16, 14, 14, 14, 14, 14, 14}, SplitPercentages(7))
	assert.Nil(t, SplitPercentages(0))

	for n := 1; n <= 12; n++ {
		assert.NoError(t, ValidatePlan(domain.PaymentPlan{Installments: n, Percentages: SplitPercentages(n)}))
	}
}
