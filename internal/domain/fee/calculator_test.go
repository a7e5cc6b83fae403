package fee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	schedule := FeeSchedule{AdmissionFee: 500, MonthlyFee: 400, PaperFund: 100}

	tests := []struct {
		name     string
		schedule FeeSchedule
		custom   []CustomFeeLine
		discount *Discount
		isFree   bool
		want     int64
	}{
		{
			name:     "sums schedule without discount",
			schedule: schedule,
			want:     1000,
		},
		{
			name:     "adds custom lines",
			schedule: schedule,
			custom:   []CustomFeeLine{{Name: "Transport", Amount: 250}, {Name: "Lab", Amount: 50}},
			want:     1300,
		},
		{
			name:     "ignores negative and non-finite custom lines",
			schedule: schedule,
			custom: []CustomFeeLine{
				{Name: "Refund", Amount: -200},
				{Name: "Broken", Amount: math.NaN()},
				{Name: "Inf", Amount: math.Inf(1)},
				{Name: "Sports", Amount: 20},
			},
			want: 1020,
		},
		{
			name:     "fifty percent of one thousand",
			schedule: schedule,
			discount: &Discount{Type: DiscountPercentage, Value: 50},
			want:     500,
		},
		{
			name:     "flat discount",
			schedule: schedule,
			discount: &Discount{Type: DiscountFlat, Value: 150},
			want:     850,
		},
		{
			name:     "flat discount larger than total floors at zero",
			schedule: schedule,
			discount: &Discount{Type: DiscountFlat, Value: 5000},
			want:     0,
		},
		{
			name:     "percentage above one hundred is not clamped but floors at zero",
			schedule: schedule,
			discount: &Discount{Type: DiscountPercentage, Value: 150},
			want:     0,
		},
		{
			name:     "fractional percentage rounds half up after discount",
			schedule: FeeSchedule{MonthlyFee: 1005},
			discount: &Discount{Type: DiscountPercentage, Value: 10},
			want:     905, // 1005 - 100.5 = 904.5
		},
		{
			name:     "fractional percentage rounds down",
			schedule: FeeSchedule{MonthlyFee: 999},
			discount: &Discount{Type: DiscountPercentage, Value: 12.5},
			want:     874, // 999 - 124.875 = 874.125
		},
		{
			name:     "unknown discount type reduces nothing",
			schedule: schedule,
			discount: &Discount{Type: "VOUCHER", Value: 300},
			want:     1000,
		},
		{
			name:     "free flag wins over everything",
			schedule: schedule,
			custom:   []CustomFeeLine{{Name: "Transport", Amount: 250}},
			discount: &Discount{Type: DiscountFlat, Value: 10},
			isFree:   true,
			want:     0,
		},
		{
			name: "empty inputs",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.schedule, tt.custom, tt.discount, tt.isFree)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal_FreeFlagAlwaysZero(t *testing.T) {
	discounts := []*Discount{
		nil,
		{Type: DiscountFlat, Value: 0},
		{Type: DiscountPercentage, Value: 100},
		{Type: DiscountPercentage, Value: -20},
	}
	for _, d := range discounts {
		assert.Equal(t, int64(0), ComputeTotal(FeeSchedule{AdmissionFee: 7000, MonthlyFee: 3500}, nil, d, true))
	}
}

func TestComputeTotal_FlatMatchesFlooredDifference(t *testing.T) {
	schedule := FeeSchedule{AdmissionFee: 1200, MonthlyFee: 800, PaperFund: 300}
	pre := 2300.0

	for _, v := range []float64{0, 1, 299, 2300, 2301, 99999} {
		want := int64(math.Round(math.Max(0, pre-v)))
		got := ComputeTotal(schedule, nil, &Discount{Type: DiscountFlat, Value: v}, false)
		assert.Equal(t, want, got, "flat value %v", v)
	}
}

func TestBreakdown(t *testing.T) {
	q := Breakdown(
		FeeSchedule{AdmissionFee: 1000, MonthlyFee: 2000, PaperFund: 500},
		[]CustomFeeLine{{Name: "Uniform", Amount: 1500}},
		&Discount{Type: DiscountPercentage, Value: 20},
		false,
	)

	assert.Equal(t, 3500.0, q.BaseTotal)
	assert.Equal(t, 1500.0, q.CustomTotal)
	assert.Equal(t, 5000.0, q.PreDiscount)
	assert.Equal(t, 1000.0, q.DiscountAmount)
	assert.Equal(t, int64(4000), q.Total)
	assert.False(t, q.IsFree)

	free := Breakdown(FeeSchedule{MonthlyFee: 100}, nil, nil, true)
	assert.True(t, free.IsFree)
	assert.Equal(t, int64(0), free.Total)
}
