// Package fee computes payable totals for admission and monthly fee vouchers.
package fee

import (
	"math"

	"github.com/shopspring/decimal"
)

// DiscountType selects how Discount.Value is interpreted
type DiscountType string

const (
	// DiscountPercentage reduces the pre-discount total by Value percent (0-100)
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFlat reduces the pre-discount total by Value currency units
	DiscountFlat DiscountType = "FLAT"
)

var hundred = decimal.NewFromInt(100)

// FeeSchedule holds the standard fee heads for a student
type FeeSchedule struct {
	AdmissionFee float64 `json:"admission_fee"`
	MonthlyFee   float64 `json:"monthly_fee"`
	PaperFund    float64 `json:"paper_fund"`
}

// CustomFeeLine is an ad hoc fee entry added at admission or voucher time
type CustomFeeLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Discount is an optional reduction applied after all fees are summed
type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// Quote carries the intermediate figures behind a computed total
type Quote struct {
	BaseTotal      float64 `json:"base_total"`
	CustomTotal    float64 `json:"custom_total"`
	PreDiscount    float64 `json:"pre_discount"`
	DiscountAmount float64 `json:"discount_amount"`
	IsFree         bool    `json:"is_free"`
	Total          int64   `json:"total"`
}

// ComputeTotal returns the payable amount rounded to whole currency units.
//
// Fees are summed first, then custom lines, then the discount is applied and
// the result floored at zero before rounding. A free student always pays 0.
// The percentage range is not checked here; callers validate it.
func ComputeTotal(schedule FeeSchedule, customFees []CustomFeeLine, discount *Discount, isFree bool) int64 {
	return Breakdown(schedule, customFees, discount, isFree).Total
}

// Breakdown is ComputeTotal with the intermediate sums exposed for display.
func Breakdown(schedule FeeSchedule, customFees []CustomFeeLine, discount *Discount, isFree bool) Quote {
	if isFree {
		return Quote{IsFree: true}
	}

	base := amount(schedule.AdmissionFee).
		Add(amount(schedule.MonthlyFee)).
		Add(amount(schedule.PaperFund))

	custom := decimal.Zero
	for _, line := range customFees {
		a := amount(line.Amount)
		if a.IsNegative() {
			continue
		}
		custom = custom.Add(a)
	}

	pre := base.Add(custom)
	result := pre
	off := decimal.Zero

	if discount != nil {
		switch discount.Type {
		case DiscountPercentage:
			off = pre.Mul(amount(discount.Value)).Div(hundred)
		case DiscountFlat:
			off = amount(discount.Value)
		}
		result = decimal.Max(decimal.Zero, pre.Sub(off))
	}

	return Quote{
		BaseTotal:      base.InexactFloat64(),
		CustomTotal:    custom.InexactFloat64(),
		PreDiscount:    pre.InexactFloat64(),
		DiscountAmount: off.InexactFloat64(),
		Total:          result.Round(0).IntPart(),
	}
}

// amount converts a form value to a decimal, treating NaN and Inf as 0
func amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
