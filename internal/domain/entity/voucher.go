package entity

import (
	"time"

	"github.com/garyjia/school-admin/internal/domain/fee"
)

// FeeVoucher is a generated fee voucher for one student and billing month
type FeeVoucher struct {
	ID            int64               `json:"id"`
	VoucherNumber string              `json:"voucher_number"`
	StudentID     int64               `json:"student_id"`
	Month         string              `json:"month"` // YYYY-MM
	Schedule      fee.FeeSchedule     `json:"schedule"`
	CustomFees    []fee.CustomFeeLine `json:"custom_fees"`
	Discount      *fee.Discount       `json:"discount,omitempty"`
	IsFree        bool                `json:"is_free"`
	Total         int64               `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
}
