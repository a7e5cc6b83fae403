package voucher

import "errors"

// Domain errors for voucher numbering and export
var (
	ErrInvalidVoucherNumber = errors.New("voucher number does not match prefix")
	ErrSequenceExhausted    = errors.New("voucher sequence exhausted for month")
	ErrMissingVoucher       = errors.New("voucher data is required")
)
