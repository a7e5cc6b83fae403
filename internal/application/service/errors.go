package service

import "errors"

// Service errors, mapped to HTTP status codes by the interfaces layer
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateClass   = errors.New("class already exists")
	ErrDuplicateVoucher = errors.New("voucher already generated for student and month")
	ErrNoUsableRows     = errors.New("spreadsheet has no usable student rows")
	ErrTooManyRows      = errors.New("spreadsheet exceeds row limit")
)

// Logger is the logging interface used by services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
