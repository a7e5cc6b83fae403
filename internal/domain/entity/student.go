package entity

import "time"

// Student is an enrolled student of a class
type Student struct {
	ID              int64     `json:"id"`
	ClassID         int64     `json:"class_id"`
	SrNo            string    `json:"sr_no"`
	Name            string    `json:"name"`
	FatherName      string    `json:"father_name"`
	FatherContactNo string    `json:"father_contact_no"`
	MonthlyFee      *float64  `json:"monthly_fee,omitempty"`
	ImportBatchID   string    `json:"import_batch_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
