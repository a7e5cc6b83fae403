package entity

import "time"

// Class is a school class (grade, section or programme year)
type Class struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	MonthlyFee float64   `json:"monthly_fee"`
	Rank       int       `json:"rank"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClassName returns the class name; used as the sort key for class lists
func ClassName(c *Class) string {
	return c.Name
}
