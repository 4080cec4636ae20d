package types

import "time"

// LabTest is a bookable diagnostic test with a limited number of
// appointment slots for its scheduled date.
type LabTest struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"testName" db:"name"`
	Fee         float64   `json:"testFee" db:"fee"`
	Image       string    `json:"image" db:"image"`
	Slots       int       `json:"slot" db:"slots"`
	Date        string    `json:"date" db:"scheduled_on"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
