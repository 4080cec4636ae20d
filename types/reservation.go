package types

import "time"

// Reservation links a user to a booked lab test.
type Reservation struct {
	ID        int       `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	TestID    int       `json:"testId" db:"test_id"`
	TestName  string    `json:"testName" db:"test_name"`
	Fee       float64   `json:"testFee" db:"fee"`
	Date      string    `json:"date" db:"scheduled_on"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
