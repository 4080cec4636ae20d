package types

import "time"

// Result is the delivered outcome of a reserved lab test. ReportKey,
// when set, names the uploaded report object in blob storage.
type Result struct {
	ID            int       `json:"id" db:"id"`
	ReservationID int       `json:"reservationId" db:"reservation_id"`
	Email         string    `json:"email" db:"email"`
	TestName      string    `json:"testName" db:"test_name"`
	Summary       string    `json:"summary" db:"summary"`
	ReportKey     string    `json:"reportKey,omitempty" db:"report_key"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
