package types

import "time"

// Payment records a completed charge reported by the front end after
// the payment-intent flow finishes. TransactionID is the provider's
// intent identifier.
type Payment struct {
	ID            int       `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	ReservationID int       `json:"reservationId" db:"reservation_id"`
	Amount        float64   `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"`
	TransactionID string    `json:"transactionId" db:"transaction_id"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
