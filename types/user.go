package types

import "time"

// User represents an account in the system.
// It contains identity, role, and profile metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the unique address the user signed up with. Tokens
	// carry it as the identity claim and admin checks resolve it
	// against this record.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role indicates the user's authorization level within the
	// system ("admin", "user").
	Role string `json:"role" db:"role"`

	// BloodGroup is the user's self-reported blood group.
	BloodGroup string `json:"bloodGroup" db:"blood_group"`

	// District and Upazila locate the user for sample collection.
	District string `json:"district" db:"district"`
	Upazila  string `json:"upazila" db:"upazila"`

	// Photo is a URL to the user's profile photo.
	Photo string `json:"photo" db:"photo"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
