package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoSlots is returned when a booking would take a lab test below
// zero remaining slots.
var ErrNoSlots = errors.New("no slots available")
