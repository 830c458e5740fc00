package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrSlotTaken is returned when a booking would overlap an approved
	// booking for the same room and date.
	ErrSlotTaken = errors.New("persistence: slot already booked")
	// ErrTerminalStatus is returned when a decision targets a booking that
	// already reached approved or declined.
	ErrTerminalStatus = errors.New("persistence: booking already decided")
	// ErrConstraintViolation is returned when a stored value breaks a schema
	// level check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
