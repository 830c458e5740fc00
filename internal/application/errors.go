package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks the
	// capability an operation requires.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing
	// record, such as a duplicate email at registration.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSlotConflict is returned when a booking overlaps an approved booking
	// for the same room and date.
	ErrSlotConflict = errors.New("application: slot already booked")
	// ErrInvalidStateTransition is returned when a decision targets a booking
	// already in a terminal state.
	ErrInvalidStateTransition = errors.New("application: booking already decided")
	// ErrInvalidCredentials is returned when login fails; unknown email and
	// wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrInvalidResetToken is returned when a password reset token is
	// malformed, expired, or otherwise unusable.
	ErrInvalidResetToken = errors.New("application: invalid reset token")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
