package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Role identifies the capability level of a registered user.
type Role string

const (
	// RoleOfficial is a regular registered user who submits booking requests.
	RoleOfficial Role = "official"
	// RoleManager is the privileged role permitted to approve or decline
	// booking requests.
	RoleManager Role = "manager"
)

// BookingStatus tracks a booking through its two-outcome lifecycle.
type BookingStatus string

const (
	// StatusPending marks a submitted booking awaiting a manager decision.
	StatusPending BookingStatus = "pending"
	// StatusApproved is the terminal state of a granted booking.
	StatusApproved BookingStatus = "approved"
	// StatusDeclined is the terminal state of a rejected booking.
	StatusDeclined BookingStatus = "declined"
)

// Terminal reports whether the status permits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// Principal represents the authenticated identity invoking a service method,
// as supplied by the session source.
type Principal struct {
	UserID string
	Role   Role
	Name   string
	Email  string
	Phone  string
}

// User represents a registered account exposed by the application services.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     *string
	Role      Role
	CreatedAt time.Time
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	CreatedAt   time.Time
}

// Booking represents a room booking request. The requester fields are a
// snapshot captured at submission time and never re-derived from the user
// record.
type Booking struct {
	ID             string
	RequesterID    *string
	RequesterName  string
	RequesterEmail string
	RequesterPhone *string
	Unit           string
	RoomID         string
	Date           string
	Start          booking.TimeOfDay
	End            booking.TimeOfDay
	Activity       string
	Participants   int
	Requirements   *string
	Status         BookingStatus
	Reason         *string
	CreatedAt      time.Time
}

// Slot returns the room time range claimed by the booking.
func (b Booking) Slot() booking.Slot {
	return booking.Slot{RoomID: b.RoomID, Date: b.Date, Start: b.Start, End: b.End}
}

// BookingInput captures caller provided booking draft fields. Times arrive as
// "15:04" strings and the date as "2006-01-02"; empty requester fields fall
// back to the submitting principal's identity.
type BookingInput struct {
	RequesterName  string
	RequesterEmail string
	RequesterPhone string
	Unit           string
	RoomID         string
	Date           string
	StartTime      string
	EndTime        string
	Activity       string
	Participants   int
	Requirements   string
}

// SubmitBookingParams wraps the data required to submit a booking request.
type SubmitBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// DecideBookingParams wraps the data required to approve or decline a booking.
type DecideBookingParams struct {
	Principal Principal
	BookingID string
	Reason    string
}

// ListBookingsParams wraps the data required to list a requester's bookings.
type ListBookingsParams struct {
	Principal   Principal
	RequesterID string
}

// RegisterParams captures the attributes supplied at self registration.
type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// BootstrapManagerParams configures the one-time manager account created when
// no manager exists.
type BootstrapManagerParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthenticateParams captures the credentials presented at login.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
