package persistence

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// User represents a registered account in the booking domain.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	CreatedAt   time.Time
}

// Booking represents a room booking request stored in persistence. Requester
// fields are a snapshot captured at submission time; RequesterID is a weak
// reference that may outlive the user record it points at.
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
	Status         string
	Reason         *string
	CreatedAt      time.Time
}

// Slot returns the room time range claimed by the booking.
func (b Booking) Slot() booking.Slot {
	return booking.Slot{RoomID: b.RoomID, Date: b.Date, Start: b.Start, End: b.End}
}
