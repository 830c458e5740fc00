package persistence

import "context"

// Booking status values shared between the persistence implementations.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Role values shared between the persistence implementations.
const (
	RoleOfficial = "official"
	RoleManager  = "manager"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsersByRole(ctx context.Context, role string) ([]User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// RoomRepository exposes room catalog storage operations.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	GetRoomByName(ctx context.Context, name string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// Decision captures an atomic status transition applied to a pending booking.
type Decision struct {
	BookingID string
	Status    string
	Reason    *string
}

// BookingRepository stores booking requests. CreateBooking and DecideBooking
// run their conflict checks and writes as one atomic unit: CreateBooking fails
// with ErrSlotTaken when the candidate overlaps an approved booking for the
// same room and date, and DecideBooking re-runs the same check before
// committing an approval.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	DecideBooking(ctx context.Context, decision Decision) (Booking, error)
	ListBookingsForRequester(ctx context.Context, userID string) ([]Booking, error)
	ListPendingBookings(ctx context.Context) ([]Booking, error)
}
