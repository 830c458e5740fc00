// Package memory provides a mutex-guarded in-memory persistence layer. It
// mirrors the SQLite implementation's semantics, including the atomic
// conflict checks, and backs the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// Storage implements the persistence repositories over in-process maps. All
// operations take the same lock, so the conflict check and write inside
// CreateBooking and DecideBooking are atomic.
type Storage struct {
	mu       sync.RWMutex
	users    map[string]persistence.User
	rooms    map[string]persistence.Room
	bookings map[string]persistence.Booking
}

// NewStorage returns an empty Storage.
func NewStorage() *Storage {
	return &Storage{
		users:    make(map[string]persistence.User),
		rooms:    make(map[string]persistence.Room),
		bookings: make(map[string]persistence.Booking),
	}
}

// --- UserRepository implementation ---

// CreateUser stores a new user. Email comparison is case-insensitive.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}

	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}

	return cloneUser(user), nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return cloneUser(user), nil
		}
	}

	return persistence.User{}, persistence.ErrNotFound
}

// ListUsersByRole returns users holding role ordered by CreatedAt ascending.
func (s *Storage) ListUsersByRole(ctx context.Context, role string) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0)
	for _, user := range s.users {
		if user.Role != role {
			continue
		}
		users = append(users, cloneUser(user))
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// UpdatePasswordHash replaces the stored password hash for a user.
func (s *Storage) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return persistence.ErrNotFound
	}

	user.PasswordHash = passwordHash
	s.users[userID] = user
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room. Room names are unique case-insensitively.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}

	lower := strings.ToLower(room.Name)
	for _, existing := range s.rooms {
		if strings.ToLower(existing.Name) == lower {
			return persistence.ErrDuplicate
		}
	}

	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}

	return room, nil
}

// GetRoomByName retrieves a room by name, case-insensitively.
func (s *Storage) GetRoomByName(ctx context.Context, name string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(name)
	for _, room := range s.rooms {
		if strings.ToLower(room.Name) == lower {
			return room, nil
		}
	}

	return persistence.Room{}, persistence.ErrNotFound
}

// ListRooms returns all rooms ordered by name.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})

	return rooms, nil
}

// --- BookingRepository implementation ---

// CreateBooking stores a new pending booking after checking the requested
// slot against approved bookings under the write lock.
func (s *Storage) CreateBooking(ctx context.Context, b persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[b.ID]; ok {
		return persistence.ErrDuplicate
	}

	if s.slotTakenLocked(b.Slot(), b.ID) {
		return persistence.ErrSlotTaken
	}

	s.bookings[b.ID] = cloneBooking(b)
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	return cloneBooking(b), nil
}

// DecideBooking applies a status transition to a pending booking. Approvals
// re-run the overlap check against approved bookings before committing, still
// under the same lock, so two pending requests for one slot cannot both be
// approved.
func (s *Storage) DecideBooking(ctx context.Context, decision persistence.Decision) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[decision.BookingID]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	if b.Status != persistence.StatusPending {
		return persistence.Booking{}, persistence.ErrTerminalStatus
	}

	if decision.Status == persistence.StatusApproved && s.slotTakenLocked(b.Slot(), b.ID) {
		return persistence.Booking{}, persistence.ErrSlotTaken
	}

	b.Status = decision.Status
	if decision.Reason != nil {
		reason := *decision.Reason
		b.Reason = &reason
	}
	s.bookings[decision.BookingID] = cloneBooking(b)

	return cloneBooking(b), nil
}

// ListBookingsForRequester returns bookings submitted by userID ordered by
// CreatedAt descending.
func (s *Storage) ListBookingsForRequester(ctx context.Context, userID string) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if b.RequesterID == nil || *b.RequesterID != userID {
			continue
		}
		bookings = append(bookings, cloneBooking(b))
	}

	sortBookingsNewestFirst(bookings)
	return bookings, nil
}

// ListPendingBookings returns pending bookings ordered by CreatedAt descending.
func (s *Storage) ListPendingBookings(ctx context.Context) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if b.Status != persistence.StatusPending {
			continue
		}
		bookings = append(bookings, cloneBooking(b))
	}

	sortBookingsNewestFirst(bookings)
	return bookings, nil
}

// slotTakenLocked reports whether slot overlaps an approved booking. Callers
// must hold the lock.
func (s *Storage) slotTakenLocked(slot booking.Slot, excludeID string) bool {
	for _, existing := range s.bookings {
		if existing.ID == excludeID || existing.Status != persistence.StatusApproved {
			continue
		}
		if booking.Overlaps(slot, existing.Slot()) {
			return true
		}
	}
	return false
}

// --- Helpers ---

func cloneUser(user persistence.User) persistence.User {
	user.Phone = cloneStringPtr(user.Phone)
	return user
}

func cloneBooking(b persistence.Booking) persistence.Booking {
	b.RequesterID = cloneStringPtr(b.RequesterID)
	b.RequesterPhone = cloneStringPtr(b.RequesterPhone)
	b.Requirements = cloneStringPtr(b.Requirements)
	b.Reason = cloneStringPtr(b.Reason)
	return b
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func sortBookingsNewestFirst(bookings []persistence.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
