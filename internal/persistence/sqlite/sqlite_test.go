package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// newTestPool opens a migrated in-memory database for a test.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(InMemoryConfig())
	if err != nil {
		t.Fatalf("NewConnectionPool returned error: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	return pool
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := newTestPool(t)

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}

func mustTime(t *testing.T, value string) booking.TimeOfDay {
	t.Helper()
	parsed, err := booking.ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) returned error: %v", value, err)
	}
	return parsed
}

func seedRoom(t *testing.T, pool *ConnectionPool, id, name string) {
	t.Helper()
	repo := NewRoomRepository(pool)
	room := persistence.Room{
		ID:        id,
		Name:      name,
		Capacity:  30,
		CreatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("CreateRoom(%s) returned error: %v", name, err)
	}
}

func testBooking(t *testing.T, id, status, start, end string, createdAt time.Time) persistence.Booking {
	t.Helper()
	requesterID := "user-1"
	return persistence.Booking{
		ID:             id,
		RequesterID:    &requesterID,
		RequesterName:  "Alice Official",
		RequesterEmail: "alice@example.com",
		Unit:           "Finance",
		RoomID:         "room-1",
		Date:           "2025-06-10",
		Start:          mustTime(t, start),
		End:            mustTime(t, end),
		Activity:       "Budget review",
		Participants:   5,
		Status:         status,
		CreatedAt:      createdAt,
	}
}
