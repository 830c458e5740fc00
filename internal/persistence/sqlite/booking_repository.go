package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
// The overlap checks in CreateBooking and DecideBooking run inside the same
// transaction as the write, so a slot cannot be claimed twice even under
// concurrent requests.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a SQLite-backed booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const bookingColumns = `id, requester_id, requester_name, requester_email, requester_phone,
	unit, room_id, date, start_minute, end_minute, activity, participants,
	requirements, status, reason, created_at`

// Half-open interval overlap: two ranges conflict when each starts before the
// other ends.
const overlapCondition = `room_id = ? AND date = ? AND status = ? AND start_minute < ? AND end_minute > ? AND id != ?`

// CreateBooking inserts a new booking after checking the requested slot
// against approved bookings within one transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, b persistence.Booking) error {
	if b.ID == "" || b.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := r.slotTakenTx(tx, b.Slot(), b.ID)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrSlotTaken
		}

		query := `
			INSERT INTO bookings (` + bookingColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err = r.helper.ExecTx(tx, query,
			b.ID,
			b.RequesterID,
			b.RequesterName,
			b.RequesterEmail,
			b.RequesterPhone,
			b.Unit,
			b.RoomID,
			b.Date,
			int(b.Start),
			int(b.End),
			b.Activity,
			b.Participants,
			b.Requirements,
			b.Status,
			b.Reason,
			b.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		return nil
	})
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return b, nil
}

// DecideBooking applies a status transition to a pending booking. Approvals
// re-run the overlap check inside the transaction, so of two pending requests
// for the same slot only the first approval commits.
func (r *BookingRepository) DecideBooking(ctx context.Context, decision persistence.Decision) (persistence.Booking, error) {
	var decided persistence.Booking

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		row := r.helper.QueryRowTx(tx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", decision.BookingID)
		b, err := scanBooking(row)
		if err == sql.ErrNoRows {
			return persistence.ErrNotFound
		}
		if err != nil {
			return r.mapper.MapError(err)
		}

		if b.Status != persistence.StatusPending {
			return persistence.ErrTerminalStatus
		}

		if decision.Status == persistence.StatusApproved {
			taken, err := r.slotTakenTx(tx, b.Slot(), b.ID)
			if err != nil {
				return err
			}
			if taken {
				return persistence.ErrSlotTaken
			}
		}

		b.Status = decision.Status
		if decision.Reason != nil {
			reason := *decision.Reason
			b.Reason = &reason
		}

		if _, err := r.helper.ExecTx(tx,
			"UPDATE bookings SET status = ?, reason = ? WHERE id = ?",
			b.Status, b.Reason, b.ID,
		); err != nil {
			return r.mapper.MapError(err)
		}

		decided = b
		return nil
	})
	if err != nil {
		return persistence.Booking{}, err
	}

	return decided, nil
}

// ListBookingsForRequester returns bookings submitted by userID, newest first.
func (r *BookingRepository) ListBookingsForRequester(ctx context.Context, userID string) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE requester_id = ? ORDER BY created_at DESC, id DESC"
	return r.listBookings(ctx, query, userID)
}

// ListPendingBookings returns pending bookings, newest first.
func (r *BookingRepository) ListPendingBookings(ctx context.Context) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE status = ? ORDER BY created_at DESC, id DESC"
	return r.listBookings(ctx, query, persistence.StatusPending)
}

func (r *BookingRepository) listBookings(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return bookings, nil
}

// slotTakenTx reports whether slot overlaps an approved booking, queried
// inside tx.
func (r *BookingRepository) slotTakenTx(tx *sql.Tx, slot booking.Slot, excludeID string) (bool, error) {
	var count int
	err := r.helper.QueryRowTx(tx,
		"SELECT COUNT(*) FROM bookings WHERE "+overlapCondition,
		slot.RoomID, slot.Date, persistence.StatusApproved, int(slot.End), int(slot.Start), excludeID,
	).Scan(&count)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return count > 0, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var b persistence.Booking
	var startMinute, endMinute int
	var createdAtStr string

	err := row.Scan(
		&b.ID,
		&b.RequesterID,
		&b.RequesterName,
		&b.RequesterEmail,
		&b.RequesterPhone,
		&b.Unit,
		&b.RoomID,
		&b.Date,
		&startMinute,
		&endMinute,
		&b.Activity,
		&b.Participants,
		&b.Requirements,
		&b.Status,
		&b.Reason,
		&createdAtStr,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	b.Start = booking.TimeOfDay(startMinute)
	b.End = booking.TimeOfDay(endMinute)
	if !b.Start.Valid() || !b.End.Valid() {
		return persistence.Booking{}, fmt.Errorf("sqlite: booking %s has out-of-range minutes %d-%d", b.ID, startMinute, endMinute)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: failed to parse created_at: %w", err)
	}

	return b, nil
}
