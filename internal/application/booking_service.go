package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/notification"
	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository captures the persistence interactions needed by the
// service. CreateBooking and DecideBooking execute their conflict check and
// write as one atomic unit under the store's transactional guarantees.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	DecideBooking(ctx context.Context, decision BookingDecision) (Booking, error)
	ListBookingsForRequester(ctx context.Context, userID string) ([]Booking, error)
	ListPendingBookings(ctx context.Context) ([]Booking, error)
}

// BookingDecision captures a status transition applied to a pending booking.
type BookingDecision struct {
	BookingID string
	Status    BookingStatus
	Reason    *string
}

// RoomCatalog exposes the room lookups needed when validating and describing
// bookings.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// UserDirectory exposes the role based user lookups needed for notification
// fan-out.
type UserDirectory interface {
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)
}

// Notifier delivers a batch of messages best-effort. Implementations log
// failures and never return them.
type Notifier interface {
	Dispatch(ctx context.Context, batch []notification.Message)
}

// BookingService owns the booking lifecycle: submission, approval, decline,
// and the read views over pending and per-requester bookings.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	users       UserDirectory
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking lifecycle operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, users UserDirectory, notifier Notifier, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, users, notifier, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, users UserDirectory, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		users:       users,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Submit validates a booking draft, checks the requested slot against approved
// bookings, and persists the request as pending. Pending requests never block
// each other; contention is resolved at approval time.
func (s *BookingService) Submit(ctx context.Context, params SubmitBookingParams) (result Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Submit",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.ID).InfoContext(ctx, "booking submitted")
	}()

	candidate, vErr := s.buildCandidate(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomExists(ctx, candidate.RoomID); err != nil {
		return
	}

	if s.bookings == nil {
		result = candidate
		return
	}

	result, err = s.bookings.CreateBooking(ctx, candidate)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.notifyManagers(ctx, result)
	return
}

// Approve transitions a pending booking to approved. The slot is re-checked
// against other approved bookings inside the same transaction as the status
// write, so a late approval of a conflicting request fails instead of
// producing two overlapping approved bookings.
func (s *BookingService) Approve(ctx context.Context, params DecideBookingParams) (Booking, error) {
	return s.decide(ctx, "Approve", BookingDecision{
		BookingID: params.BookingID,
		Status:    StatusApproved,
	}, params.Principal)
}

// Decline transitions a pending booking to declined and records the supplied
// reason, defaulting to "Not specified".
func (s *BookingService) Decline(ctx context.Context, params DecideBookingParams) (Booking, error) {
	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		reason = "Not specified"
	}
	return s.decide(ctx, "Decline", BookingDecision{
		BookingID: params.BookingID,
		Status:    StatusDeclined,
		Reason:    &reason,
	}, params.Principal)
}

func (s *BookingService) decide(ctx context.Context, operation string, decision BookingDecision, principal Principal) (result Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"booking_id", decision.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to decide booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(result.Status)).InfoContext(ctx, "booking decided")
	}()

	if err = RequireManager(principal); err != nil {
		return
	}

	result, err = s.bookings.DecideBooking(ctx, decision)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	s.notifyDecision(ctx, result)
	return
}

// ListPendingForManager returns pending bookings ordered by submission
// recency, most recent request first.
func (s *BookingService) ListPendingForManager(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if err := RequireManager(principal); err != nil {
		return nil, err
	}
	if s.bookings == nil {
		return nil, nil
	}

	pending, err := s.bookings.ListPendingBookings(ctx)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}

	ordered := make([]Booking, len(pending))
	copy(ordered, pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID > ordered[j].ID
		}
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	return ordered, nil
}

// ListForRequester returns the bookings submitted by a requester in insertion
// order. Officials may only list their own bookings; managers may list any
// requester's.
func (s *BookingService) ListForRequester(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}

	requesterID := params.RequesterID
	if requesterID == "" {
		requesterID = params.Principal.UserID
	}
	if requesterID != params.Principal.UserID && params.Principal.Role != RoleManager {
		return nil, ErrUnauthorized
	}
	if s.bookings == nil {
		return nil, nil
	}

	bookings, err := s.bookings.ListBookingsForRequester(ctx, requesterID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookings, nil
}

func (s *BookingService) buildCandidate(params SubmitBookingParams) (Booking, *ValidationError) {
	input := params.Input
	principal := params.Principal
	vErr := &ValidationError{}

	name := strings.TrimSpace(input.RequesterName)
	if name == "" {
		name = strings.TrimSpace(principal.Name)
	}
	if name == "" {
		vErr.add("requester_name", "requester name is required")
	}

	email := strings.TrimSpace(strings.ToLower(input.RequesterEmail))
	if email == "" {
		email = strings.TrimSpace(strings.ToLower(principal.Email))
	}
	if email == "" {
		vErr.add("requester_email", "requester email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("requester_email", "requester email is invalid")
	}

	phone := strings.TrimSpace(input.RequesterPhone)
	if phone == "" {
		phone = strings.TrimSpace(principal.Phone)
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		vErr.add("unit", "unit is required")
	}

	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}

	date := ""
	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	} else if parsed, err := booking.ParseDate(strings.TrimSpace(input.Date)); err != nil {
		vErr.add("date", "date is invalid")
	} else {
		date = parsed
	}

	var start, end booking.TimeOfDay
	startOK, endOK := false, false
	if parsed, err := booking.ParseTimeOfDay(strings.TrimSpace(input.StartTime)); err != nil {
		vErr.add("start_time", "start time is invalid")
	} else {
		start, startOK = parsed, true
	}
	if parsed, err := booking.ParseTimeOfDay(strings.TrimSpace(input.EndTime)); err != nil {
		vErr.add("end_time", "end time is invalid")
	} else {
		end, endOK = parsed, true
	}
	if startOK && endOK && start >= end {
		vErr.add("time", "end time must be after start time")
	}

	if strings.TrimSpace(input.Activity) == "" {
		vErr.add("activity", "activity is required")
	}
	if input.Participants < 1 {
		vErr.add("participants", "participants must be positive")
	}

	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	candidate := Booking{
		ID:             s.idGenerator(),
		RequesterName:  name,
		RequesterEmail: email,
		Unit:           unit,
		RoomID:         strings.TrimSpace(input.RoomID),
		Date:           date,
		Start:          start,
		End:            end,
		Activity:       strings.TrimSpace(input.Activity),
		Participants:   input.Participants,
		Status:         StatusPending,
		CreatedAt:      s.now(),
	}
	if principal.UserID != "" {
		requesterID := principal.UserID
		candidate.RequesterID = &requesterID
	}
	if phone != "" {
		candidate.RequesterPhone = &phone
	}
	if requirements := strings.TrimSpace(input.Requirements); requirements != "" {
		candidate.Requirements = &requirements
	}
	return candidate, vErr
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("room_id", "room does not exist")
			return vErr
		}
		return err
	}
	return nil
}

func (s *BookingService) roomName(ctx context.Context, roomID string) string {
	if s.rooms == nil {
		return roomID
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return roomID
	}
	return room.Name
}

// notifyManagers informs manager-role users of a new pending request.
// Dispatch is best-effort and never affects the submission outcome.
func (s *BookingService) notifyManagers(ctx context.Context, b Booking) {
	if s.notifier == nil || s.users == nil {
		return
	}

	managers, err := s.users.ListUsersByRole(ctx, RoleManager)
	if err != nil {
		s.loggerWith(ctx, "Submit", "booking_id", b.ID).
			ErrorContext(ctx, "failed to resolve managers for notification", "error", err)
		return
	}

	body := fmt.Sprintf(
		"New booking request submitted:\nRequester: %s\nDate: %s\nTime: %s - %s\nRoom: %s\nActivity: %s\n",
		b.RequesterName, b.Date, b.Start, b.End, s.roomName(ctx, b.RoomID), b.Activity,
	)

	batch := make([]notification.Message, 0, len(managers))
	for _, manager := range managers {
		batch = append(batch, notification.Message{
			Channel:   notification.ChannelEmail,
			Recipient: manager.Email,
			Subject:   "New Booking Request",
			Body:      body,
		})
	}
	s.notifier.Dispatch(ctx, batch)
}

// notifyDecision informs the requester and broadcasts the outcome to all
// official-role users over email and, where a phone is known, SMS.
func (s *BookingService) notifyDecision(ctx context.Context, b Booking) {
	if s.notifier == nil {
		return
	}

	roomName := s.roomName(ctx, b.RoomID)

	var subject, requesterBody, broadcast string
	switch b.Status {
	case StatusApproved:
		subject = "Booking Approved"
		requesterBody = fmt.Sprintf("Your booking has been approved.\nDate: %s\nRoom: %s", b.Date, roomName)
		broadcast = fmt.Sprintf("Booking by %s on %s in %s was approved.", b.RequesterName, b.Date, roomName)
	case StatusDeclined:
		reason := "Not specified"
		if b.Reason != nil {
			reason = *b.Reason
		}
		subject = "Booking Declined"
		requesterBody = fmt.Sprintf("Your booking was declined.\nReason: %s", reason)
		broadcast = fmt.Sprintf("Booking by %s on %s in %s was declined. Reason: %s", b.RequesterName, b.Date, roomName, reason)
	default:
		return
	}

	batch := []notification.Message{{
		Channel:   notification.ChannelEmail,
		Recipient: b.RequesterEmail,
		Subject:   subject,
		Body:      requesterBody,
	}}

	if s.users != nil {
		officials, err := s.users.ListUsersByRole(ctx, RoleOfficial)
		if err != nil {
			s.loggerWith(ctx, "Decide", "booking_id", b.ID).
				ErrorContext(ctx, "failed to resolve officials for notification", "error", err)
			officials = nil
		}
		for _, official := range officials {
			batch = append(batch, notification.Message{
				Channel:   notification.ChannelEmail,
				Recipient: official.Email,
				Subject:   subject,
				Body:      broadcast,
			})
			if official.Phone != nil && *official.Phone != "" {
				batch = append(batch, notification.Message{
					Channel:   notification.ChannelSMS,
					Recipient: *official.Phone,
					Subject:   subject,
					Body:      broadcast,
				})
			}
		}
	}

	s.notifier.Dispatch(ctx, batch)
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrSlotConflict), errors.Is(err, persistence.ErrSlotTaken):
		return ErrSlotConflict
	case errors.Is(err, ErrInvalidStateTransition), errors.Is(err, persistence.ErrTerminalStatus):
		return ErrInvalidStateTransition
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("time", "end time must be after start time")
		return vErr
	}
	return err
}
