package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/notification"
	"github.com/example/room-booking/internal/persistence"
)

type bookingRepoStub struct {
	createErr error
	created   Booking

	getBooking Booking
	getErr     error

	decideErr    error
	decideResult Booking
	decided      *BookingDecision

	pending    []Booking
	pendingErr error

	byRequester   []Booking
	requestedFor  string
	byRequesterEr error
}

func (r *bookingRepoStub) CreateBooking(ctx context.Context, b Booking) (Booking, error) {
	if r.createErr != nil {
		return Booking{}, r.createErr
	}
	r.created = b
	return b, nil
}

func (r *bookingRepoStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	if r.getErr != nil {
		return Booking{}, r.getErr
	}
	return r.getBooking, nil
}

func (r *bookingRepoStub) DecideBooking(ctx context.Context, decision BookingDecision) (Booking, error) {
	r.decided = &decision
	if r.decideErr != nil {
		return Booking{}, r.decideErr
	}
	result := r.decideResult
	if result.ID == "" {
		result = Booking{ID: decision.BookingID, Status: decision.Status, Reason: decision.Reason}
	}
	return result, nil
}

func (r *bookingRepoStub) ListBookingsForRequester(ctx context.Context, userID string) ([]Booking, error) {
	r.requestedFor = userID
	if r.byRequesterEr != nil {
		return nil, r.byRequesterEr
	}
	return r.byRequester, nil
}

func (r *bookingRepoStub) ListPendingBookings(ctx context.Context) ([]Booking, error) {
	if r.pendingErr != nil {
		return nil, r.pendingErr
	}
	return r.pending, nil
}

type roomCatalogStub struct {
	room Room
	err  error
}

func (c *roomCatalogStub) GetRoom(ctx context.Context, id string) (Room, error) {
	if c.err != nil {
		return Room{}, c.err
	}
	if c.room.ID == "" {
		return Room{ID: id, Name: "ROOM 1"}, nil
	}
	return c.room, nil
}

type userDirectoryStub struct {
	byRole map[Role][]User
	err    error
}

func (d *userDirectoryStub) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.byRole[role], nil
}

type notifierStub struct {
	batches [][]notification.Message
}

func (n *notifierStub) Dispatch(ctx context.Context, batch []notification.Message) {
	n.batches = append(n.batches, batch)
}

func (n *notifierStub) all() []notification.Message {
	var out []notification.Message
	for _, batch := range n.batches {
		out = append(out, batch...)
	}
	return out
}

func validDraft() BookingInput {
	return BookingInput{
		RequesterName:  "Alice Smith",
		RequesterEmail: "alice@example.com",
		Unit:           "Finance",
		RoomID:         "room-1",
		Date:           "2025-06-10",
		StartTime:      "09:00",
		EndTime:        "10:30",
		Activity:       "Budget review",
		Participants:   5,
	}
}

func officialPrincipal() Principal {
	return Principal{UserID: "user-1", Role: RoleOfficial, Name: "Alice Smith", Email: "alice@example.com"}
}

func managerPrincipal() Principal {
	return Principal{UserID: "mgr-1", Role: RoleManager, Name: "Morgan Lee", Email: "morgan@example.com"}
}

func TestBookingService_Submit(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("validates required fields", func(t *testing.T) {
		svc := NewBookingService(&bookingRepoStub{}, &roomCatalogStub{}, nil, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitBookingParams{Input: BookingInput{}})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"requester_name", "requester_email", "unit", "room_id", "date", "start_time", "end_time", "activity", "participants"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects an inverted time range", func(t *testing.T) {
		svc := NewBookingService(&bookingRepoStub{}, &roomCatalogStub{}, nil, nil, nil, nil)

		input := validDraft()
		input.StartTime = "14:00"
		input.EndTime = "13:00"
		_, err := svc.Submit(context.Background(), SubmitBookingParams{Principal: officialPrincipal(), Input: input})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["time"]; !ok {
			t.Fatalf("expected time validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("falls back to the principal's identity", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, &roomCatalogStub{}, nil, nil,
			func() string { return "booking-1" }, func() time.Time { return now })

		input := validDraft()
		input.RequesterName = ""
		input.RequesterEmail = ""
		principal := officialPrincipal()
		principal.Phone = "0123456789"

		created, err := svc.Submit(context.Background(), SubmitBookingParams{Principal: principal, Input: input})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if created.RequesterName != "Alice Smith" || created.RequesterEmail != "alice@example.com" {
			t.Fatalf("expected principal identity snapshot, got %q / %q", created.RequesterName, created.RequesterEmail)
		}
		if created.RequesterPhone == nil || *created.RequesterPhone != "0123456789" {
			t.Fatalf("expected principal phone snapshot, got %v", created.RequesterPhone)
		}
		if created.RequesterID == nil || *created.RequesterID != "user-1" {
			t.Fatalf("expected requester ID reference, got %v", created.RequesterID)
		}
		if repo.created.ID != "booking-1" {
			t.Fatalf("expected generated ID booking-1, got %q", repo.created.ID)
		}
		if !repo.created.CreatedAt.Equal(now) {
			t.Fatalf("expected submission timestamp %v, got %v", now, repo.created.CreatedAt)
		}
		if created.Status != StatusPending {
			t.Fatalf("expected pending status, got %q", created.Status)
		}
	})

	t.Run("rejects unknown rooms", func(t *testing.T) {
		svc := NewBookingService(&bookingRepoStub{}, &roomCatalogStub{err: persistence.ErrNotFound}, nil, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitBookingParams{Principal: officialPrincipal(), Input: validDraft()})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["room_id"]; !ok {
			t.Fatalf("expected room_id validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("maps slot conflicts", func(t *testing.T) {
		repo := &bookingRepoStub{createErr: persistence.ErrSlotTaken}
		svc := NewBookingService(repo, &roomCatalogStub{}, nil, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitBookingParams{Principal: officialPrincipal(), Input: validDraft()})

		if !errors.Is(err, ErrSlotConflict) {
			t.Fatalf("expected ErrSlotConflict, got %v", err)
		}
	})

	t.Run("notifies managers of new requests", func(t *testing.T) {
		notifier := &notifierStub{}
		users := &userDirectoryStub{byRole: map[Role][]User{
			RoleManager: {
				{ID: "mgr-1", Email: "mgr1@example.com", Role: RoleManager},
				{ID: "mgr-2", Email: "mgr2@example.com", Role: RoleManager},
			},
		}}
		svc := NewBookingService(&bookingRepoStub{}, &roomCatalogStub{}, users, notifier, nil, nil)

		if _, err := svc.Submit(context.Background(), SubmitBookingParams{Principal: officialPrincipal(), Input: validDraft()}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		messages := notifier.all()
		if len(messages) != 2 {
			t.Fatalf("expected one message per manager, got %d", len(messages))
		}
		for _, msg := range messages {
			if msg.Channel != notification.ChannelEmail {
				t.Fatalf("expected email notifications, got %q", msg.Channel)
			}
		}
	})
}

func TestBookingService_Approve(t *testing.T) {
	t.Run("requires the manager role", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		_, err := svc.Approve(context.Background(), DecideBookingParams{Principal: officialPrincipal(), BookingID: "b1"})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if repo.decided != nil {
			t.Fatal("expected no repository call for unauthorized principals")
		}
	})

	t.Run("applies the approval transition", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		decided, err := svc.Approve(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.decided.Status != StatusApproved || repo.decided.Reason != nil {
			t.Fatalf("unexpected decision: %+v", repo.decided)
		}
		if decided.Status != StatusApproved {
			t.Fatalf("expected approved booking, got %q", decided.Status)
		}
	})

	t.Run("maps terminal status to an invalid transition", func(t *testing.T) {
		repo := &bookingRepoStub{decideErr: persistence.ErrTerminalStatus}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		_, err := svc.Approve(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1"})

		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("maps a failed re-check to a slot conflict", func(t *testing.T) {
		repo := &bookingRepoStub{decideErr: persistence.ErrSlotTaken}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		_, err := svc.Approve(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1"})

		if !errors.Is(err, ErrSlotConflict) {
			t.Fatalf("expected ErrSlotConflict, got %v", err)
		}
	})
}

func TestBookingService_Decline(t *testing.T) {
	t.Run("defaults the decline reason", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		if _, err := svc.Decline(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1", Reason: "   "}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.decided.Reason == nil || *repo.decided.Reason != "Not specified" {
			t.Fatalf("expected default reason, got %v", repo.decided.Reason)
		}
	})

	t.Run("keeps the supplied reason", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		if _, err := svc.Decline(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1", Reason: "Room under maintenance"}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.decided.Reason == nil || *repo.decided.Reason != "Room under maintenance" {
			t.Fatalf("expected supplied reason, got %v", repo.decided.Reason)
		}
		if repo.decided.Status != StatusDeclined {
			t.Fatalf("expected declined status, got %q", repo.decided.Status)
		}
	})

	t.Run("notifies the requester and broadcasts to officials", func(t *testing.T) {
		phone := "0555123456"
		reason := "Double booked"
		repo := &bookingRepoStub{decideResult: Booking{
			ID:             "b1",
			RequesterName:  "Alice Smith",
			RequesterEmail: "alice@example.com",
			RoomID:         "room-1",
			Date:           "2025-06-10",
			Status:         StatusDeclined,
			Reason:         &reason,
		}}
		users := &userDirectoryStub{byRole: map[Role][]User{
			RoleOfficial: {
				{ID: "user-2", Email: "bob@example.com", Phone: &phone, Role: RoleOfficial},
			},
		}}
		notifier := &notifierStub{}
		svc := NewBookingService(repo, &roomCatalogStub{}, users, notifier, nil, nil)

		if _, err := svc.Decline(context.Background(), DecideBookingParams{Principal: managerPrincipal(), BookingID: "b1", Reason: reason}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		messages := notifier.all()
		// Requester email, official email, official SMS.
		if len(messages) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(messages))
		}
		if messages[0].Recipient != "alice@example.com" {
			t.Fatalf("expected requester notified first, got %q", messages[0].Recipient)
		}
		sms := 0
		for _, msg := range messages {
			if msg.Channel == notification.ChannelSMS {
				sms++
				if msg.Recipient != phone {
					t.Fatalf("expected SMS to %q, got %q", phone, msg.Recipient)
				}
			}
		}
		if sms != 1 {
			t.Fatalf("expected one SMS, got %d", sms)
		}
	})
}

func TestBookingService_ListPendingForManager(t *testing.T) {
	t.Run("requires the manager role", func(t *testing.T) {
		svc := NewBookingService(&bookingRepoStub{}, nil, nil, nil, nil, nil)

		_, err := svc.ListPendingForManager(context.Background(), officialPrincipal())

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("orders newest submissions first", func(t *testing.T) {
		base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		repo := &bookingRepoStub{pending: []Booking{
			{ID: "b1", CreatedAt: base},
			{ID: "b3", CreatedAt: base.Add(2 * time.Minute)},
			{ID: "b2", CreatedAt: base.Add(2 * time.Minute)},
		}}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		pending, err := svc.ListPendingForManager(context.Background(), managerPrincipal())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		got := []string{pending[0].ID, pending[1].ID, pending[2].ID}
		want := []string{"b3", "b2", "b1"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})
}

func TestBookingService_ListForRequester(t *testing.T) {
	t.Run("defaults to the principal's own bookings", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		if _, err := svc.ListForRequester(context.Background(), ListBookingsParams{Principal: officialPrincipal()}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.requestedFor != "user-1" {
			t.Fatalf("expected lookup for user-1, got %q", repo.requestedFor)
		}
	})

	t.Run("blocks officials from listing other requesters", func(t *testing.T) {
		svc := NewBookingService(&bookingRepoStub{}, nil, nil, nil, nil, nil)

		_, err := svc.ListForRequester(context.Background(), ListBookingsParams{Principal: officialPrincipal(), RequesterID: "user-2"})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("allows managers to list any requester", func(t *testing.T) {
		repo := &bookingRepoStub{}
		svc := NewBookingService(repo, nil, nil, nil, nil, nil)

		if _, err := svc.ListForRequester(context.Background(), ListBookingsParams{Principal: managerPrincipal(), RequesterID: "user-2"}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.requestedFor != "user-2" {
			t.Fatalf("expected lookup for user-2, got %q", repo.requestedFor)
		}
	})
}
