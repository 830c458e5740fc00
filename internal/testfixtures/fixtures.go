package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the booking date matching ReferenceTime.
func ReferenceDate() string {
	return referenceTime.Format("2006-01-02")
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	Role         application.Role
	CreatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleOfficial,
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPhone sets the optional phone number on the fixture.
func WithUserPhone(phone string) UserOption {
	return func(f *UserFixture) {
		value := phone
		f.Phone = &value
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// AsManager marks the fixture as a manager account.
func AsManager() UserOption {
	return WithUserRole(application.RoleManager)
}

// WithUserCreatedAt sets the created timestamp on the fixture.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     copyStringPtr(f.Phone),
		Role:      f.Role,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		Phone:        copyStringPtr(f.Phone),
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		CreatedAt:    f.CreatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	principal := application.Principal{
		UserID: f.ID,
		Role:   f.Role,
		Name:   f.Name,
		Email:  f.Email,
	}
	if f.Phone != nil {
		principal.Phone = *f.Phone
	}
	return principal
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room catalog entry.
type RoomFixture struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	CreatedAt   time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("ROOM %d", idx),
		Capacity:  int(10 + idx%20),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomDescription sets the room description.
func WithRoomDescription(description string) RoomOption {
	return func(f *RoomFixture) {
		f.Description = description
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:          f.ID,
		Name:        f.Name,
		Capacity:    f.Capacity,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:          f.ID,
		Name:        f.Name,
		Capacity:    f.Capacity,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}

// ---------------------------- Booking fixtures ---------------------------

// BookingFixture represents a deterministic booking request. Defaults describe
// a pending one-hour morning booking with requester details snapshotted.
type BookingFixture struct {
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
	Status         application.BookingStatus
	Reason         *string
	CreatedAt      time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional
// overrides. Successive fixtures claim consecutive non-overlapping hours.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	requesterID := fmt.Sprintf("user-%03d", idx)
	start := booking.TimeOfDay(9*60) + booking.TimeOfDay(idx%8)*60
	fixture := BookingFixture{
		ID:             fmt.Sprintf("booking-%03d", idx),
		RequesterID:    &requesterID,
		RequesterName:  fmt.Sprintf("Requester %03d", idx),
		RequesterEmail: fmt.Sprintf("%s@example.com", requesterID),
		Unit:           "General Affairs",
		RoomID:         "room-001",
		Date:           ReferenceDate(),
		Start:          start,
		End:            start + 60,
		Activity:       fmt.Sprintf("Meeting %03d", idx),
		Participants:   4,
		Status:         application.StatusPending,
		CreatedAt:      referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRequester snapshots requester identity fields from a user fixture.
func WithBookingRequester(user UserFixture) BookingOption {
	return func(f *BookingFixture) {
		id := user.ID
		f.RequesterID = &id
		f.RequesterName = user.Name
		f.RequesterEmail = user.Email
		f.RequesterPhone = copyStringPtr(user.Phone)
	}
}

// WithBookingRoom sets the target room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingDate sets the booking date.
func WithBookingDate(date string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithBookingSlot sets the start and end times as minutes since midnight.
func WithBookingSlot(start, end booking.TimeOfDay) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithBookingUnit sets the requesting unit.
func WithBookingUnit(unit string) BookingOption {
	return func(f *BookingFixture) {
		f.Unit = unit
	}
}

// WithBookingActivity sets the activity description.
func WithBookingActivity(activity string) BookingOption {
	return func(f *BookingFixture) {
		f.Activity = activity
	}
}

// WithBookingParticipants sets the participant count.
func WithBookingParticipants(count int) BookingOption {
	return func(f *BookingFixture) {
		f.Participants = count
	}
}

// WithBookingRequirements sets the optional requirements note.
func WithBookingRequirements(requirements string) BookingOption {
	return func(f *BookingFixture) {
		value := requirements
		f.Requirements = &value
	}
}

// WithBookingStatus sets the booking status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// Approved marks the fixture as an approved booking.
func Approved() BookingOption {
	return WithBookingStatus(application.StatusApproved)
}

// Declined marks the fixture as a declined booking with the given reason.
func Declined(reason string) BookingOption {
	return func(f *BookingFixture) {
		f.Status = application.StatusDeclined
		value := reason
		f.Reason = &value
	}
}

// WithBookingCreatedAt sets the created timestamp on the fixture.
func WithBookingCreatedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:             f.ID,
		RequesterID:    copyStringPtr(f.RequesterID),
		RequesterName:  f.RequesterName,
		RequesterEmail: f.RequesterEmail,
		RequesterPhone: copyStringPtr(f.RequesterPhone),
		Unit:           f.Unit,
		RoomID:         f.RoomID,
		Date:           f.Date,
		Start:          f.Start,
		End:            f.End,
		Activity:       f.Activity,
		Participants:   f.Participants,
		Requirements:   copyStringPtr(f.Requirements),
		Status:         f.Status,
		Reason:         copyStringPtr(f.Reason),
		CreatedAt:      f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:             f.ID,
		RequesterID:    copyStringPtr(f.RequesterID),
		RequesterName:  f.RequesterName,
		RequesterEmail: f.RequesterEmail,
		RequesterPhone: copyStringPtr(f.RequesterPhone),
		Unit:           f.Unit,
		RoomID:         f.RoomID,
		Date:           f.Date,
		Start:          f.Start,
		End:            f.End,
		Activity:       f.Activity,
		Participants:   f.Participants,
		Requirements:   copyStringPtr(f.Requirements),
		Status:         string(f.Status),
		Reason:         copyStringPtr(f.Reason),
		CreatedAt:      f.CreatedAt,
	}
}

// Input returns the fixture as an application.BookingInput draft.
func (f BookingFixture) Input() application.BookingInput {
	input := application.BookingInput{
		RequesterName:  f.RequesterName,
		RequesterEmail: f.RequesterEmail,
		Unit:           f.Unit,
		RoomID:         f.RoomID,
		Date:           f.Date,
		StartTime:      f.Start.String(),
		EndTime:        f.End.String(),
		Activity:       f.Activity,
		Participants:   f.Participants,
	}
	if f.RequesterPhone != nil {
		input.RequesterPhone = *f.RequesterPhone
	}
	if f.Requirements != nil {
		input.Requirements = *f.Requirements
	}
	return input
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
