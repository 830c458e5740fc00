package booking

// Slot identifies the room, date, and time range claimed by a booking request.
type Slot struct {
	RoomID string
	Date   string
	Start  TimeOfDay
	End    TimeOfDay
}

// Overlaps reports whether two slots contend for the same room time. Slots on
// different rooms or dates never overlap. Time ranges are half-open: a slot
// ending at 10:00 does not conflict with one starting at 10:00.
func Overlaps(a, b Slot) bool {
	if a.Date != b.Date || a.RoomID != b.RoomID {
		return false
	}
	return !(a.End <= b.Start || a.Start >= b.End)
}
