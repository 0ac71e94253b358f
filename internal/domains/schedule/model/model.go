package model

import (
	"clipper/shared/constant"
	"encoding/json"
	"time"
)

const (
	EntityName = "schedule"

	// Built-in operating window used when no window has been stored yet.
	DefaultStartHour = 9
	DefaultEndHour   = 21
)

// BookingRecord is the visitor detail stored for one booked slot.
// Field names follow the persisted state layout and must not change.
type BookingRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// State is the whole availability aggregate: bookings, day-level and
// slot-level disabled flags, and the operating window. It is persisted and
// restored as a single unit.
type State struct {
	Bookings      map[string]map[string]BookingRecord `json:"bookings"`
	DisabledDays  map[string]bool                     `json:"disabledDays"`
	DisabledSlots map[string]map[string]bool          `json:"disabledSlots"`
	StartHour     int                                 `json:"startHour"`
	EndHour       int                                 `json:"endHour"`
}

// DayKey formats a point in time as the canonical YYYY-MM-DD key of its day.
// Callers are expected to pass times already in the application timezone.
func DayKey(t time.Time) string {
	return t.Format(constant.DayKeyLayout)
}

// DefaultState returns an empty calendar with the built-in operating window.
func DefaultState() State {
	return State{
		Bookings:      map[string]map[string]BookingRecord{},
		DisabledDays:  map[string]bool{},
		DisabledSlots: map[string]map[string]bool{},
		StartHour:     DefaultStartHour,
		EndHour:       DefaultEndHour,
	}
}

// UnmarshalJSON restores a State from its persisted form. Absent mappings
// default to empty and an absent window falls back to the built-in hours, so
// partially populated blobs load without error.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Bookings      map[string]map[string]BookingRecord `json:"bookings"`
		DisabledDays  map[string]bool                     `json:"disabledDays"`
		DisabledSlots map[string]map[string]bool          `json:"disabledSlots"`
		StartHour     *int                                `json:"startHour"`
		EndHour       *int                                `json:"endHour"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = DefaultState()

	if raw.Bookings != nil {
		s.Bookings = raw.Bookings
	}

	if raw.DisabledDays != nil {
		s.DisabledDays = raw.DisabledDays
	}

	if raw.DisabledSlots != nil {
		s.DisabledSlots = raw.DisabledSlots
	}

	if raw.StartHour != nil {
		s.StartHour = *raw.StartHour
	}

	if raw.EndHour != nil {
		s.EndHour = *raw.EndHour
	}

	return nil
}

func (s *State) IsDayDisabled(day string) bool {
	return s.DisabledDays[day]
}

func (s *State) IsSlotDisabled(day, slot string) bool {
	return s.DisabledSlots[day][slot]
}

func (s *State) IsBooked(day, slot string) bool {
	_, booked := s.Bookings[day][slot]

	return booked
}

func (s *State) Booking(day, slot string) (BookingRecord, bool) {
	record, booked := s.Bookings[day][slot]

	return record, booked
}

// ToggleDayDisabled flips the disabled flag of one day. Individual slot flags
// are untouched and reapply if the day is re-enabled.
func (s *State) ToggleDayDisabled(day string) {
	if s.DisabledDays[day] {
		delete(s.DisabledDays, day)

		return
	}

	s.DisabledDays[day] = true
}

// ToggleSlotDisabled flips the disabled flag of one slot, independent of the
// day-level flag.
func (s *State) ToggleSlotDisabled(day, slot string) {
	slots := s.DisabledSlots[day]
	if slots == nil {
		slots = map[string]bool{}
		s.DisabledSlots[day] = slots
	}

	if slots[slot] {
		delete(slots, slot)

		if len(slots) == 0 {
			delete(s.DisabledSlots, day)
		}

		return
	}

	slots[slot] = true
}

// SetBooking writes the record for a slot, replacing any existing one.
func (s *State) SetBooking(day, slot string, record BookingRecord) {
	bookings := s.Bookings[day]
	if bookings == nil {
		bookings = map[string]BookingRecord{}
		s.Bookings[day] = bookings
	}

	bookings[slot] = record
}

// RemoveBooking deletes the record for a slot. Removing an absent booking is
// a no-op.
func (s *State) RemoveBooking(day, slot string) {
	bookings := s.Bookings[day]

	delete(bookings, slot)

	if len(bookings) == 0 {
		delete(s.Bookings, day)
	}
}

// ClearCalendar resets bookings and disabled flags, keeping the operating
// window as it is.
func (s *State) ClearCalendar() {
	s.Bookings = map[string]map[string]BookingRecord{}
	s.DisabledDays = map[string]bool{}
	s.DisabledSlots = map[string]map[string]bool{}
}

// SetWindow stores a new operating window. Both bounds are clamped
// independently, so a degenerate window with startHour >= endHour is allowed
// and simply yields no slots.
func (s *State) SetWindow(startHour, endHour int) {
	s.StartHour = clamp(startHour, 0, 23)
	s.EndHour = clamp(endHour, 1, 24)
}

// Slots returns the slot labels of the current operating window.
func (s *State) Slots() []string {
	return GenerateSlots(s.StartHour, s.EndHour)
}

func clamp(value, low, high int) int {
	return min(high, max(low, value))
}
