package model

import (
	"regexp"
	"strings"
)

// RejectReason identifies why a booking request was turned down. Every reason
// maps to its own user-facing message; rejections are expected outcomes, not
// errors.
type RejectReason string

const (
	RejectNone             RejectReason = ""
	RejectMissingSelection RejectReason = "missing_selection"
	RejectDayDisabled      RejectReason = "day_disabled"
	RejectSlotDisabled     RejectReason = "slot_disabled"
	RejectAlreadyBooked    RejectReason = "already_booked"
	RejectMissingName      RejectReason = "missing_name"
	RejectInvalidPhone     RejectReason = "invalid_phone"
)

var rejectMessages = map[RejectReason]string{
	RejectMissingSelection: "select a day and a time slot first",
	RejectDayDisabled:      "this day is disabled and cannot be booked",
	RejectSlotDisabled:     "this time slot has been disabled",
	RejectAlreadyBooked:    "this time slot is already booked",
	RejectMissingName:      "first name and last name are required",
	RejectInvalidPhone:     "enter a valid phone number (10 to 14 digits)",
}

// Message returns the user-facing text for a rejection.
func (r RejectReason) Message() string {
	return rejectMessages[r]
}

// BookingPayload is the candidate visitor detail submitted with a booking
// request, before validation.
type BookingPayload struct {
	FirstName string
	LastName  string
	Phone     string
}

var phonePattern = regexp.MustCompile(`^\+?\d{10,14}$`)

// NormalizePhone strips whitespace and hyphens from a phone number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r', '-':
			return -1
		}

		return r
	}, phone)
}

// ValidateBooking decides whether a booking may be placed on (day, slot) given
// the current state. Checks run in a fixed order and the first failure wins,
// since callers surface the reason's message directly.
//
// On acceptance the returned record carries the normalized phone while the
// names are stored exactly as given; trimming is applied to the names only for
// the emptiness check.
func ValidateBooking(state *State, day, slot string, payload BookingPayload) (BookingRecord, RejectReason) {
	if day == "" || slot == "" {
		return BookingRecord{}, RejectMissingSelection
	}

	if state.IsDayDisabled(day) {
		return BookingRecord{}, RejectDayDisabled
	}

	if state.IsSlotDisabled(day, slot) {
		return BookingRecord{}, RejectSlotDisabled
	}

	if state.IsBooked(day, slot) {
		return BookingRecord{}, RejectAlreadyBooked
	}

	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		return BookingRecord{}, RejectMissingName
	}

	phone := NormalizePhone(payload.Phone)
	if !phonePattern.MatchString(phone) {
		return BookingRecord{}, RejectInvalidPhone
	}

	return BookingRecord{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     phone,
	}, RejectNone
}
