package dto

import (
	"clipper/internal/domains/schedule/model"
	"clipper/shared"
)

const (
	SlotStatusOpen     = "open"
	SlotStatusBooked   = "booked"
	SlotStatusDisabled = "disabled"
)

// CreateBookingRequest only guards formats here; whether the booking is
// allowed (and in which precedence the reasons fire) is decided by the
// schedule model so the user-facing messages stay consistent.
type CreateBookingRequest struct {
	Date      string `json:"date"       validate:"omitempty,daykey"`
	Time      string `json:"time"       validate:"omitempty,slotlabel"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name"  validate:"omitempty,max=100"`
	Phone     string `json:"phone"      validate:"omitempty,max=30"`
}

func (c *CreateBookingRequest) ToPayload() model.BookingPayload {
	return model.BookingPayload{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
	}
}

// SetWindowRequest carries the requested operating window. Out-of-range
// bounds are clamped by the store, not rejected here.
type SetWindowRequest struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// ClearStateRequest guards the destructive clear-all with an explicit
// confirmation flag.
type ClearStateRequest struct {
	Confirm bool `json:"confirm"`
}

type BookingResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (r *BookingResponse) FromModel(day, slot string, record model.BookingRecord) {
	r.Date = day
	r.Time = slot
	r.FirstName = record.FirstName
	r.LastName = record.LastName
	r.Phone = record.Phone
}

type SlotView struct {
	Time    string           `json:"time"`
	Status  string           `json:"status"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

type DayChip struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Disabled bool   `json:"disabled"`
}

type GetDaysResponse struct {
	Days []DayChip `json:"days"`
}

type DayViewResponse struct {
	Date      string     `json:"date"`
	Weekday   string     `json:"weekday"`
	Disabled  bool       `json:"disabled"`
	StartHour int        `json:"start_hour"`
	EndHour   int        `json:"end_hour"`
	Slots     []SlotView `json:"slots"`
}

type WindowResponse struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromPage(page []BookingResponse, totalData, limit int) {
	r.Bookings = page
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)
}
