package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipper/internal/domains/schedule/model"
)

func TestState_ToggleDayDisabled(t *testing.T) {
	state := model.DefaultState()

	state.ToggleDayDisabled("2026-09-01")
	assert.True(t, state.IsDayDisabled("2026-09-01"))

	state.ToggleDayDisabled("2026-09-01")
	assert.False(t, state.IsDayDisabled("2026-09-01"))
	assert.NotContains(t, state.DisabledDays, "2026-09-01", "re-enabling must remove the key, not store false")
}

func TestState_ToggleSlotDisabled(t *testing.T) {
	state := model.DefaultState()

	state.ToggleSlotDisabled("2026-09-01", "10:00")
	assert.True(t, state.IsSlotDisabled("2026-09-01", "10:00"))
	assert.False(t, state.IsSlotDisabled("2026-09-01", "10:30"))
	assert.False(t, state.IsDayDisabled("2026-09-01"), "slot flags are independent of the day flag")

	state.ToggleSlotDisabled("2026-09-01", "10:00")
	assert.False(t, state.IsSlotDisabled("2026-09-01", "10:00"))
	assert.NotContains(t, state.DisabledSlots, "2026-09-01", "emptied inner map must be dropped")
}

func TestState_Bookings(t *testing.T) {
	state := model.DefaultState()
	record := model.BookingRecord{FirstName: "Sara", LastName: "Ahmadi", Phone: "09123456789"}

	state.SetBooking("2026-09-01", "10:00", record)
	assert.True(t, state.IsBooked("2026-09-01", "10:00"))

	got, booked := state.Booking("2026-09-01", "10:00")
	assert.True(t, booked)
	assert.Equal(t, record, got)

	// Overwrite replaces the record wholesale.
	replacement := model.BookingRecord{FirstName: "Nima", LastName: "Karimi", Phone: "09120000000"}
	state.SetBooking("2026-09-01", "10:00", replacement)

	got, _ = state.Booking("2026-09-01", "10:00")
	assert.Equal(t, replacement, got)

	state.RemoveBooking("2026-09-01", "10:00")
	assert.False(t, state.IsBooked("2026-09-01", "10:00"))
	assert.NotContains(t, state.Bookings, "2026-09-01")

	// Removing what is not there is fine.
	state.RemoveBooking("2026-09-01", "10:00")
	state.RemoveBooking("2030-01-01", "09:00")
}

func TestState_ClearCalendarKeepsWindow(t *testing.T) {
	state := model.DefaultState()
	state.SetWindow(8, 18)
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: "a", LastName: "b", Phone: "09123456789"})
	state.ToggleDayDisabled("2026-09-02")
	state.ToggleSlotDisabled("2026-09-03", "11:00")

	state.ClearCalendar()

	assert.Empty(t, state.Bookings)
	assert.Empty(t, state.DisabledDays)
	assert.Empty(t, state.DisabledSlots)
	assert.Equal(t, 8, state.StartHour)
	assert.Equal(t, 18, state.EndHour)
}

func TestState_SetWindow(t *testing.T) {
	tests := []struct {
		name      string
		startHour int
		endHour   int
		wantStart int
		wantEnd   int
	}{
		{name: "in range", startHour: 8, endHour: 18, wantStart: 8, wantEnd: 18},
		{name: "start below range", startHour: -3, endHour: 18, wantStart: 0, wantEnd: 18},
		{name: "start above range", startHour: 30, endHour: 18, wantStart: 23, wantEnd: 18},
		{name: "end below range", startHour: 9, endHour: 0, wantStart: 9, wantEnd: 1},
		{name: "end above range", startHour: 9, endHour: 25, wantStart: 9, wantEnd: 24},
		{name: "degenerate window is kept", startHour: 18, endHour: 9, wantStart: 18, wantEnd: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.DefaultState()
			state.SetWindow(tt.startHour, tt.endHour)

			assert.Equal(t, tt.wantStart, state.StartHour)
			assert.Equal(t, tt.wantEnd, state.EndHour)
		})
	}
}

func TestState_SetWindowKeepsOutOfWindowBookings(t *testing.T) {
	state := model.DefaultState()
	state.SetBooking("2026-09-01", "20:00", model.BookingRecord{FirstName: "a", LastName: "b", Phone: "09123456789"})

	state.SetWindow(9, 12)

	assert.True(t, state.IsBooked("2026-09-01", "20:00"))
	assert.NotContains(t, state.Slots(), "20:00")
}

func TestState_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		check func(t *testing.T, state model.State)
	}{
		{
			name: "empty object falls back to defaults",
			blob: `{}`,
			check: func(t *testing.T, state model.State) {
				assert.Equal(t, model.DefaultState(), state)
			},
		},
		{
			name: "absent window defaults while data is kept",
			blob: `{"bookings":{"2026-09-01":{"10:00":{"firstName":"Sara","lastName":"Ahmadi","phone":"09123456789"}}}}`,
			check: func(t *testing.T, state model.State) {
				assert.Equal(t, model.DefaultStartHour, state.StartHour)
				assert.Equal(t, model.DefaultEndHour, state.EndHour)
				assert.True(t, state.IsBooked("2026-09-01", "10:00"))
			},
		},
		{
			name: "explicit zero start hour is preserved",
			blob: `{"startHour":0,"endHour":6}`,
			check: func(t *testing.T, state model.State) {
				assert.Equal(t, 0, state.StartHour)
				assert.Equal(t, 6, state.EndHour)
			},
		},
		{
			name: "null mappings load as empty",
			blob: `{"bookings":null,"disabledDays":null,"disabledSlots":null,"startHour":9,"endHour":21}`,
			check: func(t *testing.T, state model.State) {
				assert.NotNil(t, state.Bookings)
				assert.NotNil(t, state.DisabledDays)
				assert.NotNil(t, state.DisabledSlots)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var state model.State

			require.NoError(t, json.Unmarshal([]byte(tt.blob), &state))

			tt.check(t, state)
		})
	}
}

func TestState_JSONRoundTrip(t *testing.T) {
	state := model.DefaultState()
	state.SetWindow(8, 18)
	state.SetBooking("2026-09-01", "10:00", model.BookingRecord{FirstName: " Sara ", LastName: "Ahmadi", Phone: "09123456789"})
	state.ToggleDayDisabled("2026-09-02")
	state.ToggleSlotDisabled("2026-09-01", "11:30")

	blob, err := json.Marshal(state)
	require.NoError(t, err)

	var restored model.State
	require.NoError(t, json.Unmarshal(blob, &restored))

	assert.Equal(t, state, restored)
}
