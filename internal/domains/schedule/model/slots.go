package model

import "fmt"

// GenerateSlots derives the ordered half-hour slot labels for an operating
// window. For every hour in [startHour, endHour) it emits "HH:00" and "HH:30".
// The sequence is recomputed from the window on every call and never stored.
// Callers are responsible for clamping the bounds; a window with
// startHour >= endHour produces no slots.
func GenerateSlots(startHour, endHour int) []string {
	if startHour >= endHour {
		return []string{}
	}

	slots := make([]string, 0, 2*(endHour-startHour))

	for h := startHour; h < endHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}

	return slots
}
