package domain

import (
	"errors"
	"sort"
	"time"
)

const (
	BufferWindow = 15 * time.Minute
	SlotStep     = time.Hour

	DateLayout    = "2006-01-02"
	SlotLayout    = "15:04"
	slotKeyLayout = "2006-01-02T15:04"
)

const (
	ConflictNone SlotConflict = iota
	ConflictInvalid
	ConflictBooked
	ConflictInsufficientDuration
)

var (
	ErrInvalidSlot          = errors.New("slot date or time is missing or malformed")
	ErrSlotUnavailable      = errors.New("slot is booked or within the 15-minute buffer of another booking")
	ErrInsufficientDuration = errors.New("not enough free time after the slot for the requested duration")
)

// DefaultSlotGrid lists the hourly start times offered for a station day.
var DefaultSlotGrid = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
}

type (
	// BlockedSlotSet holds wall-clock slot keys in YYYY-MM-DDTHH:mm form.
	BlockedSlotSet map[string]struct{}

	SlotConflict int

	SlotAvailability struct {
		Slot       string
		Selectable bool
		Conflict   SlotConflict
	}
)

// ComputeBlockedSlots marks every hour slot from the booking start hour while it starts before end plus buffer.
func ComputeBlockedSlots(bookings []Booking) BlockedSlotSet {
	blocked := make(BlockedSlotSet)
	for _, booking := range bookings {
		bufferEnd := wallClock(booking.EndTime).Add(BufferWindow)
		for current := truncateToHour(wallClock(booking.StartTime)); current.Before(bufferEnd); current = current.Add(SlotStep) {
			blocked[slotKey(current)] = struct{}{}
		}
	}

	return blocked
}

func (s BlockedSlotSet) Contains(t time.Time) bool {
	_, ok := s[slotKey(truncateToHour(wallClock(t)))]
	return ok
}

func (s BlockedSlotSet) Keys() []string {
	result := make([]string, 0, len(s))
	for key := range s {
		result = append(result, key)
	}

	sort.Strings(result)
	return result
}

// CheckSlot walks the requested window hour by hour and reports the first conflict.
func CheckSlot(date, slot string, durationHours int, blocked BlockedSlotSet) SlotConflict {
	start, err := parseSlot(date, slot)
	if err != nil {
		return ConflictInvalid
	}

	if _, ok := blocked[slotKey(start)]; ok {
		return ConflictBooked
	}

	for i := 1; i < durationHours; i++ {
		if _, ok := blocked[slotKey(start.Add(time.Duration(i)*SlotStep))]; ok {
			return ConflictInsufficientDuration
		}
	}

	return ConflictNone
}

func IsSlotSelectable(slot, date string, durationHours int, blocked BlockedSlotSet) bool {
	return CheckSlot(date, slot, durationHours, blocked) == ConflictNone
}

func AvailableSlots(date string, durationHours int, blocked BlockedSlotSet, grid []string) []SlotAvailability {
	result := make([]SlotAvailability, 0, len(grid))
	for _, slot := range grid {
		conflict := CheckSlot(date, slot, durationHours, blocked)
		result = append(result, SlotAvailability{
			Slot:       slot,
			Selectable: conflict == ConflictNone,
			Conflict:   conflict,
		})
	}

	return result
}

func (c SlotConflict) Err() error {
	switch c {
	case ConflictInvalid:
		return ErrInvalidSlot
	case ConflictBooked:
		return ErrSlotUnavailable
	case ConflictInsufficientDuration:
		return ErrInsufficientDuration
	default:
		return nil
	}
}

func (c SlotConflict) String() string {
	switch c {
	case ConflictNone:
		return "free"
	case ConflictInvalid:
		return "invalid"
	case ConflictBooked:
		return "booked"
	case ConflictInsufficientDuration:
		return "insufficient duration"
	default:
		return "unknown"
	}
}

// SlotStart resolves a date and HH:mm slot to an instant in loc.
func SlotStart(date, slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateLayout+" "+SlotLayout, date+" "+slot, loc)
	if err != nil {
		return time.Time{}, ErrInvalidSlot
	}

	return t, nil
}

func parseSlot(date, slot string) (time.Time, error) {
	if date == "" || slot == "" {
		return time.Time{}, ErrInvalidSlot
	}

	return SlotStart(date, slot, time.UTC)
}

// wallClock drops the zone keeping the displayed date and time, slot keys are compared by wall clock.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func slotKey(t time.Time) string {
	return t.Format(slotKeyLayout)
}
