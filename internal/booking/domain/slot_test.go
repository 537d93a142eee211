package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	result, err := time.ParseInLocation("2006-01-02T15:04", value, time.Local)
	require.NoError(t, err)
	return result
}

func TestComputeBlockedSlots_BufferInclusion(t *testing.T) {
	blocked := domain.ComputeBlockedSlots([]domain.Booking{
		{StartTime: at(t, "2025-03-10T10:00"), EndTime: at(t, "2025-03-10T11:30")},
	})

	assert.Equal(t, []string{"2025-03-10T10:00", "2025-03-10T11:00"}, blocked.Keys())
	assert.False(t, blocked.Contains(at(t, "2025-03-10T12:00")))
}

func TestComputeBlockedSlots_Returns(t *testing.T) {
	tests := []struct {
		name     string
		bookings []domain.Booking
		expected []string
	}{
		{
			name:     "empty_for_no_bookings",
			bookings: nil,
			expected: []string{},
		},
		{
			name: "buffer_reaching_next_hour_blocks_it",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T10:00"), EndTime: at(t, "2025-03-10T11:50")},
			},
			expected: []string{"2025-03-10T10:00", "2025-03-10T11:00", "2025-03-10T12:00"},
		},
		{
			name: "buffer_ending_exactly_on_hour_does_not_block_it",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T10:00"), EndTime: at(t, "2025-03-10T10:45")},
			},
			expected: []string{"2025-03-10T10:00"},
		},
		{
			name: "hour_aligned_end_blocks_following_slot",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T14:00"), EndTime: at(t, "2025-03-10T16:00")},
			},
			expected: []string{"2025-03-10T14:00", "2025-03-10T15:00", "2025-03-10T16:00"},
		},
		{
			name: "unaligned_start_is_truncated_to_hour",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T09:30"), EndTime: at(t, "2025-03-10T09:40")},
			},
			expected: []string{"2025-03-10T09:00"},
		},
		{
			name: "overlapping_bookings_are_merged",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T12:00"), EndTime: at(t, "2025-03-10T13:00")},
				{StartTime: at(t, "2025-03-10T08:00"), EndTime: at(t, "2025-03-10T09:00")},
				{StartTime: at(t, "2025-03-10T12:30"), EndTime: at(t, "2025-03-10T13:30")},
			},
			expected: []string{
				"2025-03-10T08:00", "2025-03-10T09:00",
				"2025-03-10T12:00", "2025-03-10T13:00",
			},
		},
		{
			name: "booking_crossing_midnight_blocks_next_day",
			bookings: []domain.Booking{
				{StartTime: at(t, "2025-03-10T23:00"), EndTime: at(t, "2025-03-11T00:30")},
			},
			expected: []string{"2025-03-10T23:00", "2025-03-11T00:00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ComputeBlockedSlots(tt.bookings).Keys())
		})
	}
}

func TestComputeBlockedSlots_OrderIndependent(t *testing.T) {
	first := domain.Booking{StartTime: at(t, "2025-03-10T08:00"), EndTime: at(t, "2025-03-10T10:00")}
	second := domain.Booking{StartTime: at(t, "2025-03-10T15:00"), EndTime: at(t, "2025-03-10T15:30")}

	assert.Equal(t,
		domain.ComputeBlockedSlots([]domain.Booking{first, second}),
		domain.ComputeBlockedSlots([]domain.Booking{second, first}),
	)
}

func TestComputeBlockedSlots_UsesWallClockOfBookingZone(t *testing.T) {
	kathmandu := time.FixedZone("NPT", 5*60*60+45*60)
	blocked := domain.ComputeBlockedSlots([]domain.Booking{{
		StartTime: time.Date(2025, 3, 10, 10, 0, 0, 0, kathmandu),
		EndTime:   time.Date(2025, 3, 10, 11, 0, 0, 0, kathmandu),
	}})

	assert.Equal(t, []string{"2025-03-10T10:00", "2025-03-10T11:00"}, blocked.Keys())
}

func TestIsSlotSelectable_DurationAware(t *testing.T) {
	blocked := domain.BlockedSlotSet{
		"2025-03-10T10:00": {},
		"2025-03-10T11:00": {},
	}

	assert.False(t, domain.IsSlotSelectable("09:00", "2025-03-10", 2, blocked))
	assert.True(t, domain.IsSlotSelectable("09:00", "2025-03-10", 1, blocked))
	assert.False(t, domain.IsSlotSelectable("10:00", "2025-03-10", 1, blocked))
	assert.True(t, domain.IsSlotSelectable("12:00", "2025-03-10", 4, blocked))
	assert.True(t, domain.IsSlotSelectable("10:00", "2025-03-11", 1, blocked))
}

func TestCheckSlot_Returns(t *testing.T) {
	blocked := domain.BlockedSlotSet{"2025-03-10T10:00": {}}

	tests := []struct {
		name     string
		date     string
		slot     string
		duration int
		expected domain.SlotConflict
	}{
		{name: "free", date: "2025-03-10", slot: "08:00", duration: 2, expected: domain.ConflictNone},
		{name: "slot_booked", date: "2025-03-10", slot: "10:00", duration: 1, expected: domain.ConflictBooked},
		{name: "later_hour_booked", date: "2025-03-10", slot: "08:00", duration: 3, expected: domain.ConflictInsufficientDuration},
		{name: "missing_date", date: "", slot: "08:00", duration: 1, expected: domain.ConflictInvalid},
		{name: "malformed_date", date: "10/03/2025", slot: "08:00", duration: 1, expected: domain.ConflictInvalid},
		{name: "malformed_slot", date: "2025-03-10", slot: "8am", duration: 1, expected: domain.ConflictInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict := domain.CheckSlot(tt.date, tt.slot, tt.duration, blocked)
			assert.Equal(t, tt.expected, conflict)
		})
	}
}

func TestSlotConflict_Err(t *testing.T) {
	assert.NoError(t, domain.ConflictNone.Err())
	assert.ErrorIs(t, domain.ConflictBooked.Err(), domain.ErrSlotUnavailable)
	assert.ErrorIs(t, domain.ConflictInsufficientDuration.Err(), domain.ErrInsufficientDuration)
	assert.ErrorIs(t, domain.ConflictInvalid.Err(), domain.ErrInvalidSlot)
}

func TestAvailableSlots_CoversGrid(t *testing.T) {
	blocked := domain.ComputeBlockedSlots([]domain.Booking{
		{StartTime: at(t, "2025-03-10T10:00"), EndTime: at(t, "2025-03-10T11:30")},
	})

	slots := domain.AvailableSlots("2025-03-10", 2, blocked, domain.DefaultSlotGrid)
	require.Len(t, slots, len(domain.DefaultSlotGrid))

	byTime := make(map[string]domain.SlotAvailability, len(slots))
	for _, slot := range slots {
		byTime[slot.Slot] = slot
	}

	assert.True(t, byTime["08:00"].Selectable)
	assert.Equal(t, domain.ConflictInsufficientDuration, byTime["09:00"].Conflict)
	assert.Equal(t, domain.ConflictBooked, byTime["10:00"].Conflict)
	assert.Equal(t, domain.ConflictBooked, byTime["11:00"].Conflict)
	assert.True(t, byTime["12:00"].Selectable)
	assert.True(t, byTime["20:00"].Selectable)
}
