package service

import (
	"context"
	"errors"
	"sync"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

var ErrAvailabilitySuperseded = errors.New("availability superseded by a newer selection")

type (
	// Availability is advisory, the backend re-checks conflicts on reservation.
	Availability struct {
		StationID string
		Date      string
		Blocked   domain.BlockedSlotSet
		Degraded  bool
	}

	availabilityQuery struct {
		stationID string
		date      string
	}
)

func (a Availability) Slots(durationHours int, grid []string) []domain.SlotAvailability {
	return domain.AvailableSlots(a.Date, durationHours, a.Blocked, grid)
}

func (a Availability) matches(stationID, date string) bool {
	return a.StationID == stationID && a.Date == date
}

type AvailabilityTracker struct {
	api    domain.BookingAPI
	logger log.Logger

	mu         sync.Mutex
	generation uint64
	latest     availabilityQuery
	current    *Availability
}

// Select fetches bookings for the station day and applies the result unless a newer Select was issued meanwhile.
// A failed fetch yields an empty blocked set marked as degraded.
func (t *AvailabilityTracker) Select(ctx context.Context, stationID, date string) (Availability, error) {
	query := availabilityQuery{stationID: stationID, date: date}

	t.mu.Lock()
	t.generation++
	generation := t.generation
	t.latest = query
	t.mu.Unlock()

	availability := Availability{StationID: stationID, Date: date}
	bookings, err := t.api.StationBookings(ctx, stationID, date)
	if err != nil {
		t.logger.
			With(log.Fields{"stationID": stationID, "date": date}).
			WithError(err).
			Warn(ctx, "failed to fetch station bookings, all slots treated as free")
		availability.Blocked = domain.BlockedSlotSet{}
		availability.Degraded = true
	} else {
		availability.Blocked = domain.ComputeBlockedSlots(domain.ActiveBookings(bookings))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if generation != t.generation || t.latest != query {
		return availability, ErrAvailabilitySuperseded
	}

	t.current = &availability
	return availability, nil
}

func (t *AvailabilityTracker) Current() (Availability, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Availability{}, false
	}
	return *t.current, true
}

func NewAvailabilityTracker(api domain.BookingAPI, logger log.Logger) *AvailabilityTracker {
	return &AvailabilityTracker{
		api:    api,
		logger: logger,
	}
}
