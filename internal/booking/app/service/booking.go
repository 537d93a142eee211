package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	pkgtime "github.com/bijuliyatra/bijuli-client/pkg/time"
)

type BookingService struct {
	api      domain.BookingAPI
	stations domain.StationAPI
	tracker  *AvailabilityTracker
	clock    pkgtime.Clock
	location *time.Location
	logger   log.Logger
}

// Submit validates the request and the advisory availability before any reservation call.
func (s *BookingService) Submit(ctx context.Context, req domain.BookingRequest) (domain.ReservationResult, error) {
	req = req.WithDefaults()
	err := req.Validate(s.clock.Now(ctx), s.location)
	if err != nil {
		return domain.ReservationResult{}, err
	}

	availability, err := s.availabilityFor(ctx, req.StationID, req.Date)
	if err != nil {
		return domain.ReservationResult{}, err
	}

	err = domain.CheckSlot(req.Date, req.TimeSlot, req.DurationHours, availability.Blocked).Err()
	if err != nil {
		return domain.ReservationResult{}, err
	}

	reservation, err := req.Reservation(s.location)
	if err != nil {
		return domain.ReservationResult{}, err
	}

	result, err := s.api.Reserve(ctx, reservation)
	if err != nil {
		return domain.ReservationResult{}, fmt.Errorf("reserve slot: %w", err)
	}

	s.logger.With(log.Fields{
		"bookingID": result.BookingID,
		"stationID": reservation.StationID,
		"startTime": reservation.StartTime.Format(time.RFC3339),
	}).Info(ctx, "booking reserved")
	return result, nil
}

func (s *BookingService) Availability(ctx context.Context, stationID, date string) (Availability, error) {
	availability, err := s.tracker.Select(ctx, stationID, date)
	if err != nil && !errors.Is(err, ErrAvailabilitySuperseded) {
		return Availability{}, err
	}

	return availability, nil
}

func (s *BookingService) Estimate(ctx context.Context, req domain.BookingRequest) (domain.Estimate, error) {
	req = req.WithDefaults()
	station, err := s.stations.Station(ctx, req.StationID)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("get station %s: %w", req.StationID, err)
	}

	return domain.EstimateCost(station, req.ConnectorType, req.DurationHours), nil
}

func (s *BookingService) List(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID string) (string, error) {
	if bookingID == "" {
		return "", domain.ErrBookingNotFound
	}

	msg, err := s.api.Cancel(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	s.logger.WithField("bookingID", bookingID).Info(ctx, "booking cancelled")
	return msg, nil
}

func (s *BookingService) availabilityFor(ctx context.Context, stationID, date string) (Availability, error) {
	availability, ok := s.tracker.Current()
	if ok && availability.matches(stationID, date) {
		return availability, nil
	}

	return s.Availability(ctx, stationID, date)
}

func NewBookingService(
	api domain.BookingAPI,
	stations domain.StationAPI,
	tracker *AvailabilityTracker,
	clock pkgtime.Clock,
	location *time.Location,
	logger log.Logger,
) *BookingService {
	if location == nil {
		location = time.Local
	}

	return &BookingService{
		api:      api,
		stations: stations,
		tracker:  tracker,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}
