package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
)

var (
	stationBookingsRoute = pkghttp.Route{Method: http.MethodGet, URL: "/stations/{stationID}/bookings"}
	createBookingRoute   = pkghttp.Route{Method: http.MethodPost, URL: "/bookings"}
	listBookingsRoute    = pkghttp.Route{Method: http.MethodGet, URL: "/bookings"}
	cancelBookingRoute   = pkghttp.Route{Method: http.MethodDelete, URL: "/bookings/{bookingID}"}
)

type bookingAPI struct {
	client   pkghttp.Client
	location *time.Location
}

func NewBookingAPI(client pkghttp.Client, location *time.Location) domain.BookingAPI {
	if location == nil {
		location = time.Local
	}

	return bookingAPI{client: client, location: location}
}

func (a bookingAPI) StationBookings(ctx context.Context, stationID, date string) ([]domain.Booking, error) {
	req := a.client.NewRequest(ctx).
		SetPathParam("stationID", stationID).
		SetQueryParam("date", date)
	resp, err := a.client.Send(req, stationBookingsRoute)
	if err != nil {
		return nil, fmt.Errorf("request booking.stationBookings: %w", err)
	}

	body, err := pkghttp.ParseJSONBody[[]BookingOut](resp)
	if err != nil {
		return nil, fmt.Errorf("booking.stationBookings response: %w", err)
	}

	return toDomainBookings(body, a.location)
}

func (a bookingAPI) Reserve(ctx context.Context, reservation domain.Reservation) (domain.ReservationResult, error) {
	req := a.client.NewRequest(ctx).SetBody(toReservationIn(reservation, a.location))
	resp, err := a.client.Send(req, createBookingRoute)
	if err != nil {
		return domain.ReservationResult{}, fmt.Errorf("request booking.create: %w", err)
	}

	body, err := pkghttp.ParseJSONBody[ReservationOut](resp)
	if err != nil {
		return domain.ReservationResult{}, fmt.Errorf("booking.create response: %w", err)
	}

	return toDomainReservationResult(body), nil
}

func (a bookingAPI) List(ctx context.Context) ([]domain.Booking, error) {
	resp, err := a.client.Send(a.client.NewRequest(ctx), listBookingsRoute)
	if err != nil {
		return nil, fmt.Errorf("request booking.list: %w", err)
	}

	body, err := pkghttp.ParseJSONBody[[]BookingOut](resp)
	if err != nil {
		return nil, fmt.Errorf("booking.list response: %w", err)
	}

	return toDomainBookings(body, a.location)
}

func (a bookingAPI) Cancel(ctx context.Context, bookingID string) (string, error) {
	req := a.client.NewRequest(ctx).SetPathParam("bookingID", bookingID)
	resp, err := a.client.Send(req, cancelBookingRoute)
	if err != nil {
		return "", fmt.Errorf("request booking.cancel: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", domain.ErrBookingNotFound
	}

	err = pkghttp.CheckResponse(resp)
	if err != nil {
		return "", fmt.Errorf("booking.cancel response: %w", err)
	}

	return strings.TrimSpace(resp.String()), nil
}
