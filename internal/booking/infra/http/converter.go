package http

import (
	"fmt"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
)

// localDateTimeLayout is how the backend reads and writes zone-less timestamps.
const localDateTimeLayout = "2006-01-02T15:04:05"

type (
	BookingOut struct {
		ID            pkgstrings.NumericString `json:"id"`
		StationID     pkgstrings.NumericString `json:"stationId"`
		StationName   string                   `json:"stationName"`
		StartTime     string                   `json:"startTime"`
		EndTime       string                   `json:"endTime"`
		ConnectorType string                   `json:"connectorType"`
		TotalAmount   *float64                 `json:"totalAmount"`
		Status        string                   `json:"status"`
	}

	ReservationIn struct {
		StationID     string `json:"stationId"`
		StartTime     string `json:"startTime"`
		EndTime       string `json:"endTime"`
		ConnectorType string `json:"connectorType"`
		PaymentMethod string `json:"paymentMethod"`
	}

	ReservationOut struct {
		BookingID     pkgstrings.NumericString `json:"bookingId"`
		PaymentURL    string                   `json:"paymentUrl"`
		Amount        float64                  `json:"amount"`
		PaymentMethod string                   `json:"paymentMethod"`
	}

	StationOut struct {
		ID         pkgstrings.NumericString `json:"id"`
		Name       string                   `json:"name"`
		Address    string                   `json:"address"`
		Status     string                   `json:"status"`
		DCFastRate *float64                 `json:"dcFastRate"`
		Level2Rate *float64                 `json:"level2Rate"`
	}
)

func toDomainBookings(bookings []BookingOut, loc *time.Location) ([]domain.Booking, error) {
	result := make([]domain.Booking, 0, len(bookings))
	for _, booking := range bookings {
		start, err := parseDateTime(booking.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("booking %s start time: %w", booking.ID, err)
		}
		end, err := parseDateTime(booking.EndTime, loc)
		if err != nil {
			return nil, fmt.Errorf("booking %s end time: %w", booking.ID, err)
		}

		var amount float64
		if booking.TotalAmount != nil {
			amount = *booking.TotalAmount
		}

		result = append(result, domain.Booking{
			ID:            booking.ID.String(),
			StationID:     booking.StationID.String(),
			StationName:   booking.StationName,
			StartTime:     start,
			EndTime:       end,
			ConnectorType: domain.ConnectorType(booking.ConnectorType),
			Status:        domain.Status(booking.Status),
			TotalAmount:   amount,
		})
	}

	return result, nil
}

func toReservationIn(reservation domain.Reservation, loc *time.Location) ReservationIn {
	return ReservationIn{
		StationID:     reservation.StationID,
		StartTime:     reservation.StartTime.In(loc).Format(localDateTimeLayout),
		EndTime:       reservation.EndTime.In(loc).Format(localDateTimeLayout),
		ConnectorType: string(reservation.ConnectorType),
		PaymentMethod: string(reservation.PaymentMethod),
	}
}

func toDomainReservationResult(out ReservationOut) domain.ReservationResult {
	return domain.ReservationResult{
		BookingID:     out.BookingID.String(),
		PaymentURL:    out.PaymentURL,
		Amount:        out.Amount,
		PaymentMethod: domain.PaymentMethod(out.PaymentMethod),
	}
}

func toDomainStation(out StationOut) domain.Station {
	return domain.Station{
		ID:         out.ID.String(),
		Name:       out.Name,
		Address:    out.Address,
		Status:     out.Status,
		DCFastRate: out.DCFastRate,
		Level2Rate: out.Level2Rate,
	}
}

// parseDateTime accepts RFC 3339 and zone-less timestamps, the latter are read in loc.
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.In(loc), nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"} {
		t, err = time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime %q", value)
}
