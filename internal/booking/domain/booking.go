//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "BookingAPI=BookingAPI"
package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bijuliyatra/bijuli-client/pkg/validation"
)

const (
	ConnectorDCFast ConnectorType = "DC Fast"
	ConnectorLevel2 ConnectorType = "Level 2"

	PaymentCard   PaymentMethod = "CARD"
	PaymentKhalti PaymentMethod = "KHALTI"
	PaymentEsewa  PaymentMethod = "ESEWA"

	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"

	DefaultDurationHours = 2
	MinDurationHours     = 1
	MaxDurationHours     = 4
	MinLeadTime          = 15 * time.Minute
)

var ErrBookingNotFound = errors.New("booking not found")

type (
	ConnectorType string
	PaymentMethod string
	Status        string

	Booking struct {
		ID            string
		StationID     string
		StationName   string
		StartTime     time.Time
		EndTime       time.Time
		ConnectorType ConnectorType
		Status        Status
		TotalAmount   float64
	}

	BookingRequest struct {
		StationID     string        `json:"stationId" validate:"required"`
		Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
		TimeSlot      string        `json:"timeSlot" validate:"required,datetime=15:04"`
		DurationHours int           `json:"durationHours" validate:"min=1,max=4"`
		ConnectorType ConnectorType `json:"connectorType" validate:"required,connector_type"`
		PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,payment_method"`
	}

	// Reservation is the submitted form of a BookingRequest.
	Reservation struct {
		StationID     string
		StartTime     time.Time
		EndTime       time.Time
		ConnectorType ConnectorType
		PaymentMethod PaymentMethod
	}

	ReservationResult struct {
		BookingID     string
		PaymentURL    string
		Amount        float64
		PaymentMethod PaymentMethod
	}
)

var (
	connectorTypes = []ConnectorType{ConnectorDCFast, ConnectorLevel2}
	paymentMethods = []PaymentMethod{PaymentCard, PaymentKhalti, PaymentEsewa}

	requestValidator = validation.New(
		validation.Rule{
			Tag: "connector_type",
			Func: func(fl validator.FieldLevel) bool {
				return slices.Contains(connectorTypes, ConnectorType(fl.Field().String()))
			},
			Message: fmt.Sprintf("must be one of: %s, %s", ConnectorDCFast, ConnectorLevel2),
		},
		validation.Rule{
			Tag: "payment_method",
			Func: func(fl validator.FieldLevel) bool {
				return slices.Contains(paymentMethods, PaymentMethod(fl.Field().String()))
			},
			Message: fmt.Sprintf("must be one of: %s, %s, %s", PaymentCard, PaymentKhalti, PaymentEsewa),
		},
	)
)

// WithDefaults fills the duration and payment method the booking form preselects.
func (r BookingRequest) WithDefaults() BookingRequest {
	if r.DurationHours == 0 {
		r.DurationHours = DefaultDurationHours
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentKhalti
	}
	return r
}

// Validate reports field errors as validation.Errors, start must be at least MinLeadTime after now.
func (r BookingRequest) Validate(now time.Time, loc *time.Location) error {
	err := requestValidator.Struct(r)
	if err != nil {
		return err
	}

	start, err := SlotStart(r.Date, r.TimeSlot, loc)
	if err != nil {
		return validation.Errors{{Field: "timeSlot", Rule: "datetime", Message: "must match format " + SlotLayout}}
	}
	if start.Before(now.Add(MinLeadTime)) {
		return validation.Errors{{
			Field:   "timeSlot",
			Rule:    "lead_time",
			Message: fmt.Sprintf("must be at least %d minutes from now", int(MinLeadTime.Minutes())),
		}}
	}

	return nil
}

func (r BookingRequest) Reservation(loc *time.Location) (Reservation, error) {
	start, err := SlotStart(r.Date, r.TimeSlot, loc)
	if err != nil {
		return Reservation{}, err
	}

	return Reservation{
		StationID:     r.StationID,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(r.DurationHours) * SlotStep),
		ConnectorType: r.ConnectorType,
		PaymentMethod: r.PaymentMethod,
	}, nil
}

// ActiveBookings keeps bookings which still occupy the charger.
func ActiveBookings(bookings []Booking) []Booking {
	result := make([]Booking, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Status == StatusCancelled {
			continue
		}
		result = append(result, booking)
	}
	return result
}

type BookingAPI interface {
	StationBookings(ctx context.Context, stationID, date string) ([]Booking, error)
	Reserve(ctx context.Context, reservation Reservation) (ReservationResult, error)
	List(ctx context.Context) ([]Booking, error)
	Cancel(ctx context.Context, bookingID string) (string, error)
}
