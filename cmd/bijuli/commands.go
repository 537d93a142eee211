package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/booking"
	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	"github.com/bijuliyatra/bijuli-client/internal/session"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/service"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
	"github.com/bijuliyatra/bijuli-client/pkg/validation"
)

var errNotSignedIn = errors.New("not signed in, run `bijuli login` first")

type (
	command func(ctx context.Context, args []string) error

	application struct {
		out      io.Writer
		sessions *session.DependencyContainer
		bookings *booking.DependencyContainer
	}
)

func (a *application) commands() map[string]command {
	return map[string]command{
		"login":      a.login,
		"verify-otp": a.verifyOTP,
		"logout":     a.logout,
		"status":     a.status,
		"slots":      a.slots,
		"book":       a.book,
		"bookings":   a.listBookings,
		"cancel":     a.cancel,
	}
}

func (a *application) login(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", os.Getenv("BIJULI_PASSWORD"), "account password, BIJULI_PASSWORD by default")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	outcome, err := a.sessions.AuthService.MustLoad().Login(ctx, auth.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.printLoginOutcome(outcome)
	return nil
}

func (a *application) verifyOTP(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("verify-otp", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	code := flags.String("code", "", "six digit code from the email")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	outcome, err := a.sessions.AuthService.MustLoad().VerifyOTP(ctx, auth.OTPVerification{Email: *email, Code: *code})
	if err != nil {
		return err
	}
	a.printLoginOutcome(outcome)
	return nil
}

func (a *application) logout(ctx context.Context, _ []string) error {
	a.sessions.AuthService.MustLoad().Logout(ctx)
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *application) status(_ context.Context, _ []string) error {
	state := a.sessions.Manager.MustLoad().State()
	if !state.Authenticated {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}

	fmt.Fprintf(a.out, "signed in as %s (id %s, role %s)\n", state.User.Email, state.User.UserID, state.User.Role)
	return nil
}

func (a *application) slots(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("slots", flag.ContinueOnError)
	stationID := flags.String("station", "", "station id")
	date := flags.String("date", a.today(), "date as YYYY-MM-DD")
	duration := flags.Int("duration", domain.DefaultDurationHours, "charging duration in hours")
	if err := flags.Parse(args); err != nil || *stationID == "" {
		return errUsage
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	availability, err := a.bookings.BookingService.MustLoad().Availability(ctx, *stationID, *date)
	if err != nil {
		return err
	}
	if availability.Degraded {
		fmt.Fprintln(a.out, "warning: existing bookings could not be loaded, all slots are shown as free")
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tSTATUS")
	for _, slot := range availability.Slots(*duration, domain.DefaultSlotGrid) {
		status := "free"
		if !slot.Selectable {
			status = slot.Conflict.String()
		}
		fmt.Fprintf(w, "%s\t%s\n", slot.Slot, status)
	}
	return w.Flush()
}

func (a *application) book(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("book", flag.ContinueOnError)
	req := domain.BookingRequest{}
	flags.StringVar(&req.StationID, "station", "", "station id")
	flags.StringVar(&req.Date, "date", a.today(), "date as YYYY-MM-DD")
	flags.StringVar(&req.TimeSlot, "slot", "", "start slot as HH:MM")
	flags.IntVar(&req.DurationHours, "duration", domain.DefaultDurationHours, "charging duration in hours")
	connector := flags.String("connector", string(domain.ConnectorDCFast), "connector type")
	payment := flags.String("payment", string(domain.PaymentKhalti), "payment method: CARD, KHALTI or ESEWA")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	req.ConnectorType = domain.ConnectorType(*connector)
	req.PaymentMethod = domain.PaymentMethod(strings.ToUpper(*payment))
	if err := a.requireSession(); err != nil {
		return err
	}

	bookingService := a.bookings.BookingService.MustLoad()
	estimate, err := bookingService.Estimate(ctx, req)
	if err == nil {
		fmt.Fprintln(a.out, formatEstimate(estimate))
	}

	result, err := bookingService.Submit(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "booking %s reserved, amount Rs. %.0f via %s\n", result.BookingID, result.Amount, result.PaymentMethod)
	if result.PaymentURL != "" {
		fmt.Fprintf(a.out, "complete payment at %s\n", result.PaymentURL)
	}
	return nil
}

func (a *application) listBookings(ctx context.Context, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	bookings, err := a.bookings.BookingService.MustLoad().List(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Fprintln(a.out, "no bookings")
		return nil
	}

	location := a.bookings.Location.MustLoad()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATION\tSTART\tEND\tCONNECTOR\tSTATUS\tAMOUNT")
	for _, b := range bookings {
		station := b.StationName
		if station == "" {
			station = b.StationID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.0f\n",
			b.ID,
			station,
			b.StartTime.In(location).Format("2006-01-02 15:04"),
			b.EndTime.In(location).Format("15:04"),
			b.ConnectorType,
			b.Status,
			b.TotalAmount,
		)
	}
	return w.Flush()
}

func (a *application) cancel(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("cancel", flag.ContinueOnError)
	bookingID := flags.String("id", "", "booking id")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	msg, err := a.bookings.BookingService.MustLoad().Cancel(ctx, *bookingID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *application) requireSession() error {
	if !a.sessions.Manager.MustLoad().State().Authenticated {
		return errNotSignedIn
	}
	return nil
}

func (a *application) today() string {
	return time.Now().In(a.bookings.Location.MustLoad()).Format(domain.DateLayout)
}

func (a *application) printLoginOutcome(outcome service.LoginOutcome) {
	if outcome.OTPRequired {
		fmt.Fprintf(a.out, "%s, run `bijuli verify-otp -email %s -code <code>`\n", outcome.Message, outcome.Email)
		return
	}

	fmt.Fprintf(a.out, "signed in as %s\n", outcome.State.User.Email)
}

func formatEstimate(estimate domain.Estimate) string {
	return fmt.Sprintf("estimate: %g h, ~%.0f kWh at Rs. %.2f/kWh = Rs. %.0f",
		estimate.Hours, estimate.EstimatedKWh, estimate.Rate, estimate.TotalAmount)
}

func describeError(err error) string {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			parts = append(parts, fieldErr.Field+" "+fieldErr.Message)
		}
		return strings.Join(parts, "; ")
	}

	switch {
	case errors.Is(err, errNotSignedIn),
		errors.Is(err, errVolatileSession),
		errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrInsufficientDuration),
		errors.Is(err, domain.ErrInvalidSlot),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrStationNotFound):
		return err.Error()
	case errors.Is(err, pkghttp.ErrUnauthorized):
		return "session expired, sign in again"
	default:
		return pkghttp.UserMessage(err)
	}
}
