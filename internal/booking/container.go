package booking

import (
	"fmt"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/booking/app/service"
	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	bookinghttp "github.com/bijuliyatra/bijuli-client/internal/booking/infra/http"
	"github.com/bijuliyatra/bijuli-client/internal/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/pkg/env"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
	"github.com/bijuliyatra/bijuli-client/pkg/lazy"
)

const defaultTimeZone = "Asia/Kathmandu"

type DependencyContainer struct {
	BookingService lazy.Loader[*service.BookingService]
	Location       lazy.Loader[*time.Location]
}

// NewDependencyContainer expects a client that already authorizes requests.
func NewDependencyContainer(
	infra *cmd.InfrastructureContainer,
	client lazy.Loader[pkghttp.Client],
) *DependencyContainer {
	location := locationProvider()
	bookingAPI := lazy.New(func() (domain.BookingAPI, error) {
		return bookinghttp.NewBookingAPI(client.MustLoad(), location.MustLoad()), nil
	})
	tracker := lazy.New(func() (*service.AvailabilityTracker, error) {
		return service.NewAvailabilityTracker(bookingAPI.MustLoad(), infra.Logger.MustLoad()), nil
	})

	return &DependencyContainer{
		BookingService: lazy.New(func() (*service.BookingService, error) {
			return service.NewBookingService(
				bookingAPI.MustLoad(),
				bookinghttp.NewStationAPI(client.MustLoad()),
				tracker.MustLoad(),
				infra.Clock.MustLoad(),
				location.MustLoad(),
				infra.Logger.MustLoad(),
			), nil
		}),
		Location: location,
	}
}

func locationProvider() lazy.Loader[*time.Location] {
	return lazy.New(func() (*time.Location, error) {
		name := env.Must(env.ParseOrDefault("BOOKING_TIME_ZONE", defaultTimeZone))
		location, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("load booking time zone %s: %w", name, err)
		}
		return location, nil
	})
}
