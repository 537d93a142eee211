package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bijuliyatra/bijuli-client/internal/booking/domain"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
)

var getStationRoute = pkghttp.Route{Method: http.MethodGet, URL: "/admin/stations/{stationID}"}

type stationAPI struct {
	client pkghttp.Client
}

func NewStationAPI(client pkghttp.Client) domain.StationAPI {
	return stationAPI{client: client}
}

func (a stationAPI) Station(ctx context.Context, stationID string) (domain.Station, error) {
	req := a.client.NewRequest(ctx).SetPathParam("stationID", stationID)
	resp, err := a.client.Send(req, getStationRoute)
	if err != nil {
		return domain.Station{}, fmt.Errorf("request station.get: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.Station{}, domain.ErrStationNotFound
	}

	body, err := pkghttp.ParseJSONBody[StationOut](resp)
	if err != nil {
		return domain.Station{}, fmt.Errorf("station.get response: %w", err)
	}

	return toDomainStation(body), nil
}
