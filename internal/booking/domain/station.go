//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "StationAPI=StationAPI"
package domain

import (
	"context"
	"errors"
	"math"
)

const (
	DefaultDCFastRate = 60.0
	DefaultLevel2Rate = 40.0

	dcFastKWhPerHour = 25.0
	level2KWhPerHour = 15.0
)

var ErrStationNotFound = errors.New("station not found")

type (
	Station struct {
		ID         string
		Name       string
		Address    string
		Status     string
		DCFastRate *float64
		Level2Rate *float64
	}

	Estimate struct {
		Hours        float64
		EstimatedKWh float64
		Rate         float64
		TotalAmount  float64
	}

	StationAPI interface {
		Station(ctx context.Context, stationID string) (Station, error)
	}
)

// Rate falls back to the default tariff when the station has none configured.
func (s Station) Rate(connector ConnectorType) float64 {
	if connector == ConnectorDCFast {
		if s.DCFastRate != nil {
			return *s.DCFastRate
		}
		return DefaultDCFastRate
	}

	if s.Level2Rate != nil {
		return *s.Level2Rate
	}
	return DefaultLevel2Rate
}

func EstimateCost(station Station, connector ConnectorType, durationHours int) Estimate {
	hours := float64(durationHours)
	kwhPerHour := level2KWhPerHour
	if connector == ConnectorDCFast {
		kwhPerHour = dcFastKWhPerHour
	}

	rate := station.Rate(connector)
	kwh := hours * kwhPerHour
	return Estimate{
		Hours:        hours,
		EstimatedKWh: kwh,
		Rate:         rate,
		TotalAmount:  math.Round(rate * kwh),
	}
}
