// Package geo computes route distances on the WGS-84 ellipsoid.
package geo

import (
	"math"

	"railway/pkg/apperr"

	"github.com/tidwall/geodesic"
)

type Point struct {
	Latitude  float64
	Longitude float64
}

func (p Point) Validate() error {
	fields := map[string]string{}
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		fields["latitude"] = "must be between -90 and 90"
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(fields) > 0 {
		return apperr.InvalidFields(fields)
	}
	return nil
}

// Distance returns the geodesic distance between a and b in kilometres,
// rounded to one decimal place.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	var meters float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &meters, nil, nil)

	return RoundKm(meters / 1000), nil
}

func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
