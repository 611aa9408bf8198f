// Package geo holds the stateless geospatial helpers used by the trust
// matrix: great-circle distance, geofence and neighbourhood checks, and the
// streaming clustering behind anonymised community heatmaps.
package geo

import (
	"fmt"
	"math"

	dErrors "trustmatrix/pkg/domain-errors"
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates ranges and rejects NaN/Inf.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks latitude ∈ [-90,90] and longitude ∈ [-180,180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("latitude %v out of range [-90, 90]", c.Latitude))
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("longitude %v out of range [-180, 180]", c.Longitude))
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}
