package geo

import "math"

const (
	// EarthRadiusMeters is the WGS-84 equatorial radius.
	EarthRadiusMeters = 6378137.0

	// DefaultGeofenceRadius applies when a facility has no radius configured.
	DefaultGeofenceRadius = 500.0

	// NeighborhoodRadius is the advisory proximity for peer attestation.
	NeighborhoodRadius = 2000.0
)

// RadiusCheck is the outcome of a geofence containment test.
type RadiusCheck struct {
	Within   bool    `json:"within_radius"`
	Distance float64 `json:"distance"`
}

// NeighborCheck is the outcome of the neighbourhood proximity test.
type NeighborCheck struct {
	IsNeighbor bool    `json:"is_neighbor"`
	Distance   float64 `json:"distance"`
}

// Distance returns the great-circle distance in meters between a and b using
// the haversine formula on a spherical Earth. It is symmetric and zero for
// identical points.
func Distance(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// IsWithinRadius reports whether point lies inside the circle of radiusMeters
// around center (boundary inclusive). A non-positive radius means "use the
// default geofence radius".
func IsWithinRadius(point, center Coordinate, radiusMeters float64) RadiusCheck {
	if radiusMeters <= 0 {
		radiusMeters = DefaultGeofenceRadius
	}
	d := Distance(point, center)
	return RadiusCheck{Within: d <= radiusMeters, Distance: d}
}

// IsNeighbor reports whether a and b are within NeighborhoodRadius.
func IsNeighbor(a, b Coordinate) NeighborCheck {
	d := Distance(a, b)
	return NeighborCheck{IsNeighbor: d <= NeighborhoodRadius, Distance: d}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
