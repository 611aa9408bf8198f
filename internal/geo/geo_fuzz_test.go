package geo

import (
	"math"
	"testing"
)

// FuzzDistance checks the metric invariants for any pair of valid coordinates.
func FuzzDistance(f *testing.F) {
	f.Add(0.0, 0.0, 0.0, 0.001)
	f.Add(90.0, 180.0, -90.0, -180.0)
	f.Add(21.4225, 39.8262, 24.4672, 39.6111)

	f.Fuzz(func(t *testing.T, lat1, lng1, lat2, lng2 float64) {
		a, errA := NewCoordinate(lat1, lng1)
		b, errB := NewCoordinate(lat2, lng2)
		if errA != nil || errB != nil {
			return
		}

		ab, ba := Distance(a, b), Distance(b, a)
		if math.IsNaN(ab) || ab < 0 {
			t.Fatalf("invalid distance %v for %v %v", ab, a, b)
		}
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
		}
		if ab > math.Pi*EarthRadiusMeters+1e-6 {
			t.Fatalf("distance %v exceeds half circumference", ab)
		}
		if Distance(a, a) != 0 {
			t.Fatalf("distance to self is not zero for %v", a)
		}
	})
}
