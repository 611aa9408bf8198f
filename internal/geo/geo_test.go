package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trustmatrix/pkg/domain-errors"
)

func randomCoordinate(r *rand.Rand) Coordinate {
	return Coordinate{
		Latitude:  r.Float64()*180 - 90,
		Longitude: r.Float64()*360 - 180,
	}
}

func TestNewCoordinate(t *testing.T) {
	t.Run("accepts boundary values", func(t *testing.T) {
		for _, c := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}} {
			_, err := NewCoordinate(c[0], c[1])
			require.NoError(t, err)
		}
	})

	t.Run("rejects out of range and non-finite values", func(t *testing.T) {
		for _, c := range [][2]float64{{90.0001, 0}, {-91, 0}, {0, 180.5}, {0, -181}, {math.NaN(), 0}, {0, math.Inf(1)}} {
			_, err := NewCoordinate(c[0], c[1])
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})
}

func TestDistance(t *testing.T) {
	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := Distance(Coordinate{0, 0}, Coordinate{0, 1})
		assert.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 0.01)
	})

	t.Run("identical points are zero", func(t *testing.T) {
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 200; i++ {
			a := randomCoordinate(r)
			assert.Zero(t, Distance(a, a))
		}
	})

	t.Run("distinct points are positive", func(t *testing.T) {
		assert.Greater(t, Distance(Coordinate{10, 10}, Coordinate{10, 10.0001}), 0.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		r := rand.New(rand.NewSource(2))
		for i := 0; i < 500; i++ {
			a, b := randomCoordinate(r), randomCoordinate(r)
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
		}
	})

	t.Run("triangle inequality", func(t *testing.T) {
		r := rand.New(rand.NewSource(3))
		for i := 0; i < 500; i++ {
			a, b, c := randomCoordinate(r), randomCoordinate(r), randomCoordinate(r)
			assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+1e-6)
		}
	})

	t.Run("antipodal points are half the circumference", func(t *testing.T) {
		d := Distance(Coordinate{0, 0}, Coordinate{0, 180})
		assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 0.01)
	})
}

func TestIsWithinRadius(t *testing.T) {
	center := Coordinate{21.4225, 39.8262}

	t.Run("boundary is inclusive", func(t *testing.T) {
		point := Coordinate{21.4225, 39.8272}
		d := Distance(point, center)
		check := IsWithinRadius(point, center, d)
		assert.True(t, check.Within)
		assert.Equal(t, d, check.Distance)
	})

	t.Run("non-positive radius uses the default geofence", func(t *testing.T) {
		near := Coordinate{21.4225, 39.8262 + 0.004} // ~415m
		far := Coordinate{21.4225, 39.8262 + 0.006}  // ~622m
		assert.True(t, IsWithinRadius(near, center, 0).Within)
		assert.False(t, IsWithinRadius(far, center, 0).Within)
		assert.False(t, IsWithinRadius(far, center, -5).Within)
	})

	t.Run("growing the radius never flips within to outside", func(t *testing.T) {
		r := rand.New(rand.NewSource(4))
		for i := 0; i < 300; i++ {
			point := Coordinate{
				Latitude:  center.Latitude + (r.Float64()-0.5)*0.05,
				Longitude: center.Longitude + (r.Float64()-0.5)*0.05,
			}
			small := 1 + r.Float64()*3000
			large := small + r.Float64()*3000
			if IsWithinRadius(point, center, small).Within {
				assert.True(t, IsWithinRadius(point, center, large).Within)
			}
		}
	})
}

func TestIsNeighbor(t *testing.T) {
	home := Coordinate{0, 0}

	t.Run("within two kilometres", func(t *testing.T) {
		check := IsNeighbor(home, Coordinate{0, 0.017}) // ~1892m
		assert.True(t, check.IsNeighbor)
		assert.InDelta(t, 1892.5, check.Distance, 1)
	})

	t.Run("beyond two kilometres", func(t *testing.T) {
		check := IsNeighbor(home, Coordinate{0, 0.02}) // ~2226m
		assert.False(t, check.IsNeighbor)
	})
}

func TestClusterForHeatmap(t *testing.T) {
	t.Run("empty input yields no clusters", func(t *testing.T) {
		assert.Empty(t, ClusterForHeatmap(nil))
	})

	t.Run("nearby points merge and distant points stay separate", func(t *testing.T) {
		clusters := ClusterForHeatmap([]Coordinate{{0, 0}, {0, 0.001}, {0, 10}})
		require.Len(t, clusters, 2)

		assert.Equal(t, 2, clusters[0].Weight)
		assert.InDelta(t, 0.0, clusters[0].Center.Latitude, 1e-12)
		assert.InDelta(t, 0.0005, clusters[0].Center.Longitude, 1e-12)

		assert.Equal(t, 1, clusters[1].Weight)
		assert.Equal(t, Coordinate{0, 10}, clusters[1].Center)
	})

	t.Run("joins the first matching cluster rather than the nearest", func(t *testing.T) {
		a := Coordinate{0, 0}
		c := Coordinate{0, 0.008}  // ~890m from a
		b := Coordinate{0, 0.0042} // ~468m from a, ~423m from c
		clusters := ClusterForHeatmap([]Coordinate{a, c, b})
		require.Len(t, clusters, 2)
		assert.Equal(t, 2, clusters[0].Weight)
		assert.Equal(t, 1, clusters[1].Weight)
		assert.Equal(t, c, clusters[1].Center)
	})

	t.Run("input order changes membership", func(t *testing.T) {
		a := Coordinate{0, 0}
		c := Coordinate{0, 0.008}
		b := Coordinate{0, 0.0042}
		clusters := ClusterForHeatmap([]Coordinate{c, a, b})
		require.Len(t, clusters, 2)
		assert.Equal(t, 2, clusters[0].Weight, "b joins c because c's cluster was created first")
		assert.Equal(t, a, clusters[1].Center)
	})

	t.Run("weights sum to the number of points", func(t *testing.T) {
		r := rand.New(rand.NewSource(5))
		points := make([]Coordinate, 250)
		for i := range points {
			points[i] = Coordinate{
				Latitude:  51.5 + (r.Float64()-0.5)*0.05,
				Longitude: -0.12 + (r.Float64()-0.5)*0.05,
			}
		}
		total := 0
		for _, c := range ClusterForHeatmap(points) {
			total += c.Weight
		}
		assert.Equal(t, len(points), total)
	})
}
