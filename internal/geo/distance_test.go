package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func relClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestDistanceKmSamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(12.8540, 76.4850, 12.8540, 76.4850))
	assert.Equal(t, 0.0, DistanceKm(-33.9, 151.2, -33.9, 151.2))
}

func TestDistanceKmSymmetricRandomised(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		lat1, lon1 := r.Float64()*180-90, r.Float64()*360-180
		lat2, lon2 := r.Float64()*180-90, r.Float64()*360-180

		ab := DistanceKm(lat1, lon1, lat2, lon2)
		ba := DistanceKm(lat2, lon2, lat1, lon1)
		if !relClose(ab, ba) {
			t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
		}
		assert.Equal(t, 0.0, DistanceKm(lat1, lon1, lat1, lon1))
	}
}

func TestDistanceKmKnownValues(t *testing.T) {
	// one degree of latitude along a meridian
	assert.InDelta(t, 2*math.Pi*EarthRadiusKm/360, DistanceKm(0, 0, 1, 0), 1e-9)

	// antipodes are half the circumference apart
	assert.InDelta(t, math.Pi*EarthRadiusKm, DistanceKm(0, 0, 0, 180), 1e-6)

	// H001 to H002 in the seed data is roughly 0.6 km
	d := DistanceKm(12.8540, 76.4850, 12.8585, 76.4880)
	assert.InDelta(t, 0.596, d, 0.01)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(12.854, 76.485))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.01, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
	assert.False(t, ValidCoordinates(math.NaN(), 0))
	assert.False(t, ValidCoordinates(0, math.Inf(1)))
}
