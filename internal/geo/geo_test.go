package geo

import (
	"math"
	"math/rand"
	"testing"

	"eco-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKmKnownDistance(t *testing.T) {
	// Ithaca BOCES to downtown Ithaca.
	a := domain.Coordinate{Lat: 42.4808, Lng: -76.4570}
	b := domain.Coordinate{Lat: 42.4422, Lng: -76.4976}

	d := HaversineKm(a, b)
	assert.InDelta(t, 5.4, d, 0.1)
	assert.Equal(t, 0.0, HaversineKm(a, a))
}

func TestPathKmSymmetricUnderReversal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(20)
		points := make([]domain.Coordinate, n)
		for i := range points {
			points[i] = domain.Coordinate{Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
		}
		reversed := make([]domain.Coordinate, n)
		for i, p := range points {
			reversed[n-1-i] = p
		}

		assert.InDelta(t, PathKm(points), PathKm(reversed), 1e-6, "trial %d", trial)
	}
}

func TestPathKmDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, PathKm(nil))
	assert.Equal(t, 0.0, PathKm([]domain.Coordinate{{Lat: 10, Lng: 10}}))
}

func TestUnitRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		x := rng.Float64()*10000 + 1e-3

		assert.InEpsilon(t, x, MilesToKm(KmToMiles(x)), 0.05)
		assert.InEpsilon(t, x, TreesToKg(KgToTrees(x)), 0.05)
		assert.InEpsilon(t, x, LbsToKg(KgToLbs(x)), 0.05)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 10.2, Round1(85*0.12))
	assert.Equal(t, 1.8, Round1(15*0.12))
	assert.False(t, math.IsNaN(Round1(0)))
}
