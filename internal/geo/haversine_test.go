package geo

import (
	"math/rand/v2"
	"testing"

	"fleet-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Florianópolis centre to São José centre, roughly 9 km apart.
	floripa := domain.Coordinates{Lat: -27.5969, Lon: -48.5495}
	saoJose := domain.Coordinates{Lat: -27.6136, Lon: -48.6366}

	d := Haversine(floripa, saoJose)
	assert.InDelta(t, 8.78, d, 0.1)
}

func TestHaversineOneDegreeOnEquator(t *testing.T) {
	d := Haversine(domain.Coordinates{}, domain.Coordinates{Lon: 1})
	assert.InDelta(t, 111.19, d, 0.01)
}

func TestHaversineSymmetryAndIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		a := domain.Coordinates{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		b := domain.Coordinates{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}

		require.Equal(t, Haversine(a, b), Haversine(b, a), "a=%v b=%v", a, b)
		require.Zero(t, Haversine(a, a), "a=%v", a)
	}
}

func TestHaversineAntipodal(t *testing.T) {
	d := Haversine(domain.Coordinates{Lat: 0, Lon: 0}, domain.Coordinates{Lat: 0, Lon: 180})
	assert.InDelta(t, 3.14159265*EarthRadiusKm, d, 0.01)
}
