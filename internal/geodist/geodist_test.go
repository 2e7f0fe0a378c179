package geodist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKilometers(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", -33.8688, 151.2093, -33.8688, 151.2093, 0, 0.0001},
		{"sydney cbd to neutral bay", -33.8688, 151.2093, -33.8381, 151.2230, 3.6, 0.2},
		{"sydney to melbourne", -33.8688, 151.2093, -37.8136, 144.9631, 713, 10},
		{"equator quarter turn", 0, 0, 0, 90, 10007.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Kilometers(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestKilometersSymmetric(t *testing.T) {
	a := Kilometers(-33.8688, 151.2093, -33.8381, 151.2230)
	b := Kilometers(-33.8381, 151.2230, -33.8688, 151.2093)
	assert.InDelta(t, a, b, 1e-9)
}
