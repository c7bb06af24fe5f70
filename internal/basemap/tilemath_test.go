package basemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileCoordsOrigin(t *testing.T) {
	// The null island sits at the exact center of the tile grid.
	x, y := TileCoords(0, 0, 1)
	assert.InDelta(t, 1.0, x, 1e-9)
	assert.InDelta(t, 1.0, y, 1e-9)

	x, y = TileCoords(-180, 0, 0)
	assert.InDelta(t, 0.0, x, 1e-9)
	assert.InDelta(t, 0.5, y, 1e-9)
}

func TestTileCoordsRoundTrip(t *testing.T) {
	coords := []struct{ lon, lat float64 }{
		{-105.0630977, 40.3081372},
		{0, 0},
		{151.2, -33.9},
		{-0.1276, 51.5072},
	}

	for _, c := range coords {
		for _, z := range []int{0, 5, 10, 15} {
			x, y := TileCoords(c.lon, c.lat, z)
			lon, lat := LonLat(x, y, z)
			assert.InDelta(t, c.lon, lon, 1e-6)
			assert.InDelta(t, c.lat, lat, 1e-6)
		}
	}
}

func TestNumTiles(t *testing.T) {
	assert.Equal(t, 1, NumTiles(0))
	assert.Equal(t, 2, NumTiles(1))
	assert.Equal(t, 1024, NumTiles(10))
}
