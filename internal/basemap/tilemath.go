package basemap

import "math"

// TileSize is the pixel size of a standard raster tile.
const TileSize = 256

// NumTiles returns the tile-grid dimension at zoom z.
func NumTiles(z int) int {
	return 1 << z
}

// TileCoords returns the fractional web-mercator tile coordinates of a
// lon/lat point at zoom z. The integer parts identify the tile; the
// fractional parts locate the point within it.
func TileCoords(lon, lat float64, z int) (x, y float64) {
	n := float64(NumTiles(z))
	x = (lon + 180) / 360 * n
	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n
	return x, y
}

// LonLat returns the lon/lat of fractional tile coordinates at zoom z.
func LonLat(x, y float64, z int) (lon, lat float64) {
	n := float64(NumTiles(z))
	lon = x/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	return lon, lat
}
