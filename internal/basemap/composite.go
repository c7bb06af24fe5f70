package basemap

import (
	"context"
	"image"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/censusmap/internal/feature"
)

// Composite assembles a w×h basemap image covering the given lon/lat box
// at a fixed zoom. The plot uses plain lon/lat axes while tiles are in web
// mercator, so each output pixel is inverse-mapped to its tile pixel. Any
// tile fetch failure aborts the composite.
func (p *Proxy) Composite(ctx context.Context, bbox feature.BBox, w, h, zoom int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, eris.New("basemap: non-positive composite size")
	}

	n := NumTiles(zoom)
	tiles := make(map[[2]int]image.Image)
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	for j := 0; j < h; j++ {
		lat := bbox.MaxLat - (float64(j)+0.5)/float64(h)*(bbox.MaxLat-bbox.MinLat)
		for i := 0; i < w; i++ {
			lon := bbox.MinLon + (float64(i)+0.5)/float64(w)*(bbox.MaxLon-bbox.MinLon)

			tx, ty := TileCoords(lon, lat, zoom)
			xi := clamp(int(math.Floor(tx)), 0, n-1)
			yi := clamp(int(math.Floor(ty)), 0, n-1)

			tile, ok := tiles[[2]int{xi, yi}]
			if !ok {
				var err error
				tile, err = p.Tile(ctx, zoom, xi, yi)
				if err != nil {
					return nil, err
				}
				tiles[[2]int{xi, yi}] = tile
			}

			b := tile.Bounds()
			px := b.Min.X + clamp(int((tx-float64(xi))*float64(b.Dx())), 0, b.Dx()-1)
			py := b.Min.Y + clamp(int((ty-float64(yi))*float64(b.Dy())), 0, b.Dy()-1)
			out.Set(i, j, tile.At(px, py))
		}
	}

	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
