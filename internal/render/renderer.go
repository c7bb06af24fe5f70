package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/censusmap/internal/census"
	"github.com/sells-group/censusmap/internal/feature"
)

const (
	// renderDPI scales point sizes to device pixels.
	renderDPI = 300

	choroplethAlpha = 0.8
	edgeWidth       = 0.8
	markerRadius    = 7.0
	hatchSpacing    = 6.0

	// labelYOffset lifts label text above its centroid, in degrees.
	labelYOffset = 0.015

	// Figure bands as height/width fractions.
	titleBand  = 0.07
	legendBand = 0.16
	sideMargin = 0.02
)

// Basemap supplies a composited basemap image for a bounding box.
type Basemap interface {
	Composite(ctx context.Context, bbox feature.BBox, w, h, zoom int) (image.Image, error)
}

// Options configures the map renderer.
type Options struct {
	Width        int
	Height       int
	Title        string
	MinDecile    int
	BasemapAlpha float64
	Margin       float64
}

// Renderer draws the choropleth figure: basemap, income fill, centroid
// markers and labels, legend, and title.
type Renderer struct {
	opts   Options
	dc     *gg.Context
	extent feature.BBox

	mapX, mapY, mapW, mapH float64
}

// New creates a renderer with a white canvas.
func New(opts Options) *Renderer {
	if opts.Width == 0 {
		opts.Width = 3000
	}
	if opts.Height == 0 {
		opts.Height = 1800
	}
	if opts.MinDecile == 0 {
		opts.MinDecile = 19
	}
	if opts.BasemapAlpha == 0 {
		opts.BasemapAlpha = 1.0
	}
	if opts.Margin == 0 {
		opts.Margin = 0.05
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFillRule(gg.FillRuleEvenOdd)

	w, h := float64(opts.Width), float64(opts.Height)
	return &Renderer{
		opts: opts,
		dc:   dc,
		mapX: w * sideMargin,
		mapY: h * titleBand,
		mapW: w * (1 - 2*sideMargin),
		mapH: h * (1 - titleBand - legendBand),
	}
}

// Extent returns the lon/lat box covered by the map area. Valid after
// Render.
func (r *Renderer) Extent() feature.BBox {
	return r.extent
}

// LabelFontSize returns the label point size for a decile rank:
// max(3, 9·(decile/20)³).
func LabelFontSize(decile int) float64 {
	d := float64(decile) / float64(feature.DecileBuckets)
	return math.Max(3, 9*d*d*d)
}

// Render draws the full figure and returns the set of labeled rows: those
// whose centroid falls within the drawn extent and whose decile rank meets
// the configured minimum.
func (r *Renderer) Render(ctx context.Context, incomes census.IncomeTable, feats feature.Table, bm Basemap, zoom int) (feature.Table, error) {
	bbox, ok := incomes.Bounds()
	if !ok {
		return nil, eris.New("render: no geometry to draw")
	}
	r.extent = bbox.Pad(r.opts.Margin)

	if bm != nil {
		img, err := bm.Composite(ctx, r.extent, int(r.mapW), int(r.mapH), zoom)
		if err != nil {
			return nil, eris.Wrap(err, "render: basemap")
		}
		r.drawBasemap(img)
	}

	scale := NewScale(incomeValues(incomes))
	r.drawChoropleth(incomes, scale)

	visible := feats.FilterVisible(r.extent, r.opts.MinDecile)
	if err := r.drawCentroids(visible); err != nil {
		return nil, err
	}

	if err := r.drawLegend(scale, hasMissing(incomes)); err != nil {
		return nil, err
	}
	if err := r.drawTitle(); err != nil {
		return nil, err
	}

	return visible, nil
}

// WritePNG writes the finished figure to disk.
func (r *Renderer) WritePNG(path string) error {
	return eris.Wrap(r.dc.SavePNG(path), "render: write png")
}

// EncodePNG streams the finished figure as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return eris.Wrap(r.dc.EncodePNG(w), "render: encode png")
}

// Image returns the backing image.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// project maps lon/lat to device pixels. Like the original figure, the
// extent is stretched to the map area without preserving aspect.
func (r *Renderer) project(lon, lat float64) (x, y float64) {
	x = r.mapX + (lon-r.extent.MinLon)/(r.extent.MaxLon-r.extent.MinLon)*r.mapW
	y = r.mapY + (r.extent.MaxLat-lat)/(r.extent.MaxLat-r.extent.MinLat)*r.mapH
	return x, y
}

func (r *Renderer) drawBasemap(img image.Image) {
	if r.opts.BasemapAlpha < 1 {
		b := img.Bounds()
		faded := image.NewRGBA(b)
		mask := image.NewUniform(color.Alpha{A: uint8(r.opts.BasemapAlpha * 255)})
		draw.DrawMask(faded, b, img, b.Min, mask, image.Point{}, draw.Over)
		img = faded
	}
	r.dc.DrawImage(img, int(r.mapX), int(r.mapY))
}

func (r *Renderer) drawChoropleth(incomes census.IncomeTable, scale Scale) {
	for _, row := range incomes {
		if row.Geometry == nil || row.Geometry.Empty() {
			continue
		}
		if row.Income == nil {
			r.drawMissingPolygon(row.Geometry)
			continue
		}

		r.polygonPath(row.Geometry)
		cr, cg, cb := scale.At(*row.Income)
		r.dc.SetRGBA(cr, cg, cb, choroplethAlpha)
		r.dc.FillPreserve()
		r.dc.SetRGBA(0, 0, 0, 1)
		r.dc.SetLineWidth(edgeWidth)
		r.dc.Stroke()
	}
}

// drawMissingPolygon fills a unit with the hatched missing-value style.
func (r *Renderer) drawMissingPolygon(g geom.T) {
	r.polygonPath(g)
	r.dc.SetRGBA(0.83, 0.83, 0.83, choroplethAlpha)
	r.dc.FillPreserve()
	r.dc.Clip()

	b := g.Bounds()
	x0, y0 := r.project(b.Min(0), b.Max(1))
	x1, y1 := r.project(b.Max(0), b.Min(1))
	r.hatch(x0, y0, x1, y1)
	r.dc.ResetClip()

	r.polygonPath(g)
	r.dc.SetRGBA(0.5, 0.5, 0.5, 1)
	r.dc.SetLineWidth(edgeWidth)
	r.dc.Stroke()
}

// hatch strokes diagonal lines across the given pixel rectangle. The
// caller is expected to have clipped to the target shape.
func (r *Renderer) hatch(x0, y0, x1, y1 float64) {
	dy := y1 - y0
	for c := x0 - dy; c <= x1; c += hatchSpacing {
		r.dc.DrawLine(c, y0, c+dy, y1)
	}
	r.dc.SetRGBA(0.5, 0.5, 0.5, 1)
	r.dc.SetLineWidth(0.6)
	r.dc.Stroke()
}

func (r *Renderer) polygonPath(g geom.T) {
	switch t := g.(type) {
	case *geom.Polygon:
		r.ringPaths(t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			r.ringPaths(t.Polygon(i))
		}
	}
}

func (r *Renderer) ringPaths(p *geom.Polygon) {
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		for j, c := range coords {
			x, y := r.project(c[0], c[1])
			if j == 0 {
				r.dc.NewSubPath()
				r.dc.MoveTo(x, y)
			} else {
				r.dc.LineTo(x, y)
			}
		}
		r.dc.ClosePath()
	}
}

// drawCentroids draws each visible row as a point marker, then as a name
// label offset above it with a decile-scaled font in a rounded box.
func (r *Renderer) drawCentroids(visible feature.Table) error {
	for _, row := range visible {
		x, y := r.project(row.CentLon, row.CentLat)
		r.dc.DrawCircle(x, y, markerRadius)
		r.dc.SetRGBA(0, 0, 0, 0.8)
		r.dc.FillPreserve()
		r.dc.SetRGBA(1, 1, 1, 0.8)
		r.dc.SetLineWidth(1.2)
		r.dc.Stroke()
	}

	for _, row := range visible {
		pts := LabelFontSize(row.Decile)
		f, err := face(pts, renderDPI)
		if err != nil {
			return err
		}
		r.dc.SetFontFace(f)

		x, y := r.project(row.CentLon, row.CentLat+labelYOffset)
		w, h := r.dc.MeasureString(row.Name)
		pad := pts * renderDPI / 72 * 0.15

		r.dc.DrawRoundedRectangle(x-w/2-pad, y-h-pad, w+2*pad, h+2*pad, (h+2*pad)*0.3)
		r.dc.SetRGBA(1, 1, 1, 0.7)
		r.dc.Fill()

		r.dc.SetRGBA(0, 0, 0, 1)
		r.dc.DrawStringAnchored(row.Name, x, y, 0.5, 0)
	}
	return nil
}

func (r *Renderer) drawTitle() error {
	f, err := face(16, renderDPI)
	if err != nil {
		return err
	}
	r.dc.SetFontFace(f)
	r.dc.SetRGB(0, 0, 0)
	r.dc.DrawStringAnchored(r.opts.Title, float64(r.opts.Width)/2, float64(r.opts.Height)*titleBand*0.55, 0.5, 0.5)
	return nil
}

func incomeValues(t census.IncomeTable) []*float64 {
	out := make([]*float64, len(t))
	for i, r := range t {
		out[i] = r.Income
	}
	return out
}

func hasMissing(t census.IncomeTable) bool {
	for _, r := range t {
		if r.Income == nil && r.Geometry != nil {
			return true
		}
	}
	return false
}
