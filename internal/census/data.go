package census

import (
	"strconv"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/censusmap/internal/feature"
	"github.com/sells-group/censusmap/internal/tigerweb"
)

// Sentinel is the reserved value marking suppressed or unavailable
// estimates in ACS responses.
const Sentinel = -666666666

// JoinStrategy selects how attribute rows and geometry records combine.
type JoinStrategy string

const (
	// JoinInner keeps only GEOIDs present on both sides.
	JoinInner JoinStrategy = "inner"
	// JoinOuter keeps every row from either side.
	JoinOuter JoinStrategy = "outer"
)

// IncomeRow is one geographic unit with its income estimate and polygon.
// Income is nil when the value is missing, unparseable, or was the
// suppressed-value sentinel after CleanSentinel.
type IncomeRow struct {
	GEOID    string
	Name     string
	Income   *float64
	RawValue string
	Geometry geom.T
}

// IncomeTable is the joined attribute+geometry table consumed by the
// renderer.
type IncomeTable []IncomeRow

// JoinGeometry joins attribute rows against geometry features on GEOID.
// With destring set, numeric-string values are coerced to float64.
func JoinGeometry(attrs []AttributeRow, geoms []tigerweb.GeoFeature, variable string, strategy JoinStrategy, destring bool) IncomeTable {
	geomByID := make(map[string]geom.T, len(geoms))
	for _, g := range geoms {
		id, _ := g.Properties["GEOID"].(string)
		if id != "" {
			geomByID[id] = g.Geometry
		}
	}

	var out IncomeTable
	matched := make(map[string]bool, len(attrs))

	for _, a := range attrs {
		g, ok := geomByID[a.GEOID]
		if !ok && strategy == JoinInner {
			continue
		}
		matched[a.GEOID] = true

		row := IncomeRow{
			GEOID:    a.GEOID,
			Name:     a.Name,
			RawValue: a.Values[variable],
			Geometry: g,
		}
		if destring {
			if v, err := strconv.ParseFloat(row.RawValue, 64); err == nil {
				row.Income = &v
			}
		}
		out = append(out, row)
	}

	if strategy == JoinOuter {
		for _, g := range geoms {
			id, _ := g.Properties["GEOID"].(string)
			if id == "" || matched[id] {
				continue
			}
			out = append(out, IncomeRow{GEOID: id, Geometry: g.Geometry})
		}
	}

	return out
}

// CleanSentinel replaces income values equal to the suppressed-value
// sentinel with an explicit missing value. All other values are unchanged.
func (t IncomeTable) CleanSentinel() {
	for i := range t {
		if t[i].Income != nil && *t[i].Income == Sentinel {
			t[i].Income = nil
		}
	}
}

// Bounds returns the lon/lat bounding box covering every geometry in the
// table. ok is false when the table holds no geometry.
func (t IncomeTable) Bounds() (bbox feature.BBox, ok bool) {
	for _, r := range t {
		if r.Geometry == nil || r.Geometry.Empty() {
			continue
		}
		b := r.Geometry.Bounds()
		if !ok {
			bbox = feature.BBox{MinLon: b.Min(0), MinLat: b.Min(1), MaxLon: b.Max(0), MaxLat: b.Max(1)}
			ok = true
			continue
		}
		bbox.MinLon = min(bbox.MinLon, b.Min(0))
		bbox.MinLat = min(bbox.MinLat, b.Min(1))
		bbox.MaxLon = max(bbox.MaxLon, b.Max(0))
		bbox.MaxLat = max(bbox.MaxLat, b.Max(1))
	}
	return bbox, ok
}
