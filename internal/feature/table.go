package feature

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Attribute names returned by the TIGERweb boundary layers.
const (
	ColState    = "STATE"
	ColName     = "NAME"
	ColAreaLand = "AREALAND"
	ColCentLat  = "CENTLAT"
	ColCentLon  = "CENTLON"
)

// Properties holds the raw attribute map for one fetched feature.
type Properties map[string]any

// Raw is an uncoerced feature table straight from a boundary fetch.
type Raw []Properties

// Row is one geographic feature after numeric coercion. Decile is zero
// until AssignDeciles has run.
type Row struct {
	State    string
	Name     string
	AreaLand int64
	CentLat  float64
	CentLon  float64
	Decile   int
}

// Table is an in-memory feature table, ordered by insertion.
type Table []Row

// BBox is a geographic bounding box in lon/lat degrees.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether the point lies inside the box, bounds inclusive.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Pad expands the box by the given fraction of its width and height on
// every side.
func (b BBox) Pad(frac float64) BBox {
	dx := (b.MaxLon - b.MinLon) * frac
	dy := (b.MaxLat - b.MinLat) * frac
	return BBox{
		MinLon: b.MinLon - dx,
		MinLat: b.MinLat - dy,
		MaxLon: b.MaxLon + dx,
		MaxLat: b.MaxLat + dy,
	}
}

// ConcatRaw concatenates raw tables, preserving input order.
func ConcatRaw(tables ...Raw) Raw {
	var out Raw
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// Concat concatenates coerced tables, preserving input order.
func Concat(tables ...Table) Table {
	var out Table
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// Coerce converts raw attribute rows into typed rows. Land area must be
// castable to integer and centroid coordinates to float; any non-numeric
// value is an error.
func Coerce(raw Raw) (Table, error) {
	out := make(Table, 0, len(raw))
	for i, props := range raw {
		area, err := asInt64(props[ColAreaLand])
		if err != nil {
			return nil, eris.Wrapf(err, "feature: row %d: column %s", i, ColAreaLand)
		}
		lat, err := asFloat(props[ColCentLat])
		if err != nil {
			return nil, eris.Wrapf(err, "feature: row %d: column %s", i, ColCentLat)
		}
		lon, err := asFloat(props[ColCentLon])
		if err != nil {
			return nil, eris.Wrapf(err, "feature: row %d: column %s", i, ColCentLon)
		}
		out = append(out, Row{
			State:    asString(props[ColState]),
			Name:     asString(props[ColName]),
			AreaLand: area,
			CentLat:  lat,
			CentLon:  lon,
		})
	}
	return out, nil
}

// FilterVisible returns the rows whose centroid lies inside the box and
// whose decile rank is at least minDecile.
func (t Table) FilterVisible(bbox BBox, minDecile int) Table {
	var out Table
	for _, r := range t {
		if r.Decile >= minDecile && bbox.Contains(r.CentLon, r.CentLat) {
			out = append(out, r)
		}
	}
	return out
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Errorf("not castable to integer: %q", x)
		}
		return int64(f), nil
	case nil:
		return 0, eris.New("missing value")
	default:
		return 0, eris.Errorf("not castable to integer: %v", v)
	}
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		// TIGERweb centroids carry an explicit sign, e.g. "+40.5852".
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, eris.Errorf("not castable to float: %q", x)
		}
		return f, nil
	case nil:
		return 0, eris.New("missing value")
	default:
		return 0, eris.Errorf("not castable to float: %v", v)
	}
}
